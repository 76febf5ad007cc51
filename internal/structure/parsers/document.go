// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/noahsarkproj/shopmanual/internal/structure"
)

// DocumentParser reads a structure that was already parsed and serialized,
// i.e. a {"header": {...}, "atoms": [...]} document in JSON or YAML. It is
// used for cached structures and hand-written fixtures.
type DocumentParser struct{}

func NewDocumentParser() *DocumentParser {
	return &DocumentParser{}
}

func (p *DocumentParser) Name() string {
	return "document"
}

func (p *DocumentParser) Formats() []string {
	return []string{"json", "yaml", "yml", "document"}
}

func (p *DocumentParser) CanHandle(source structure.StructureSource) bool {
	content := strings.TrimSpace(string(source.Content))
	// JSON object
	if strings.HasPrefix(content, "{") {
		return true
	}
	return strings.HasPrefix(content, "header:") || strings.HasPrefix(content, "atoms:") ||
		strings.Contains(content, "\natoms:")
}

func (p *DocumentParser) Parse(_ context.Context, source structure.StructureSource) (structure.ParsedStructure, error) {
	var doc structure.ParsedStructure
	if err := yaml.Unmarshal(source.Content, &doc); err != nil {
		return structure.ParsedStructure{}, fmt.Errorf("failed to unmarshal structure document: %w", err)
	}
	if doc.Header == nil {
		doc.Header = map[string]string{}
	}
	if doc.Atoms == nil {
		doc.Atoms = []structure.AtomRecord{}
	}
	return doc, nil
}
