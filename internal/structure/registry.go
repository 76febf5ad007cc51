// SPDX-License-Identifier: Apache-2.0

package structure

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Registry picks a parser for a structure source. An owned format hint wins;
// otherwise the parsers sniff the content in registration order.
type Registry struct {
	parsers []StructureParser
	byHint  map[string]StructureParser
}

// NewRegistry creates a Registry with the provided parsers. When two parsers
// claim the same format hint, the first one registered owns it.
func NewRegistry(parsers ...StructureParser) *Registry {
	r := &Registry{parsers: parsers, byHint: map[string]StructureParser{}}
	for _, p := range parsers {
		for _, f := range p.Formats() {
			hint := NormalizeFormat(f)
			if _, taken := r.byHint[hint]; !taken {
				r.byHint[hint] = p
			}
		}
	}
	return r
}

// NormalizeFormat lower-cases a format hint and strips a leading dot, so
// ".PDB" and "pdb" select the same parser.
func NormalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// ParseResult is the output of a successful registry parse.
type ParseResult struct {
	Structure  ParsedStructure
	ParserUsed string
	// Sniffed is true when the parser was chosen from the content rather
	// than from the format hint.
	Sniffed bool
}

func (r *Registry) Parse(ctx context.Context, source StructureSource) (ParsedStructure, error) {
	result, err := r.ParseWithMeta(ctx, source)
	if err != nil {
		return ParsedStructure{}, err
	}
	return result.Structure, nil
}

func (r *Registry) ParseWithMeta(ctx context.Context, source StructureSource) (ParseResult, error) {
	parser, sniffed, err := r.selectParser(source)
	if err != nil {
		return ParseResult{}, err
	}

	parsed, err := parser.Parse(ctx, source)
	if err != nil {
		return ParseResult{}, fmt.Errorf("parser %q failed on %s: %w", parser.Name(), sourceName(source), err)
	}

	return ParseResult{
		Structure:  parsed,
		ParserUsed: parser.Name(),
		Sniffed:    sniffed,
	}, nil
}

func (r *Registry) selectParser(source StructureSource) (StructureParser, bool, error) {
	hint := NormalizeFormat(source.Format)
	if p, ok := r.byHint[hint]; ok {
		return p, false, nil
	}
	// Unknown hints such as "txt" still get a chance through sniffing.
	for _, p := range r.parsers {
		if p.CanHandle(source) {
			return p, true, nil
		}
	}

	supported := strings.Join(r.SupportedFormats(), ", ")
	if hint != "" {
		return nil, false, fmt.Errorf("unsupported structure format %q for %s: content matches no parser (supported: %s)",
			hint, sourceName(source), supported)
	}
	return nil, false, fmt.Errorf("unsupported structure format for %s: content matches no parser (supported: %s)",
		sourceName(source), supported)
}

// SupportedFormats returns the sorted format hints owned by the registered parsers.
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.byHint))
	for f := range r.byHint {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// RegisteredParsers returns the parser names in registration order.
func (r *Registry) RegisteredParsers() []string {
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}

func sourceName(source StructureSource) string {
	if source.ID == "" {
		return "unnamed source"
	}
	return fmt.Sprintf("source %q", source.ID)
}
