// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noahsarkproj/shopmanual/internal/features"
	"github.com/noahsarkproj/shopmanual/internal/structure"
	"github.com/noahsarkproj/shopmanual/internal/structure/parsers"
)

// MetadataParseStructure describes the parse_structure tool.
var MetadataParseStructure = &mcp.Tool{
	Name: "parse_structure",
	Description: "Parse a macromolecular structure and return its header, atom records and " +
		"quantum-relevant features. " +
		"Supported formats: pdb (fixed-column PDB text), json and yaml (a previously parsed " +
		"{header, atoms} document). " +
		"Malformed ATOM/HETATM lines are skipped; set diagnostics to true to get the line " +
		"numbers and reasons of the skipped lines.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw content of the structure file",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint. One of: pdb, json, yaml. If omitted, auto-detection is used.",
				"enum":        []string{"pdb", "json", "yaml"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the structure (accession id, file path, etc.).",
			},
			"diagnostics": map[string]interface{}{
				"type":        "boolean",
				"description": "Report skipped atom lines instead of dropping them silently.",
			},
		},
	},
}

// InputParseStructure is the input for the ParseStructure tool.
type InputParseStructure struct {
	Content     string `json:"content"`
	Format      string `json:"format"`
	SourceID    string `json:"source_id"`
	Diagnostics bool   `json:"diagnostics"`
}

// OutputParseStructure is the output for the ParseStructure tool.
type OutputParseStructure struct {
	Classification string                     `json:"classification"`
	Atoms          []structure.AtomRecord     `json:"atoms"`
	AtomCount      int                        `json:"atom_count"`
	Features       features.Features          `json:"features"`
	Skipped        []structure.LineDiagnostic `json:"skipped,omitempty"`
	ParserUsed     string                     `json:"parser_used"`
}

// parseRegistry builds a Registry with all structure parsers registered.
// The PDB parser is registered first so fixed-column text is never read as YAML.
func parseRegistry(diagnostics bool) *structure.Registry {
	var opts []parsers.PDBOption
	if diagnostics {
		opts = append(opts, parsers.WithDiagnostics())
	}
	return structure.NewRegistry(
		parsers.NewPDBParser(opts...),
		parsers.NewDocumentParser(),
	)
}

// ParseStructure parses the provided structure and derives its features.
func ParseStructure(ctx context.Context, _ *mcp.CallToolRequest, input InputParseStructure) (*mcp.CallToolResult, OutputParseStructure, error) {
	if input.Content == "" {
		return nil, OutputParseStructure{}, fmt.Errorf("content is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	src := structure.StructureSource{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	}

	result, err := parseRegistry(input.Diagnostics).ParseWithMeta(ctx, src)
	if err != nil {
		return nil, OutputParseStructure{}, err
	}

	parsed := result.Structure
	return nil, OutputParseStructure{
		Classification: parsed.Classification(),
		Atoms:          parsed.Atoms,
		AtomCount:      len(parsed.Atoms),
		Features:       features.Extract(parsed),
		Skipped:        parsed.Diagnostics,
		ParserUsed:     result.ParserUsed,
	}, nil
}
