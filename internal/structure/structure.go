// SPDX-License-Identifier: Apache-2.0

package structure

import "context"

// HeaderClassification is the header key populated from HEADER records.
const HeaderClassification = "classification"

// AtomRecord is one atom-bearing line of a structural record.
type AtomRecord struct {
	Serial  int     `json:"serial" yaml:"serial"`
	Name    string  `json:"name" yaml:"name"`
	ResName string  `json:"resName" yaml:"resName"`
	ChainID string  `json:"chainID" yaml:"chainID"`
	ResSeq  int     `json:"resSeq" yaml:"resSeq"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Z       float64 `json:"z" yaml:"z"`
}

// LineDiagnostic records an input line that was dropped during parsing.
type LineDiagnostic struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParsedStructure is the in-memory form of one fetched structural record.
type ParsedStructure struct {
	Header map[string]string `json:"header" yaml:"header"`
	Atoms  []AtomRecord      `json:"atoms" yaml:"atoms"`
	// Diagnostics is only populated by parsers configured to collect them.
	Diagnostics []LineDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Classification returns the header classification, or "" when absent.
func (s ParsedStructure) Classification() string {
	return s.Header[HeaderClassification]
}

// StructureSource describes the raw input to a structure parser.
type StructureSource struct {
	// Content is the raw file content.
	Content []byte
	Format  string
	ID      string
}

// StructureParser turns one structure format into a ParsedStructure.
// Formats lists the format hints (file extensions without the dot) the parser
// owns; CanHandle sniffs the content when no owned hint is given.
type StructureParser interface {
	Formats() []string
	CanHandle(source StructureSource) bool
	Parse(ctx context.Context, source StructureSource) (ParsedStructure, error)
	Name() string
}
