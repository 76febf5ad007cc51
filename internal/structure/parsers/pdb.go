// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noahsarkproj/shopmanual/internal/structure"
)

// Fixed column ranges of the PDB format, as byte offsets [start, end).
const (
	headerClassStart = 10
	headerClassEnd   = 50

	serialStart  = 6
	serialEnd    = 11
	nameStart    = 12
	nameEnd      = 16
	resNameStart = 17
	resNameEnd   = 20
	chainIDCol   = 21
	resSeqStart  = 22
	resSeqEnd    = 26
	xStart       = 30
	xEnd         = 38
	yStart       = 38
	yEnd         = 46
	zStart       = 46
	zEnd         = 54

	// minAtomLineWidth is the shortest atom line that still carries all coordinates.
	minAtomLineWidth = zEnd
)

// PDBParser parses fixed-column PDB text into a ParsedStructure.
// HEADER lines fill the header classification; ATOM and HETATM lines become
// AtomRecords. Lines that fail to parse are dropped and never fail the parse.
type PDBParser struct {
	collectDiagnostics bool
}

type PDBOption func(*PDBParser)

// WithDiagnostics records every dropped atom line in ParsedStructure.Diagnostics.
func WithDiagnostics() PDBOption {
	return func(p *PDBParser) {
		p.collectDiagnostics = true
	}
}

// NewPDBParser creates a new PDBParser.
func NewPDBParser(opts ...PDBOption) *PDBParser {
	p := &PDBParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PDBParser) Name() string {
	return "pdb"
}

// Formats returns the PDB file extensions; "ent" is the archive's own suffix.
func (p *PDBParser) Formats() []string {
	return []string{"pdb", "ent"}
}

// CanHandle returns true when the content contains HEADER, ATOM or HETATM records.
func (p *PDBParser) CanHandle(source structure.StructureSource) bool {
	for _, line := range splitLines(string(source.Content)) {
		if isHeaderLine(line) || isAtomLine(line) {
			return true
		}
	}
	return false
}

func (p *PDBParser) Parse(_ context.Context, source structure.StructureSource) (structure.ParsedStructure, error) {
	return p.parseText(string(source.Content)), nil
}

// ParsePDB parses raw PDB text with the default (silent) policy.
func ParsePDB(raw string) structure.ParsedStructure {
	return NewPDBParser().parseText(raw)
}

func (p *PDBParser) parseText(raw string) structure.ParsedStructure {
	parsed := structure.ParsedStructure{
		Header: map[string]string{},
		Atoms:  []structure.AtomRecord{},
	}

	for i, line := range splitLines(raw) {
		switch {
		case isHeaderLine(line):
			parsed.Header[structure.HeaderClassification] = strings.TrimSpace(column(line, headerClassStart, headerClassEnd))
		case isAtomLine(line):
			atom, err := parseAtomLine(line)
			if err != nil {
				if p.collectDiagnostics {
					parsed.Diagnostics = append(parsed.Diagnostics, structure.LineDiagnostic{
						Line:   i + 1,
						Reason: err.Error(),
					})
				}
				continue
			}
			parsed.Atoms = append(parsed.Atoms, atom)
		}
	}
	return parsed
}

func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "HEADER")
}

func isAtomLine(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

func parseAtomLine(line string) (structure.AtomRecord, error) {
	if len(line) < minAtomLineWidth {
		return structure.AtomRecord{}, fmt.Errorf("line too short: %d < %d columns", len(line), minAtomLineWidth)
	}

	serial, err := atoiField("serial", line[serialStart:serialEnd])
	if err != nil {
		return structure.AtomRecord{}, err
	}
	resSeq, err := atoiField("resSeq", line[resSeqStart:resSeqEnd])
	if err != nil {
		return structure.AtomRecord{}, err
	}
	x, err := floatField("x", line[xStart:xEnd])
	if err != nil {
		return structure.AtomRecord{}, err
	}
	y, err := floatField("y", line[yStart:yEnd])
	if err != nil {
		return structure.AtomRecord{}, err
	}
	z, err := floatField("z", line[zStart:zEnd])
	if err != nil {
		return structure.AtomRecord{}, err
	}

	return structure.AtomRecord{
		Serial:  serial,
		Name:    strings.TrimSpace(line[nameStart:nameEnd]),
		ResName: strings.TrimSpace(line[resNameStart:resNameEnd]),
		ChainID: line[chainIDCol : chainIDCol+1],
		ResSeq:  resSeq,
		X:       x,
		Y:       y,
		Z:       z,
	}, nil
}

func atoiField(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// floatField parses a coordinate. NaN and infinities are rejected since the
// catalogue cannot encode them.
func floatField(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// column returns line[start:end] clamped to the line length.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
