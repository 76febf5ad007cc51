// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noahsarkproj/shopmanual/internal/audit"
	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/schema"
	"github.com/noahsarkproj/shopmanual/internal/targets"
)

var MetadataAuditStructure = &mcp.Tool{
	Name: "audit_structure",
	Description: "Fetch a structure from the RCSB PDB by accession id, parse it, score it (GEPS) " +
		"and append a structural entry to the Shop Manual. Returns the new entry.",
}

var MetadataAuditQuantumCandidate = &mcp.Tool{
	Name: "audit_quantum_candidate",
	Description: "Fetch a structure from the RCSB PDB, derive its quantum features (aromatic rings, " +
		"radical pairs, metal clusters), score it (Q-GEPS) and append a quantum entry to the Shop Manual.",
}

var MetadataLookupEntry = &mcp.Tool{
	Name:        "lookup_entry",
	Description: "Return the first Shop Manual entry with the given PartID.",
}

// Tools exposes an Auditor and its catalogue as MCP tool handlers.
type Tools struct {
	auditor   *audit.Auditor
	validator *schema.Validator
}

func NewTools(auditor *audit.Auditor, validator *schema.Validator) *Tools {
	return &Tools{auditor: auditor, validator: validator}
}

type InputAuditStructure struct {
	PartID                 string `json:"part_id" jsonschema:"identifier of the catalogue entry, e.g. MAG-001"`
	Name                   string `json:"name" jsonschema:"display name of the biological structure"`
	PDBID                  string `json:"pdb_id" jsonschema:"four character PDB accession id"`
	Inorganic              string `json:"inorganic,omitempty" jsonschema:"inorganic component"`
	PrimaryFunction        string `json:"primary_function,omitempty"`
	SecondaryFunction      string `json:"secondary_function,omitempty"`
	FailureModeEngineering string `json:"failure_mode_engineering,omitempty"`
	FailureModeBiological  string `json:"failure_mode_biological,omitempty"`
}

type InputAuditQuantumCandidate struct {
	PDBID  string `json:"pdb_id" jsonschema:"four character PDB accession id"`
	PartID string `json:"part_id" jsonschema:"identifier of the catalogue entry, e.g. CRY-001"`
	Name   string `json:"name" jsonschema:"display name of the biological structure"`
}

type InputLookupEntry struct {
	PartID string `json:"part_id" jsonschema:"identifier of the catalogue entry"`
}

// OutputEntry carries one catalogue entry in its serialized key/value form.
type OutputEntry struct {
	Entry         map[string]any `json:"entry"`
	CatalogueSize int            `json:"catalogue_size"`
}

func (t *Tools) AuditStructure(ctx context.Context, _ *mcp.CallToolRequest, input InputAuditStructure) (*mcp.CallToolResult, OutputEntry, error) {
	target := targets.Target{
		PartID:                 input.PartID,
		Name:                   input.Name,
		PDB:                    input.PDBID,
		Inorganic:              input.Inorganic,
		PrimaryFunction:        input.PrimaryFunction,
		SecondaryFunction:      input.SecondaryFunction,
		FailureModeEngineering: input.FailureModeEngineering,
		FailureModeBiological:  input.FailureModeBiological,
	}
	if t.validator != nil {
		if err := targets.Validate([]targets.Target{target}, t.validator); err != nil {
			return nil, OutputEntry{}, err
		}
	}

	entry, err := t.auditor.AuditStructural(ctx, target)
	if err != nil {
		return nil, OutputEntry{}, err
	}
	return t.output(entry)
}

func (t *Tools) AuditQuantumCandidate(ctx context.Context, _ *mcp.CallToolRequest, input InputAuditQuantumCandidate) (*mcp.CallToolResult, OutputEntry, error) {
	candidate := targets.QuantumCandidate{PDB: input.PDBID, PartID: input.PartID, Name: input.Name}
	if t.validator != nil {
		if err := targets.ValidateCandidates([]targets.QuantumCandidate{candidate}, t.validator); err != nil {
			return nil, OutputEntry{}, err
		}
	}

	entry, err := t.auditor.AuditQuantumCandidate(ctx, candidate.PDB, candidate.PartID, candidate.Name)
	if err != nil {
		return nil, OutputEntry{}, err
	}
	return t.output(entry)
}

func (t *Tools) LookupEntry(_ context.Context, _ *mcp.CallToolRequest, input InputLookupEntry) (*mcp.CallToolResult, OutputEntry, error) {
	if input.PartID == "" {
		return nil, OutputEntry{}, fmt.Errorf("part_id is required")
	}
	entry, ok := t.auditor.Catalogue().Lookup(input.PartID)
	if !ok {
		return nil, OutputEntry{}, fmt.Errorf("no catalogue entry with PartID %q", input.PartID)
	}
	return t.output(entry)
}

func (t *Tools) output(entry catalogue.Entry) (*mcp.CallToolResult, OutputEntry, error) {
	m, err := catalogue.ToMap(entry)
	if err != nil {
		return nil, OutputEntry{}, err
	}
	return nil, OutputEntry{Entry: m, CatalogueSize: t.auditor.Catalogue().Len()}, nil
}
