// SPDX-License-Identifier: Apache-2.0

package targets

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/noahsarkproj/shopmanual/internal/schema"
)

// Target describes one structure to audit.
type Target struct {
	PartID                 string `json:"PartID" yaml:"PartID"`
	Name                   string `json:"Name" yaml:"Name"`
	PDB                    string `json:"PDB" yaml:"PDB"`
	Inorganic              string `json:"Inorganic,omitempty" yaml:"Inorganic,omitempty"`
	PrimaryFunction        string `json:"PrimaryFunction,omitempty" yaml:"PrimaryFunction,omitempty"`
	SecondaryFunction      string `json:"SecondaryFunction,omitempty" yaml:"SecondaryFunction,omitempty"`
	FailureModeEngineering string `json:"FailureModeEngineering,omitempty" yaml:"FailureModeEngineering,omitempty"`
	FailureModeBiological  string `json:"FailureModeBiological,omitempty" yaml:"FailureModeBiological,omitempty"`
}

// QuantumCandidate names a structure for the quantum audit.
type QuantumCandidate struct {
	PDB    string `json:"PDB" yaml:"PDB"`
	PartID string `json:"PartID" yaml:"PartID"`
	Name   string `json:"Name" yaml:"Name"`
}

// Defaults returns the built-in structural audit targets.
func Defaults() []Target {
	return []Target{
		{
			PartID: "MAG-001", Name: "Magnetosome", PDB: "4DYF", Inorganic: "Magnetite",
			PrimaryFunction: "Non-Volatile Memory", SecondaryFunction: "Magnetometer",
			FailureModeEngineering: "Bit Flip / Array Corruption", FailureModeBiological: "Navigational Deficit",
		},
		{
			PartID: "BONE-001", Name: "Osteon Hydroxyapatite", PDB: "1AOE", Inorganic: "Hydroxyapatite",
			PrimaryFunction: "Load Bearing", SecondaryFunction: "Piezoelectric Transducer",
			FailureModeEngineering: "Fracture / Microcrack", FailureModeBiological: "Osteoporosis",
		},
		{
			PartID: "DIA-001", Name: "Diatom Frustule", PDB: "2QID", Inorganic: "Silica",
			PrimaryFunction: "Structural Scaffold", SecondaryFunction: "Optical Waveguide",
			FailureModeEngineering: "Crack / Shear", FailureModeBiological: "Growth Impairment",
		},
	}
}

// DefaultQuantumCandidates returns the built-in quantum audit candidates.
func DefaultQuantumCandidates() []QuantumCandidate {
	return []QuantumCandidate{
		{PDB: "6ZU0", PartID: "CRY-001", Name: "Cryptochrome 4"},
	}
}

// Load reads a YAML or JSON list of targets from path and validates each one.
func Load(path string, v *schema.Validator) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets %s: %w", path, err)
	}
	return Parse(data, v)
}

// Parse decodes a YAML or JSON list of targets and validates each one.
func Parse(data []byte, v *schema.Validator) ([]Target, error) {
	var list []Target
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal targets: %w", err)
	}
	if err := Validate(list, v); err != nil {
		return nil, err
	}
	return list, nil
}

// Validate checks every target against the schema.
func Validate(list []Target, v *schema.Validator) error {
	for i, t := range list {
		if err := v.Validate(schema.DefTarget, t); err != nil {
			return fmt.Errorf("target %d (%s): %w", i, t.PartID, err)
		}
	}
	return nil
}

// ValidateCandidates checks every quantum candidate against the schema.
func ValidateCandidates(list []QuantumCandidate, v *schema.Validator) error {
	for i, c := range list {
		if err := v.Validate(schema.DefQuantumCandidate, c); err != nil {
			return fmt.Errorf("quantum candidate %d (%s): %w", i, c.PartID, err)
		}
	}
	return nil
}
