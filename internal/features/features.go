// SPDX-License-Identifier: Apache-2.0

package features

import (
	"github.com/noahsarkproj/shopmanual/internal/structure"
)

// DecoherenceSource is reported for every structure; it is not derived from
// the atom list yet.
const DecoherenceSource = "Oxygen / Thermal Noise"

// Feature names as they appear in Map.
const (
	AromaticRings = "aromatic_rings"
	ChiralCenters = "chiral_centers"
	MetalClusters = "metal_clusters"
	RadicalPairs  = "radical_pairs"
	Decoherence   = "decoherence"
)

// Features holds the categorical aggregates derived from an atom list.
type Features struct {
	AromaticRings int    `json:"aromatic_rings"`
	ChiralCenters int    `json:"chiral_centers"`
	MetalClusters int    `json:"metal_clusters"`
	RadicalPairs  int    `json:"radical_pairs"`
	Decoherence   string `json:"decoherence"`
}

// Map returns the features keyed by feature name.
func (f Features) Map() map[string]any {
	return map[string]any{
		AromaticRings: f.AromaticRings,
		ChiralCenters: f.ChiralCenters,
		MetalClusters: f.MetalClusters,
		RadicalPairs:  f.RadicalPairs,
		Decoherence:   f.Decoherence,
	}
}

// countRule counts atoms whose selected field is one of members.
type countRule struct {
	feature string
	field   func(structure.AtomRecord) string
	members map[string]bool
}

func residue(a structure.AtomRecord) string  { return a.ResName }
func atomName(a structure.AtomRecord) string { return a.Name }

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// countRules defines the counted features. Each rule is an independent aggregate.
var countRules = []countRule{
	{feature: AromaticRings, field: residue, members: set("PHE", "TRP", "TYR")},
	{feature: ChiralCenters, field: residue, members: set("ALA", "VAL", "LEU", "ILE", "THR", "SER")},
	{feature: MetalClusters, field: atomName, members: set("FE", "MN", "CU", "MG")},
}

// radicalPairResidue marks a flavin cofactor capable of forming radical pairs.
const radicalPairResidue = "FAD"

// Extract derives the quantum-relevant features of a parsed structure.
func Extract(s structure.ParsedStructure) Features {
	counts := make(map[string]int, len(countRules))
	radical := 0
	for _, atom := range s.Atoms {
		for _, rule := range countRules {
			if rule.members[rule.field(atom)] {
				counts[rule.feature]++
			}
		}
		if atom.ResName == radicalPairResidue {
			radical = 1
		}
	}

	return Features{
		AromaticRings: counts[AromaticRings],
		ChiralCenters: counts[ChiralCenters],
		MetalClusters: counts[MetalClusters],
		RadicalPairs:  radical,
		Decoherence:   DecoherenceSource,
	}
}
