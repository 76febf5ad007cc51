// SPDX-License-Identifier: Apache-2.0

// Package scoring computes the GEPS and Q-GEPS percentage scores. Each input
// is expected in 1..3; inputs are not validated, so out-of-range values give
// scores outside [0, 100].
package scoring

const (
	// MaxCategoryScore is the assumed ceiling of every scoring input.
	MaxCategoryScore = 3

	gepsInputs  = 8
	qgepsInputs = 4

	// DefaultBaselineCategoryScore is the uniform value used for every GEPS
	// category until categories are derived from structure features.
	DefaultBaselineCategoryScore = 3

	// DefaultQuantumEvidence is the evidence input used for Q-GEPS.
	DefaultQuantumEvidence = 2
)

// GEPS returns the general structural score as a percentage of 8*3.
func GEPS(modality, material, spatial, functional, dynamic, pathology, multiPhysics, efficiency int) float64 {
	sum := modality + material + spatial + functional + dynamic + pathology + multiPhysics + efficiency
	return float64(sum) / float64(gepsInputs*MaxCategoryScore) * 100
}

// QGEPS returns the quantum-candidate score as a percentage of 4*3.
func QGEPS(coherence, advantage, shielding, evidence int) float64 {
	sum := coherence + advantage + shielding + evidence
	return float64(sum) / float64(qgepsInputs*MaxCategoryScore) * 100
}

// Categories are the eight GEPS inputs.
type Categories struct {
	Modality     int
	Material     int
	Spatial      int
	Functional   int
	Dynamic      int
	Pathology    int
	MultiPhysics int
	Efficiency   int
}

// Uniform returns Categories with every input set to v.
func Uniform(v int) Categories {
	return Categories{
		Modality: v, Material: v, Spatial: v, Functional: v,
		Dynamic: v, Pathology: v, MultiPhysics: v, Efficiency: v,
	}
}

func (c Categories) Score() float64 {
	return GEPS(c.Modality, c.Material, c.Spatial, c.Functional, c.Dynamic, c.Pathology, c.MultiPhysics, c.Efficiency)
}

// QuantumInputs are the four Q-GEPS inputs.
type QuantumInputs struct {
	Coherence int `json:"coherence"`
	Advantage int `json:"advantage"`
	Shielding int `json:"shielding"`
	Evidence  int `json:"evidence"`
}

func (q QuantumInputs) Score() float64 {
	return QGEPS(q.Coherence, q.Advantage, q.Shielding, q.Evidence)
}
