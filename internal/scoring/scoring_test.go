// SPDX-License-Identifier: Apache-2.0

package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noahsarkproj/shopmanual/internal/scoring"
)

func TestGEPS(t *testing.T) {
	tests := []struct {
		name   string
		inputs [8]int
		want   float64
	}{
		{name: "all maximum", inputs: [8]int{3, 3, 3, 3, 3, 3, 3, 3}, want: 100.0},
		{name: "all minimum", inputs: [8]int{1, 1, 1, 1, 1, 1, 1, 1}, want: 8.0 / 24.0 * 100},
		{name: "mixed", inputs: [8]int{1, 2, 3, 1, 2, 3, 1, 2}, want: 15.0 / 24.0 * 100},
		{name: "zero", inputs: [8]int{}, want: 0},
		{name: "out of range is not clamped", inputs: [8]int{6, 6, 6, 6, 6, 6, 6, 6}, want: 200.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.inputs
			got := scoring.GEPS(in[0], in[1], in[2], in[3], in[4], in[5], in[6], in[7])
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestQGEPS(t *testing.T) {
	assert.InDelta(t, 100.0, scoring.QGEPS(3, 3, 3, 3), 1e-9)
	assert.InDelta(t, 41.666666666, scoring.QGEPS(1, 1, 1, 2), 1e-6)
	assert.InDelta(t, 58.333333333, scoring.QGEPS(1, 1, 3, 2), 1e-6)
	assert.InDelta(t, -25.0, scoring.QGEPS(-3, 0, 0, 0), 1e-9)
}

func TestScoring_Deterministic(t *testing.T) {
	assert.Equal(t, scoring.QGEPS(3, 1, 3, 2), scoring.QGEPS(3, 1, 3, 2))
	assert.Equal(t, scoring.GEPS(1, 2, 3, 1, 2, 3, 1, 2), scoring.GEPS(1, 2, 3, 1, 2, 3, 1, 2))
}

func TestCategories(t *testing.T) {
	assert.InDelta(t, 100.0, scoring.Uniform(scoring.DefaultBaselineCategoryScore).Score(), 1e-9)
	assert.InDelta(t, 50.0, scoring.Uniform(0).Score()+scoring.Categories{Modality: 12}.Score(), 1e-9)
}

func TestQuantumInputs(t *testing.T) {
	q := scoring.QuantumInputs{Coherence: 1, Advantage: 1, Shielding: 3, Evidence: scoring.DefaultQuantumEvidence}
	assert.InDelta(t, 7.0/12.0*100, q.Score(), 1e-9)
}
