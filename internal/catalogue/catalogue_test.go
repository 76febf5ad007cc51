// SPDX-License-Identifier: Apache-2.0

package catalogue_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/structure"
)

func structuralEntry(id string) catalogue.StructuralEntry {
	return catalogue.StructuralEntry{
		ID:                     id,
		BiologicalStructure:    "Magnetosome",
		InorganicCore:          "Magnetite",
		PrimaryFunction:        "Non-Volatile Memory",
		SecondaryFunction:      "Magnetometer",
		GEPSScore:              100,
		FailureModeEngineering: "Bit Flip / Array Corruption",
		FailureModeBiological:  "Navigational Deficit",
		DataSources:            "PDB:4DYF",
		ValidationPath:         "Structural Analysis",
		Atoms: []structure.AtomRecord{
			{Serial: 1, Name: "FE", ResName: "MAG", ChainID: "A", ResSeq: 10, X: 1, Y: 2, Z: 3},
		},
	}
}

func quantumEntry(id string) catalogue.QuantumEntry {
	return catalogue.QuantumEntry{
		ID:                      id,
		BiologicalStructure:     "Cryptochrome 4",
		QuantumPrimitive:        "Quantum Sensor / Qubit Candidate",
		QGEPSScore:              7.0 / 12.0 * 100,
		DecoherenceSource:       "Oxygen / Thermal Noise",
		ProposedQuantumFunction: "Magnetoreception / Coherent Energy Transport",
		QuantumValidationPath:   "2D Spectroscopy / Pulsed EPR",
		DataSources:             "PDB:6ZU0",
	}
}

// ---------------------------------------------------------------------------
// Catalogue
// ---------------------------------------------------------------------------

func TestCatalogue_AddPreservesOrder(t *testing.T) {
	c := catalogue.New()
	c.Add(structuralEntry("E1"))
	c.Add(quantumEntry("E2"))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "E1", entries[0].PartID())
	assert.Equal(t, "E2", entries[1].PartID())

	data, err := c.ToJSON()
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(data), `"E1"`), strings.Index(string(data), `"E2"`))
}

func TestCatalogue_Lookup(t *testing.T) {
	c := catalogue.New()
	first := structuralEntry("DUP-001")
	second := structuralEntry("DUP-001")
	second.BiologicalStructure = "Second"
	c.Add(quantumEntry("CRY-001"))
	c.Add(first)
	c.Add(second)

	got, ok := c.Lookup("DUP-001")
	require.True(t, ok)
	assert.Equal(t, first, got, "lookup returns the first match")

	got, ok = c.Lookup("CRY-001")
	require.True(t, ok)
	assert.Equal(t, catalogue.KindQuantum, got.Kind())

	got, ok = c.Lookup("MISSING")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCatalogue_ToJSON_Format(t *testing.T) {
	empty, err := catalogue.New().ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))

	c := catalogue.New()
	c.Add(quantumEntry("CRY-001"))
	data, err := c.ToJSON()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"AuditKind\": \"quantum\""), string(data))
	assert.Contains(t, string(data), `"Q-GEPS_Score": 58.333333333333336`)
	assert.Contains(t, string(data), `"ProposedQuantumFunction": "Magnetoreception / Coherent Energy Transport"`)
}

func TestCatalogue_StructuralKeys(t *testing.T) {
	data, err := json.Marshal(structuralEntry("MAG-001"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"AuditKind", "PartID", "BiologicalStructure", "InorganicCore", "PrimaryFunction",
		"SecondaryFunction", "GEPS_Score", "FailureMode_Engineering", "FailureMode_Biological",
		"DataSources", "ValidationPath", "Atoms",
	} {
		assert.Contains(t, m, key)
	}
	assert.Len(t, m, 12)

	atoms := m["Atoms"].([]any)
	assert.Equal(t, map[string]any{
		"serial": 1.0, "name": "FE", "resName": "MAG", "chainID": "A", "resSeq": 10.0, "x": 1.0, "y": 2.0, "z": 3.0,
	}, atoms[0])
}

func TestCatalogue_RoundTrip(t *testing.T) {
	noAtoms := structuralEntry("BONE-001")
	noAtoms.Atoms = nil
	emptyAtoms := structuralEntry("DIA-001")
	emptyAtoms.Atoms = []structure.AtomRecord{}

	c := catalogue.New()
	c.Add(structuralEntry("MAG-001"))
	c.Add(noAtoms)
	c.Add(emptyAtoms)
	c.Add(quantumEntry("CRY-001"))
	c.Add(structuralEntry("MAG-001"))

	data, err := c.ToJSON()
	require.NoError(t, err)

	loaded := catalogue.New()
	require.NoError(t, loaded.LoadJSON(data))

	if diff := cmp.Diff(c.Entries(), loaded.Entries()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogue_LoadJSON_ReplacesEntries(t *testing.T) {
	c := catalogue.New()
	c.Add(structuralEntry("OLD-001"))

	require.NoError(t, c.LoadJSON([]byte(`[{"AuditKind": "quantum", "PartID": "NEW-001", "Q-GEPS_Score": 50}]`)))
	require.Equal(t, 1, c.Len())
	_, ok := c.Lookup("OLD-001")
	assert.False(t, ok)
}

func TestCatalogue_LoadJSON_InfersKind(t *testing.T) {
	c := catalogue.New()
	legacy := `[
  {"PartID": "MAG-001", "GEPS_Score": 100.0, "DataSources": "PDB:4DYF", "Atoms": []},
  {"PartID": "CRY-001", "Q-GEPS_Score": 58.3, "DataSources": "PDB:6ZU0"}
]`
	require.NoError(t, c.LoadJSON([]byte(legacy)))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, catalogue.KindStructural, entries[0].Kind())
	assert.Equal(t, catalogue.KindQuantum, entries[1].Kind())
	assert.InDelta(t, 58.3, entries[1].(catalogue.QuantumEntry).QGEPSScore, 1e-9)
}

func TestCatalogue_LoadJSON_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		errContains string
	}{
		{name: "not an array", input: `{"PartID": "X"}`, errContains: "failed to unmarshal catalogue"},
		{name: "unknown kind", input: `[{"AuditKind": "thermal", "PartID": "X"}]`, errContains: "unknown AuditKind"},
		{name: "wrong field type", input: `[{"AuditKind": "structural", "GEPS_Score": "high"}]`, errContains: "entry 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := catalogue.New()
			c.Add(structuralEntry("KEEP-001"))
			err := c.LoadJSON([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Equal(t, 1, c.Len(), "failed load leaves entries untouched")
		})
	}
}

func TestCatalogue_SaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop_manual.json")

	c := catalogue.New()
	c.Add(structuralEntry("MAG-001"))
	require.NoError(t, c.SaveFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "[\n  {"))

	loaded := catalogue.New()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, c.Entries(), loaded.Entries())

	require.Error(t, loaded.LoadFile(filepath.Join(t.TempDir(), "missing.json")))
}

func TestToMap(t *testing.T) {
	m, err := catalogue.ToMap(quantumEntry("CRY-001"))
	require.NoError(t, err)
	assert.Equal(t, "quantum", m["AuditKind"])
	assert.Equal(t, "CRY-001", m["PartID"])
}
