// SPDX-License-Identifier: Apache-2.0

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
	"github.com/noahsarkproj/shopmanual/internal/schema"
	"github.com/noahsarkproj/shopmanual/internal/structure"
)

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidator_Target(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "full target", doc: `{"PartID": "MAG-001", "Name": "Magnetosome", "PDB": "4DYF", "Inorganic": "Magnetite"}`},
		{name: "minimal target", doc: `{"PartID": "X-1", "Name": "", "PDB": "1aoe"}`},
		{name: "missing PartID", doc: `{"Name": "Magnetosome", "PDB": "4DYF"}`, wantErr: true},
		{name: "empty PartID", doc: `{"PartID": "", "Name": "Magnetosome", "PDB": "4DYF"}`, wantErr: true},
		{name: "bad accession", doc: `{"PartID": "MAG-001", "Name": "Magnetosome", "PDB": "4DYF.pdb"}`, wantErr: true},
		{name: "unknown field", doc: `{"PartID": "MAG-001", "Name": "M", "PDB": "4DYF", "Colour": "red"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateJSON(schema.DefTarget, []byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidator_Entry(t *testing.T) {
	v := newValidator(t)

	structural := catalogue.StructuralEntry{
		ID:             "MAG-001",
		GEPSScore:      100,
		DataSources:    "PDB:4DYF",
		ValidationPath: "Structural Analysis",
		Atoms:          []structure.AtomRecord{{Serial: 1, Name: "FE", ResName: "MAG", ChainID: "A", ResSeq: 10, X: 1.5, Y: 2, Z: 3}},
	}
	require.NoError(t, v.ValidateEntry(structural))

	structural.Atoms = nil
	require.NoError(t, v.ValidateEntry(structural))

	quantum := catalogue.QuantumEntry{ID: "CRY-001", QGEPSScore: 58.3, DataSources: "PDB:6ZU0"}
	require.NoError(t, v.ValidateEntry(quantum))

	quantum.DataSources = "EMDB:1234"
	err := v.ValidateEntry(quantum)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRY-001")
}

func TestValidator_CatalogueJSON(t *testing.T) {
	v := newValidator(t)

	manual := catalogue.New()
	manual.Add(catalogue.StructuralEntry{ID: "MAG-001", DataSources: "PDB:4DYF", Atoms: []structure.AtomRecord{}})
	manual.Add(catalogue.QuantumEntry{ID: "CRY-001", DataSources: "PDB:6ZU0"})
	data, err := manual.ToJSON()
	require.NoError(t, err)
	require.NoError(t, v.ValidateCatalogueJSON(data))

	err = v.ValidateCatalogueJSON([]byte(`[{"AuditKind": "quantum", "PartID": "CRY-001", "Atoms": []}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0")

	require.Error(t, v.ValidateCatalogueJSON([]byte(`{"not": "an array"}`)))
}

func TestValidator_UnknownDefinition(t *testing.T) {
	v := newValidator(t)
	err := v.ValidateJSON("#Nope", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no definition")
}
