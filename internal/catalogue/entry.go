// SPDX-License-Identifier: Apache-2.0

package catalogue

import (
	"encoding/json"
	"fmt"

	"github.com/noahsarkproj/shopmanual/internal/structure"
)

// Kind discriminates the audit that produced an entry.
type Kind string

const (
	KindStructural Kind = "structural"
	KindQuantum    Kind = "quantum"
)

// kindKey is the JSON key carrying the discriminant.
const kindKey = "AuditKind"

// Entry is one audited biological structure. The concrete type is either
// StructuralEntry or QuantumEntry.
type Entry interface {
	PartID() string
	Kind() Kind
}

// StructuralEntry is produced by a structural audit.
type StructuralEntry struct {
	ID                     string                 `json:"PartID"`
	BiologicalStructure    string                 `json:"BiologicalStructure"`
	InorganicCore          string                 `json:"InorganicCore"`
	PrimaryFunction        string                 `json:"PrimaryFunction"`
	SecondaryFunction      string                 `json:"SecondaryFunction"`
	GEPSScore              float64                `json:"GEPS_Score"`
	FailureModeEngineering string                 `json:"FailureMode_Engineering"`
	FailureModeBiological  string                 `json:"FailureMode_Biological"`
	DataSources            string                 `json:"DataSources"`
	ValidationPath         string                 `json:"ValidationPath"`
	Atoms                  []structure.AtomRecord `json:"Atoms"`
}

func (e StructuralEntry) PartID() string { return e.ID }
func (e StructuralEntry) Kind() Kind     { return KindStructural }

func (e StructuralEntry) MarshalJSON() ([]byte, error) {
	type fields StructuralEntry
	return json.Marshal(struct {
		Kind Kind `json:"AuditKind"`
		fields
	}{KindStructural, fields(e)})
}

// QuantumEntry is produced by a quantum-candidate audit.
type QuantumEntry struct {
	ID                      string  `json:"PartID"`
	BiologicalStructure     string  `json:"BiologicalStructure"`
	QuantumPrimitive        string  `json:"QuantumPrimitive"`
	QGEPSScore              float64 `json:"Q-GEPS_Score"`
	DecoherenceSource       string  `json:"DecoherenceSource"`
	ProposedQuantumFunction string  `json:"ProposedQuantumFunction"`
	QuantumValidationPath   string  `json:"QuantumValidationPath"`
	DataSources             string  `json:"DataSources"`
}

func (e QuantumEntry) PartID() string { return e.ID }
func (e QuantumEntry) Kind() Kind     { return KindQuantum }

func (e QuantumEntry) MarshalJSON() ([]byte, error) {
	type fields QuantumEntry
	return json.Marshal(struct {
		Kind Kind `json:"AuditKind"`
		fields
	}{KindQuantum, fields(e)})
}

// entryProbe reads just enough of an entry to pick its concrete type.
type entryProbe struct {
	Kind       Kind     `json:"AuditKind"`
	QGEPSScore *float64 `json:"Q-GEPS_Score"`
}

// DecodeEntry decodes a single flattened entry object. Entries without a
// discriminant are treated as quantum when they carry a Q-GEPS score.
func DecodeEntry(data []byte) (Entry, error) {
	var probe entryProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to read entry: %w", err)
	}

	kind := probe.Kind
	if kind == "" {
		kind = KindStructural
		if probe.QGEPSScore != nil {
			kind = KindQuantum
		}
	}

	switch kind {
	case KindStructural:
		var e StructuralEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode structural entry: %w", err)
		}
		return e, nil
	case KindQuantum:
		var e QuantumEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("failed to decode quantum entry: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown %s %q", kindKey, kind)
	}
}

// ToMap flattens an entry into a generic key/value record.
func ToMap(e Entry) (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
