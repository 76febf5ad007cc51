// SPDX-License-Identifier: Apache-2.0

// Package schema validates targets and catalogue entries against the
// embedded CUE definitions in shopmanual.cue.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/noahsarkproj/shopmanual/internal/catalogue"
)

//go:embed shopmanual.cue
var source string

// Definitions in shopmanual.cue.
const (
	DefTarget           = "#Target"
	DefQuantumCandidate = "#QuantumCandidate"
	DefEntry            = "#Entry"
)

// Validator checks JSON documents against the Shop Manual schema.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(source, cue.Filename("shopmanual.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// ValidateJSON validates a JSON document against the named definition.
func (v *Validator) ValidateJSON(def string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	d := v.schema.LookupPath(cue.ParsePath(def))
	if !d.Exists() {
		return fmt.Errorf("schema has no definition %s", def)
	}

	value := v.ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if err := d.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: %w", def, err)
	}
	return nil
}

// Validate encodes x as JSON and validates it against the named definition.
func (v *Validator) Validate(def string, x any) error {
	data, err := json.Marshal(x)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	return v.ValidateJSON(def, data)
}

func (v *Validator) ValidateEntry(e catalogue.Entry) error {
	if err := v.Validate(DefEntry, e); err != nil {
		return fmt.Errorf("entry %s: %w", e.PartID(), err)
	}
	return nil
}

// ValidateCatalogueJSON validates every entry of a serialized catalogue and
// returns the first violation.
func (v *Validator) ValidateCatalogueJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalogue is not a JSON array: %w", err)
	}
	for i, item := range raw {
		if err := v.ValidateJSON(DefEntry, item); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}
