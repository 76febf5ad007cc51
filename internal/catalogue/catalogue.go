// SPDX-License-Identifier: Apache-2.0

package catalogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Catalogue is the ordered, append-only Shop Manual. Entry order is audit
// order; identifiers are not required to be unique.
type Catalogue struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty Catalogue.
func New() *Catalogue {
	return &Catalogue{entries: []Entry{}}
}

// Add appends an entry.
func (c *Catalogue) Add(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Entries returns a copy of the entries in audit order.
func (c *Catalogue) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Lookup returns the first entry with the given PartID. The boolean is false
// when no entry matches.
func (c *Catalogue) Lookup(partID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.PartID() == partID {
			return e, true
		}
	}
	return nil, false
}

// ToJSON renders the catalogue as a JSON array indented by two spaces.
func (c *Catalogue) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Entries()); err != nil {
		return nil, fmt.Errorf("failed to encode catalogue: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// LoadJSON replaces the entries with the ones in data, a JSON array of entries.
// On error the catalogue is left unchanged.
func (c *Catalogue) LoadJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal catalogue: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, item := range raw {
		e, err := DecodeEntry(item)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	return nil
}

// SaveFile writes the catalogue to path.
func (c *Catalogue) SaveFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalogue %s: %w", path, err)
	}
	return nil
}

// LoadFile replaces the entries with the contents of path.
func (c *Catalogue) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalogue %s: %w", path, err)
	}
	return c.LoadJSON(data)
}
