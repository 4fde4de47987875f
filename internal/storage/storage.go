// Package storage defines the Slot interface — the contract any durable
// backend must satisfy to hold the student collection.
//
// A slot is one named location holding the ENTIRE collection as text.
// There are no per-record writes: every mutation in the record store
// replaces the full snapshot. Keeping the contract this small lets the
// in-memory structure (internal/records) and the durable encoding vary
// independently — swapping SQLite for another key-value backend only
// requires a new Slot implementation and a one-line change in main.go.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrCorruptSlot is returned when persisted text cannot be decoded.
var ErrCorruptSlot = errors.New("storage: corrupt slot contents")

// Slot is the durable-storage contract.
type Slot interface {
	// Load reads the full collection once. found is false when the slot has
	// never been written or holds empty text; that is not an error.
	Load() (records []types.Student, found bool, err error)

	// Save durably replaces the stored collection with records.
	Save(records []types.Student) error
}

// Marshal encodes a collection in the slot's textual format: a JSON array
// of student objects. A nil collection encodes as [] rather than null.
func Marshal(records []types.Student) ([]byte, error) {
	if records == nil {
		records = []types.Student{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("storage.Marshal: %w", err)
	}
	return data, nil
}

// Unmarshal decodes text produced by Marshal.
func Unmarshal(data []byte) ([]types.Student, error) {
	records := make([]types.Student, 0)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}
	return records, nil
}
