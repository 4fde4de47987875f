// Package memory is a process-local storage.Slot. It keeps the encoded
// text rather than the records themselves, so whatever is loaded back has
// gone through the same encoding as a durable slot.
package memory

import (
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

type Slot struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

var _ storage.Slot = (*Slot)(nil)

func New() *Slot {
	return &Slot{}
}

// Seed pre-populates the slot with raw text, as if an earlier session had
// written it.
func (s *Slot) Seed(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = []byte(raw)
}

// Raw returns the stored text and whether anything is stored.
func (s *Slot) Raw() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.data), len(s.data) > 0
}

// Writes counts successful Save calls.
func (s *Slot) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Slot) Load() ([]types.Student, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data) == 0 {
		return nil, false, nil
	}
	records, err := storage.Unmarshal(s.data)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func (s *Slot) Save(records []types.Student) error {
	data, err := storage.Marshal(records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.writes++
	return nil
}
