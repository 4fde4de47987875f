// Package records implements the student record store: the single owner
// of the student collection.
//
// LIFECYCLE
// ─────────
// A Store only exists after Open has loaded the durable slot. There is no
// half-initialised state in which an empty in-memory collection could be
// written over data that simply has not been read yet:
//
//	slot   := memory.New()              // or sqlite.New(cfg)
//	store, err := records.Open(slot)    // load (or seed) happens here
//	store.Create(fields)                // every mutation saves the snapshot
//
// PERSISTENCE
// ───────────
// Every successful Create / Update / Delete writes the whole collection to
// the slot before returning. A failed write is returned to the caller and
// the in-memory change is kept: memory may be ahead of the slot.
package records

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	// ErrClosed is returned by mutations on a closed Store.
	ErrClosed = errors.New("records: store is closed")

	// ErrDuplicateID is returned by Open when persisted or seed data holds
	// the same id twice.
	ErrDuplicateID = errors.New("records: duplicate id")
)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	slot   storage.Slot
	list   []types.Student
	index  map[string]int // id -> position in list
	newID  IDFunc
	log    *slog.Logger
	closed bool
}

type options struct {
	newID IDFunc
	seed  []types.Student
	log   *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithIDs sets the identifier generator. The default is TimeIDs(time.Now).
func WithIDs(f IDFunc) Option {
	return func(o *options) { o.newID = f }
}

// WithSeed replaces DefaultSeed as the records written to an empty slot.
func WithSeed(seed []types.Student) Option {
	return func(o *options) { o.seed = seed }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Open loads the collection from slot. When the slot has never been
// written the seed records are copied in and persisted immediately.
func Open(slot storage.Slot, opts ...Option) (*Store, error) {
	o := options{
		newID: TimeIDs(time.Now),
		seed:  DefaultSeed(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	loaded, found, err := slot.Load()
	if err != nil {
		return nil, fmt.Errorf("records.Open: load: %w", err)
	}

	seeded := !found
	if seeded {
		loaded = cloneAll(o.seed)
	}
	if err := checkUnique(loaded); err != nil {
		return nil, fmt.Errorf("records.Open: %w", err)
	}

	s := &Store{
		slot:  slot,
		list:  loaded,
		newID: o.newID,
		log:   o.log,
	}
	s.reindex(0)

	if seeded {
		o.log.Info("slot empty, writing seed records", slog.Int("count", len(loaded)))
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("records.Open: persist seed: %w", err)
		}
	} else {
		o.log.Debug("records loaded", slog.Int("count", len(loaded)))
	}

	return s, nil
}

// List returns every record in insertion order.
func (s *Store) List() []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.list)
}

// Recent returns the first n records in insertion order.
func (s *Store) Recent(n int) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.list) {
		n = len(s.list)
	}
	return cloneAll(s.list[:n])
}

// Get looks a record up by id. ok is false when no such record exists.
func (s *Store) Get(id string) (student types.Student, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return types.Student{}, false
	}
	return s.list[i].Clone(), true
}

// Create appends a record with a freshly minted id and persists the
// collection.
func (s *Store) Create(fields types.Fields) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.Student{}, ErrClosed
	}

	id := s.newID()
	for {
		if _, taken := s.index[id]; !taken {
			break
		}
		id = s.newID()
	}

	student := types.Student{ID: id, Fields: fields}.Clone()
	s.list = append(s.list, student)
	s.index[id] = len(s.list) - 1

	if err := s.save(); err != nil {
		return student.Clone(), fmt.Errorf("records.Create: %w", err)
	}
	return student.Clone(), nil
}

// Update replaces every field of record id, keeping its id and position.
// ok is false, and nothing is written, when the record does not exist.
func (s *Store) Update(id string, fields types.Fields) (student types.Student, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.Student{}, false, ErrClosed
	}

	i, ok := s.index[id]
	if !ok {
		return types.Student{}, false, nil
	}

	s.list[i] = types.Student{ID: id, Fields: fields}.Clone()

	if err := s.save(); err != nil {
		return s.list[i].Clone(), true, fmt.Errorf("records.Update: %w", err)
	}
	return s.list[i].Clone(), true, nil
}

// Delete removes record id. It reports whether a record was removed;
// nothing is written when it was not.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}

	s.list = append(s.list[:i], s.list[i+1:]...)
	delete(s.index, id)
	s.reindex(i)

	if err := s.save(); err != nil {
		return true, fmt.Errorf("records.Delete: %w", err)
	}
	return true, nil
}

// Search returns records whose "first last" name, email or course contains
// query, ignoring case, in insertion order. An empty query matches all.
func (s *Store) Search(query string) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return cloneAll(s.list)
	}

	q := strings.ToLower(query)
	matches := make([]types.Student, 0)
	for _, r := range s.list {
		if strings.Contains(strings.ToLower(r.FullName()), q) ||
			strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.Course), q) {
			matches = append(matches, r.Clone())
		}
	}
	return matches
}

// Stats summarises the collection. AverageGPA divides the GPA sum by the
// total record count, records without a GPA counting as zero.
func (s *Store) Stats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{Total: len(s.list)}
	var sum float64
	for _, r := range s.list {
		switch r.Status {
		case types.StatusActive:
			stats.Active++
		case types.StatusGraduated:
			stats.Graduated++
		}
		if r.GPA != nil {
			sum += *r.GPA
		}
	}
	if stats.Total > 0 {
		avg := sum / float64(stats.Total)
		stats.AverageGPA = types.Decimal2(math.Round(avg*100) / 100)
	}
	return stats
}

// Close releases the slot if it holds resources. Reads keep working on the
// in-memory collection; mutations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.slot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// save writes the full collection. Callers hold s.mu.
func (s *Store) save() error {
	if err := s.slot.Save(s.list); err != nil {
		s.log.Error("persisting records failed", slog.String("error", err.Error()))
		return fmt.Errorf("save: %w", err)
	}
	s.log.Debug("records persisted", slog.Int("count", len(s.list)))
	return nil
}

// reindex rebuilds index entries from position from onwards.
func (s *Store) reindex(from int) {
	if s.index == nil {
		s.index = make(map[string]int, len(s.list))
	}
	for i := from; i < len(s.list); i++ {
		s.index[s.list[i].ID] = i
	}
}

func cloneAll(in []types.Student) []types.Student {
	out := make([]types.Student, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
