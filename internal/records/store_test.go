package records

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func openSeeded(t *testing.T) (*Store, *memory.Slot) {
	t.Helper()
	slot := memory.New()
	store, err := Open(slot, WithLogger(quiet))
	require.NoError(t, err)
	return store, slot
}

func annLee() types.Fields {
	return types.Fields{
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann.lee@email.com",
		Phone:          "+1234567899",
		DateOfBirth:    "1999-03-04",
		Address:        "1 Elm St",
		Course:         "Mathematics",
		EnrollmentDate: "2024-09-01",
		Status:         types.StatusActive,
		GPA:            types.GPA(4.0),
	}
}

// failingSlot loads like an empty slot and refuses every write after the
// first failAfter saves.
type failingSlot struct {
	saves     int
	failAfter int
}

var errQuota = errors.New("quota exceeded")

func (f *failingSlot) Load() ([]types.Student, bool, error) { return nil, false, nil }

func (f *failingSlot) Save([]types.Student) error {
	f.saves++
	if f.saves > f.failAfter {
		return errQuota
	}
	return nil
}

func TestOpen_SeedsEmptySlot(t *testing.T) {
	store, slot := openSeeded(t)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))

	raw, ok := slot.Raw()
	require.True(t, ok, "seed must be persisted immediately")
	persisted, err := storage.Unmarshal([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, list, persisted)
}

func TestOpen_UsesPersistedRecords(t *testing.T) {
	slot := memory.New()
	slot.Seed(`[{"id":"a","firstName":"Solo","status":"inactive"}]`)

	store, err := Open(slot, WithLogger(quiet))
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Solo", list[0].FirstName)
	assert.Equal(t, types.StatusInactive, list[0].Status)
	assert.Equal(t, 0, slot.Writes(), "loading must not write")
}

func TestOpen_EmptyArrayIsNotSeeded(t *testing.T) {
	slot := memory.New()
	slot.Seed(`[]`)

	store, err := Open(slot, WithLogger(quiet))
	require.NoError(t, err)
	assert.Empty(t, store.List())
	assert.Equal(t, 0, slot.Writes())
}

func TestOpen_Errors(t *testing.T) {
	t.Run("corrupt slot", func(t *testing.T) {
		slot := memory.New()
		slot.Seed(`{not json`)
		_, err := Open(slot, WithLogger(quiet))
		assert.ErrorIs(t, err, storage.ErrCorruptSlot)
	})

	t.Run("unknown status", func(t *testing.T) {
		slot := memory.New()
		slot.Seed(`[{"id":"1","status":"expelled"}]`)
		_, err := Open(slot, WithLogger(quiet))
		assert.ErrorIs(t, err, storage.ErrCorruptSlot)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		slot := memory.New()
		slot.Seed(`[{"id":"1"},{"id":"1"}]`)
		_, err := Open(slot, WithLogger(quiet))
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("seed cannot be persisted", func(t *testing.T) {
		_, err := Open(&failingSlot{}, WithLogger(quiet))
		assert.ErrorIs(t, err, errQuota)
	})
}

func TestCreate_AssignsUniqueIDs(t *testing.T) {
	// The clock never advances; ids must still be distinct.
	frozen := time.UnixMilli(1_700_000_000_000)
	store, err := Open(memory.New(),
		WithLogger(quiet),
		WithIDs(TimeIDs(func() time.Time { return frozen })))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, r := range store.List() {
		seen[r.ID] = true
	}
	for i := 0; i < 50; i++ {
		created, err := store.Create(annLee())
		require.NoError(t, err)
		require.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
	assert.Len(t, store.List(), 53)
}

func TestCreate_RedrawsCollidingIDs(t *testing.T) {
	candidates := []string{"1", "2", "fresh"}
	next := func() string {
		id := candidates[0]
		candidates = candidates[1:]
		return id
	}

	store, err := Open(memory.New(), WithLogger(quiet), WithIDs(next))
	require.NoError(t, err)

	created, err := store.Create(annLee())
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ID)
}

func TestCreate_ThenGet(t *testing.T) {
	store, slot := openSeeded(t)
	writes := slot.Writes()

	fields := annLee()
	created, err := store.Create(fields)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fields, created.Fields)

	got, ok := store.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, types.Student{ID: created.ID, Fields: fields}, got)

	list := store.List()
	assert.Equal(t, created.ID, list[len(list)-1].ID, "create appends")
	assert.Equal(t, writes+1, slot.Writes())
}

func TestCreate_DefaultsToActive(t *testing.T) {
	store, _ := openSeeded(t)

	created, err := store.Create(types.Fields{FirstName: "No", LastName: "Status"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, created.Status)
}

func TestCreate_ReturnedRecordIsACopy(t *testing.T) {
	store, _ := openSeeded(t)

	created, err := store.Create(annLee())
	require.NoError(t, err)
	*created.GPA = 1.0

	got, _ := store.Get(created.ID)
	assert.Equal(t, 4.0, *got.GPA)
}

func TestGet_Absent(t *testing.T) {
	store, _ := openSeeded(t)

	got, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, types.Student{}, got)
}

func TestUpdate_ReplacesFieldsInPlace(t *testing.T) {
	store, slot := openSeeded(t)
	writes := slot.Writes()

	fields := annLee()
	fields.Status = types.StatusGraduated
	fields.GPA = nil

	updated, ok, err := store.Update("2", fields)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", updated.ID)

	got, ok := store.Get("2")
	require.True(t, ok)
	assert.Equal(t, fields, got.Fields)
	assert.Nil(t, got.GPA)

	assert.Equal(t, []string{"1", "2", "3"}, ids(store.List()), "position is kept")
	assert.Equal(t, writes+1, slot.Writes())
}

func TestUpdate_Absent(t *testing.T) {
	store, slot := openSeeded(t)
	before := store.List()
	writes := slot.Writes()

	_, ok, err := store.Update("missing", annLee())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, store.List())
	assert.Equal(t, writes, slot.Writes(), "no write for unknown id")
}

func TestDelete(t *testing.T) {
	store, slot := openSeeded(t)
	writes := slot.Writes()

	removed, err := store.Delete("2")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok := store.Get("2")
	assert.False(t, ok)
	assert.Equal(t, []string{"1", "3"}, ids(store.List()))
	assert.Equal(t, writes+1, slot.Writes())

	// Positions after the removed record must still resolve.
	got, ok := store.Get("3")
	require.True(t, ok)
	assert.Equal(t, "Mike", got.FirstName)
}

func TestDelete_Absent(t *testing.T) {
	store, slot := openSeeded(t)
	before := store.List()
	writes := slot.Writes()

	removed, err := store.Delete("missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, before, store.List())
	assert.Equal(t, writes, slot.Writes())
}

func TestCreateThenDelete_RestoresCollection(t *testing.T) {
	store, _ := openSeeded(t)
	before := store.List()

	created, err := store.Create(annLee())
	require.NoError(t, err)
	removed, err := store.Delete(created.ID)
	require.NoError(t, err)
	require.True(t, removed)

	assert.Equal(t, before, store.List())
}

func TestSearch(t *testing.T) {
	store, _ := openSeeded(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"john", []string{"1", "3"}}, // John Doe, Mike Johnson
		{"JOHN", []string{"1", "3"}},
		{"jane smith", []string{"2"}}, // across first + last name
		{"n d", []string{"1"}},        // name is joined with a space
		{"johndoe", []string{}},
		{"smith@", []string{"2"}},       // email
		{"engineering", []string{"3"}},  // course
		{"business adm", []string{"2"}}, // course, partial
		{"+123456789", []string{}},      // phone is not searched
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.query), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(store.Search(tt.query)))
		})
	}
}

func TestSearch_EmptyMatchesList(t *testing.T) {
	store, _ := openSeeded(t)
	_, err := store.Create(annLee())
	require.NoError(t, err)

	assert.Equal(t, store.List(), store.Search(""))
}

func TestStats_Seed(t *testing.T) {
	store, _ := openSeeded(t)

	stats := store.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Graduated)
	assert.Equal(t, "3.80", stats.AverageGPA.String())
}

func TestStats_MissingGPACountsAsZero(t *testing.T) {
	slot := memory.New()
	slot.Seed(`[
		{"id":"1","status":"active","gpa":3.0},
		{"id":"2","status":"inactive"},
		{"id":"3","status":"graduated","gpa":2.0}
	]`)
	store, err := Open(slot, WithLogger(quiet))
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Graduated)
	assert.LessOrEqual(t, stats.Active+stats.Graduated, stats.Total)
	assert.Equal(t, "1.67", stats.AverageGPA.String())
}

func TestStats_Empty(t *testing.T) {
	store, err := Open(memory.New(), WithLogger(quiet), WithSeed(nil))
	require.NoError(t, err)

	assert.Equal(t, types.Stats{}, store.Stats())
	assert.Equal(t, "0.00", store.Stats().AverageGPA.String())
}

func TestStats_TotalTracksList(t *testing.T) {
	store, _ := openSeeded(t)

	created, err := store.Create(annLee())
	require.NoError(t, err)
	assert.Equal(t, len(store.List()), store.Stats().Total)

	_, err = store.Delete(created.ID)
	require.NoError(t, err)
	_, err = store.Delete("1")
	require.NoError(t, err)
	assert.Equal(t, len(store.List()), store.Stats().Total)
}

func TestRecent(t *testing.T) {
	store, _ := openSeeded(t)

	assert.Equal(t, []string{"1", "2"}, ids(store.Recent(2)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(store.Recent(5)))
	assert.Empty(t, store.Recent(0))
	assert.Empty(t, store.Recent(-1))
}

func TestPersistenceFailure_KeepsMemoryState(t *testing.T) {
	slot := &failingSlot{failAfter: 1} // seed save succeeds
	store, err := Open(slot, WithLogger(quiet))
	require.NoError(t, err)

	created, err := store.Create(annLee())
	require.ErrorIs(t, err, errQuota)

	_, ok := store.Get(created.ID)
	assert.True(t, ok, "no rollback on failed write")

	_, found, err := store.Update("1", annLee())
	assert.True(t, found)
	assert.ErrorIs(t, err, errQuota)

	removed, err := store.Delete("2")
	assert.True(t, removed)
	assert.ErrorIs(t, err, errQuota)
}

func TestRoundTrip(t *testing.T) {
	store, slot := openSeeded(t)
	_, err := store.Create(annLee())
	require.NoError(t, err)
	_, _, err = store.Update("1", annLee())
	require.NoError(t, err)
	_, err = store.Delete("3")
	require.NoError(t, err)

	raw, _ := slot.Raw()
	reloadedSlot := memory.New()
	reloadedSlot.Seed(raw)

	reloaded, err := Open(reloadedSlot, WithLogger(quiet))
	require.NoError(t, err)
	assert.Equal(t, store.List(), reloaded.List())
}

func TestClose(t *testing.T) {
	store, _ := openSeeded(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")

	_, err := store.Create(annLee())
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = store.Update("1", annLee())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = store.Delete("1")
	assert.ErrorIs(t, err, ErrClosed)

	assert.Len(t, store.List(), 3, "reads still work")
}

func ids(list []types.Student) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}
