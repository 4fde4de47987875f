package records

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDFunc mints a candidate identifier. The store re-draws while the
// candidate collides with an existing record, so an IDFunc only needs to
// be unlikely to repeat, not globally unique.
type IDFunc func() string

// TimeIDs returns millisecond timestamps as decimal text. Ids are strictly
// increasing within one generator even when now does not advance.
func TimeIDs(now func() time.Time) IDFunc {
	var (
		mu   sync.Mutex
		last int64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()

		n := now().UnixMilli()
		if n <= last {
			n = last + 1
		}
		last = n
		return strconv.FormatInt(n, 10)
	}
}

// UUIDs returns random version 4 UUIDs.
func UUIDs() IDFunc {
	return uuid.NewString
}
