package session

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// ID identifies a game session. IDs are handed out in increasing order and
// never reused for the lifetime of the process.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the decimal form produced by ID.String
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSessionID, s)
	}
	return ID(n), nil
}

// IDPool issues session IDs. The first ID is 1.
type IDPool struct {
	last atomic.Uint64
}

func NewIDPool() *IDPool {
	return &IDPool{}
}

// Next returns an ID strictly greater than every ID returned before.
// Increment and read are a single atomic step, so concurrent callers never
// observe the same value.
func (p *IDPool) Next() ID {
	return ID(p.last.Add(1))
}
