package repotest

import (
	"sync/atomic"

	"github.com/sakif/filmorate/internal/repository"
)

// Counter is a repository.Sequence that tests can rewind with Reset.
// Production wiring uses repository.Counter, which has no way back.
type Counter struct {
	last atomic.Int64
}

var _ repository.Sequence = (*Counter)(nil)

func (c *Counter) Next() int64 {
	return c.last.Add(1)
}

// Reset makes the next id 1 again.
func (c *Counter) Reset() {
	c.last.Store(0)
}
