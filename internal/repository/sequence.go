package repository

import "sync/atomic"

// Sequence hands out entity ids. Ids are strictly increasing and are never
// handed out twice, even after the entity that held one is deleted.
type Sequence interface {
	Next() int64
}

// Counter is an in-process Sequence starting at 1.
//
// The zero value is ready to use.
type Counter struct {
	last atomic.Int64
}

var _ Sequence = (*Counter)(nil)

func (c *Counter) Next() int64 {
	return c.last.Add(1)
}
