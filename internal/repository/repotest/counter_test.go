package repotest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Reset(t *testing.T) {
	var c Counter
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())

	c.Reset()
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
}
