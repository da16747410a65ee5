package bytebuff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolGetPut(t *testing.T) {
	p := NewPool()

	buf := p.Get()
	require.NotNil(t, buf)
	assert.Equal(t, 0, buf.Len())

	_, err := buf.WriteString("hello")
	require.NoError(t, err)
	assert.Equal(t, 5, buf.Len())

	p.Put(buf)

	gets, puts := p.Stats()
	assert.Equal(t, uint64(1), gets)
	assert.Equal(t, uint64(1), puts)
}

func TestPoolPutNil(t *testing.T) {
	p := NewPool()
	p.Put(nil)

	_, puts := p.Stats()
	assert.Equal(t, uint64(0), puts)
}

func TestDefaultPool(t *testing.T) {
	buf := Get()
	require.NotNil(t, buf)
	buf.WriteString("data")
	Put(buf)
}
