package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_Push(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	assert.True(q.Empty())
	assert.False(q.Full())

	assert.True(q.Push(0x1234))
	assert.False(q.Empty())
	assert.Equal(1, q.Len())
}

func TestQueue_Pop(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	q.Push(0x1234)
	q.Push(0xabcd)

	val, ok := q.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x1234), val)
	assert.Equal(1, q.Len())

	val, ok = q.Pop()
	assert.True(ok)
	assert.Equal(uint16(0xabcd), val)
	assert.Equal(0, q.Len())
}

func TestQueue_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	val, ok := q.Pop()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestQueue_Peek(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	q.Push(0x1234)
	q.Push(0xabcd)

	val, ok := q.Peek()
	assert.True(ok)
	assert.Equal(uint16(0x1234), val)
	assert.Equal(2, q.Len())
}

func TestQueue_Full(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	for i := 0; i < QUEUE_LIMIT; i++ {
		assert.False(q.Full())
		assert.True(q.Push(uint16(i)))
	}

	assert.True(q.Full())
	assert.False(q.Push(0xffff))
	assert.Equal(QUEUE_LIMIT, q.Len())

	val, ok := q.Pop()
	assert.True(ok)
	assert.Equal(uint16(0), val)
}

func TestQueue_Wrap(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	for i := 0; i < QUEUE_LIMIT*3; i++ {
		assert.True(q.Push(uint16(i)))
		val, ok := q.Pop()
		assert.True(ok)
		assert.Equal(uint16(i), val)
	}
	assert.True(q.Empty())
}

func TestQueue_Reset(t *testing.T) {
	assert := assert.New(t)

	q := &Queue{}
	q.Push(1)
	q.Push(2)

	q.Reset()
	assert.True(q.Empty())
	assert.Equal(0, q.Len())
}
