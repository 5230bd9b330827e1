package evt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeSpace(t *testing.T) {
	cases := []struct {
		name             string
		start, end, size int64
		empty            bool
		want             int64
	}{
		{"empty log", 48, 48, 1024, true, 976},
		{"plain region", 48, 148, 1024, false, 876},
		{"mid-file region", 200, 500, 1024, false, 524 + 152},
		{"wrapped region", 500, 200, 1024, false, 300},
		{"completely full", 200, 200, 1024, false, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, freeSpace(c.start, c.end, c.size, c.empty), c.name)
	}
}

func TestBlockCost(t *testing.T) {
	// plenty of room: the block lands right at end
	cost, newEnd, wrapped := blockCost(100, 1024, 200, RecordHeaderLength)
	assert.Equal(t, int64(200), cost)
	assert.Equal(t, int64(300), newEnd)
	assert.False(t, wrapped)

	// the header fits but the payload crosses the ring end
	cost, newEnd, wrapped = blockCost(900, 1024, 200, RecordHeaderLength)
	assert.Equal(t, int64(200), cost)
	assert.Equal(t, int64(48+200-124), newEnd)
	assert.True(t, wrapped)

	// not even the header fits: the run becomes filler
	cost, newEnd, wrapped = blockCost(1000, 1024, 200, RecordHeaderLength)
	assert.Equal(t, int64(224), cost)
	assert.Equal(t, int64(248), newEnd)
	assert.True(t, wrapped)

	// an unsplittable block behaves the same with its own threshold
	cost, newEnd, wrapped = blockCost(1000, 1024, EOFLength, EOFLength)
	assert.Equal(t, int64(EOFLength+24), cost)
	assert.Equal(t, int64(48+EOFLength), newEnd)
	assert.True(t, wrapped)

	// block ending exactly at the file end
	cost, newEnd, wrapped = blockCost(824, 1024, 200, RecordHeaderLength)
	assert.Equal(t, int64(200), cost)
	assert.Equal(t, int64(1024), newEnd)
	assert.False(t, wrapped)
}

func TestSimulateWrite(t *testing.T) {
	// fits exactly
	newEnd, ok := simulateWrite(48, 148, 248, 100, RecordHeaderLength, false)
	assert.True(t, ok)
	assert.Equal(t, int64(248), newEnd)

	// one byte over
	_, ok = simulateWrite(48, 148, 248, 101, RecordHeaderLength, false)
	assert.False(t, ok)

	// empty log offers the whole ring
	_, ok = simulateWrite(48, 48, 248, 200, RecordHeaderLength, true)
	assert.True(t, ok)

	// full log offers nothing
	_, ok = simulateWrite(148, 148, 4096, 64, RecordHeaderLength, false)
	assert.False(t, ok)
}

func TestAdvanceStart(t *testing.T) {
	// plain advance: plenty of room behind the record
	assert.Equal(t, int64(148), advanceStart(48, 100, 1024))

	// fewer than a record header's worth of bytes remain behind it
	assert.Equal(t, int64(48), advanceStart(900, 100, 1024))

	// the first record wraps: start resumes past its tail
	assert.Equal(t, int64(48+76), advanceStart(1000, 100, 1024))

	// the record ends exactly at the file end
	assert.Equal(t, int64(48), advanceStart(924, 100, 1024))
}
