package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCompleteLines(t *testing.T) {
	a := NewAssembler()

	units := a.Feed([]byte("one\ntwo\nthree"))
	require.Len(t, units, 2)
	assert.Equal(t, "one\n", string(units[0].Data))
	assert.Equal(t, "two\n", string(units[1].Data))
	assert.False(t, units[0].Partial)
	assert.True(t, a.Pending())

	units = a.Feed([]byte("\n"))
	require.Len(t, units, 1)
	assert.Equal(t, "three\n", string(units[0].Data))
	assert.False(t, a.Pending())
}

func TestFeedKeepsCRLFIntact(t *testing.T) {
	a := NewAssembler()
	units := a.Feed([]byte("prompt> ok\r\n"))
	require.Len(t, units, 1)
	assert.Equal(t, "prompt> ok\r\n", string(units[0].Data))
}

func TestFlushPartialLine(t *testing.T) {
	a := NewAssembler()
	a.Feed([]byte("Password: "))

	unit, ok := a.Flush(false)
	require.True(t, ok)
	assert.True(t, unit.Partial)
	assert.Equal(t, "Password: ", string(unit.Data))
	assert.False(t, a.Pending())

	_, ok = a.Flush(false)
	assert.False(t, ok)
}

func TestFlushWithholdsIncompleteRune(t *testing.T) {
	a := NewAssembler()
	// "你" is E4 BD A0; feed only the first two bytes after some ASCII.
	a.Feed([]byte{'o', 'k', 0xE4, 0xBD})

	unit, ok := a.Flush(false)
	require.True(t, ok)
	assert.Equal(t, "ok", string(unit.Data))
	assert.True(t, a.Pending())

	// The rest of the codepoint arrives and completes the line.
	units := a.Feed([]byte{0xA0, '\n'})
	require.Len(t, units, 1)
	assert.Equal(t, "你\n", string(units[0].Data))
}

func TestFlushOnlyIncompleteRuneWaits(t *testing.T) {
	a := NewAssembler()
	a.Feed([]byte{0xE4, 0xBD})

	_, ok := a.Flush(false)
	assert.False(t, ok)
	assert.True(t, a.Pending())

	// The final drain is forced and emits the bytes as-is.
	unit, ok := a.Flush(true)
	require.True(t, ok)
	assert.Equal(t, []byte{0xE4, 0xBD}, unit.Data)
	assert.False(t, a.Pending())
}

func TestFlushEmitsInvalidBytes(t *testing.T) {
	a := NewAssembler()
	// 0xFF can never start a valid sequence; don't hold it hostage.
	a.Feed([]byte{'x', 0xFF})

	unit, ok := a.Flush(false)
	require.True(t, ok)
	assert.Equal(t, []byte{'x', 0xFF}, unit.Data)
}

// Feeding a stream split at arbitrary chunk boundaries must produce the same
// complete lines as feeding it whole.
func TestChunkBoundaryIndependence(t *testing.T) {
	input := []byte("alpha\nbeta 你好 gamma\ndelta\nlast partial")

	whole := NewAssembler()
	var wholeUnits []Unit
	wholeUnits = append(wholeUnits, whole.Feed(input)...)
	if u, ok := whole.Flush(true); ok {
		wholeUnits = append(wholeUnits, u)
	}

	for chunkSize := 1; chunkSize <= len(input); chunkSize++ {
		split := NewAssembler()
		var splitUnits []Unit
		for start := 0; start < len(input); start += chunkSize {
			end := start + chunkSize
			if end > len(input) {
				end = len(input)
			}
			splitUnits = append(splitUnits, split.Feed(input[start:end])...)
		}
		if u, ok := split.Flush(true); ok {
			splitUnits = append(splitUnits, u)
		}

		require.Equal(t, len(wholeUnits), len(splitUnits), "chunk size %d", chunkSize)
		for i := range wholeUnits {
			assert.Equal(t, string(wholeUnits[i].Data), string(splitUnits[i].Data),
				"chunk size %d unit %d", chunkSize, i)
		}
	}
}

func TestFeedEmptyChunk(t *testing.T) {
	a := NewAssembler()
	assert.Empty(t, a.Feed(nil))
	assert.False(t, a.Pending())
}
