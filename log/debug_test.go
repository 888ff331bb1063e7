package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsCounters(t *testing.T) {
	s := &SessionStats{}

	s.BytesIn.Add(10)
	s.BytesIn.Add(5)
	s.BytesOut.Add(20)
	s.UnitsTotal.Add(3)
	s.UnitsRewritten.Add(1)
	s.IdleFlushes.Add(2)

	assert.Equal(t, int64(15), s.BytesIn.Load())
	assert.Equal(t, int64(20), s.BytesOut.Load())
	assert.Equal(t, int64(3), s.UnitsTotal.Load())
	assert.Equal(t, int64(1), s.UnitsRewritten.Load())
	assert.Equal(t, int64(2), s.IdleFlushes.Load())
}

func TestDebugDisabledByDefault(t *testing.T) {
	t.Setenv("NYANTHEME_DEBUG", "")
	InitDebug()

	assert.False(t, DebugEnabled)
	assert.NotNil(t, DebugLog)

	// Must not panic with the no-op logger.
	Debug("chunk %d", 1)
}
