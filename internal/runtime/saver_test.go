package runtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaver_DebounceCollapsesBursts(t *testing.T) {
	var flushes atomic.Int32
	saver := NewSaver(30*time.Millisecond, func() { flushes.Add(1) })

	for range 5 {
		saver.Schedule()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, saver.Pending())

	assert.Eventually(t, func() bool {
		return flushes.Load() == 1 && !saver.Pending()
	}, time.Second, 5*time.Millisecond)

	// No stray second flush.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), flushes.Load())
}

func TestSaver_FlushWritesImmediately(t *testing.T) {
	var flushes atomic.Int32
	saver := NewSaver(time.Hour, func() { flushes.Add(1) })

	saver.Schedule()
	saver.Flush()

	assert.Equal(t, int32(1), flushes.Load())
	assert.False(t, saver.Pending())
}

func TestSaver_StopCancelsWithoutWriting(t *testing.T) {
	var flushes atomic.Int32
	saver := NewSaver(20*time.Millisecond, func() { flushes.Add(1) })

	saver.Schedule()
	saver.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, flushes.Load())
	assert.False(t, saver.Pending())
}
