package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsWorker_SubmitAndShutdown(t *testing.T) {
	w := NewStatsWorker(Config{
		BufferSize:    16,
		FlushSize:     4,
		FlushInterval: 50 * time.Millisecond,
	})
	w.Start()

	assert.True(t, w.Submit(EventShortened))
	assert.True(t, w.Submit(EventResolved))
	assert.True(t, w.Submit(EventNotFound))
	assert.True(t, w.Submit(EventCollision))

	// Let the size-triggered flush happen before shutting down.
	time.Sleep(20 * time.Millisecond)

	err := w.Shutdown(time.Second)
	require.NoError(t, err)

	assert.False(t, w.Submit(EventShortened), "Submit() after shutdown should report the event dropped")
}

func TestStatsWorker_DropsWhenFull(t *testing.T) {
	// Worker intentionally not started so the buffer stays full.
	w := NewStatsWorker(Config{
		BufferSize:    1,
		FlushSize:     100,
		FlushInterval: time.Minute,
	})

	assert.True(t, w.Submit(EventResolved))
	assert.False(t, w.Submit(EventResolved))

	w.mu.Lock()
	dropped := w.dropped
	w.mu.Unlock()
	assert.Equal(t, int64(1), dropped)
}

func TestStatsWorker_ShutdownIdempotent(t *testing.T) {
	w := NewStatsWorker(DefaultConfig())
	w.Start()

	require.NoError(t, w.Shutdown(time.Second))
	require.NoError(t, w.Shutdown(time.Second))
}

func TestStatsWorker_TimerFlush(t *testing.T) {
	w := NewStatsWorker(Config{
		BufferSize:    16,
		FlushSize:     100,
		FlushInterval: 10 * time.Millisecond,
	})
	w.Start()
	defer w.Shutdown(time.Second)

	assert.True(t, w.Submit(EventShortened))

	// Flush is timer-driven; after the interval the event must have been
	// consumed from the buffer.
	assert.Eventually(t, func() bool {
		return len(w.eventChan) == 0
	}, time.Second, 5*time.Millisecond)
}
