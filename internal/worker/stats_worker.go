package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is a single operational occurrence reported by the service layer.
type Event int

const (
	EventShortened Event = iota
	EventResolved
	EventNotFound
	EventCollision
)

// StatsWorker aggregates service events off the request path and
// periodically emits a summary log line. Submitting never blocks a
// request; events are dropped when the buffer is full.
type StatsWorker struct {
	eventChan     chan Event
	flushInterval time.Duration
	flushSize     int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	shutdownOnce  sync.Once

	mu      sync.Mutex
	dropped int64
}

type Config struct {
	BufferSize    int
	FlushSize     int
	FlushInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferSize:    1024,
		FlushSize:     256,
		FlushInterval: time.Minute,
	}
}

func NewStatsWorker(config Config) *StatsWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &StatsWorker{
		eventChan:     make(chan Event, config.BufferSize),
		flushInterval: config.FlushInterval,
		flushSize:     config.FlushSize,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (w *StatsWorker) Start() {
	log.Info().
		Int("flushSize", w.flushSize).
		Dur("flushInterval", w.flushInterval).
		Msg("Starting stats worker")

	w.wg.Add(1)
	go w.run()
}

func (w *StatsWorker) run() {
	defer w.wg.Done()

	counts := make(map[Event]int64)
	total := 0
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if total == 0 {
			return
		}

		w.mu.Lock()
		dropped := w.dropped
		w.dropped = 0
		w.mu.Unlock()

		log.Info().
			Int64("shortened", counts[EventShortened]).
			Int64("resolved", counts[EventResolved]).
			Int64("notFound", counts[EventNotFound]).
			Int64("collisions", counts[EventCollision]).
			Int64("dropped", dropped).
			Msg("Service stats")

		for k := range counts {
			delete(counts, k)
		}
		total = 0
	}

	startOrResetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.flushInterval)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.flushInterval)
		timerC = timer.C
	}

	stopTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerC = nil
	}

	for {
		select {
		case <-w.ctx.Done():
			// Drain whatever is already buffered before the final flush.
			for {
				select {
				case event := <-w.eventChan:
					counts[event]++
					total++
				default:
					flush()
					stopTimer()
					return
				}
			}

		case event := <-w.eventChan:
			wasEmpty := total == 0
			counts[event]++
			total++

			if total >= w.flushSize {
				flush()
				stopTimer()
			} else if wasEmpty {
				startOrResetTimer()
			}

		case <-timerC:
			flush()
			stopTimer()
		}
	}
}

// Submit records an event. Never blocks; returns false when the event was
// dropped because the buffer is full or the worker is shut down.
func (w *StatsWorker) Submit(event Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	default:
	}

	select {
	case w.eventChan <- event:
		return true
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		return false
	}
}

// Shutdown flushes pending events and stops the worker. Waits up to the
// given timeout for the final flush.
func (w *StatsWorker) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	w.shutdownOnce.Do(func() {
		log.Info().Msg("Shutting down stats worker")

		w.cancel()

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			shutdownErr = context.DeadlineExceeded
		}
	})

	return shutdownErr
}
