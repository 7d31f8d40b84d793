package runtime

import (
	"sync"
	"time"
)

// DefaultSaveDebounce is the delay between an edit and the snapshot flush.
// Rapid edits re-arm the timer so they collapse into a single write.
const DefaultSaveDebounce = 250 * time.Millisecond

// Saver is the deferred-save abstraction: a cancelable timer around a flush
// function. Each Schedule supersedes any pending flush (last-write-wins);
// Flush forces a synchronous write, used on shutdown and at session start.
type Saver struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	flush func()
}

// NewSaver creates a Saver with the given debounce delay and flush action.
func NewSaver(delay time.Duration, flush func()) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDebounce
	}
	return &Saver{delay: delay, flush: flush}
}

// Schedule arms (or re-arms) the flush timer.
func (s *Saver) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		s.flush()
	})
}

// Flush cancels any pending timer and writes immediately.
func (s *Saver) Flush() {
	s.Stop()
	s.flush()
}

// Stop cancels any pending flush without writing.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Pending reports whether a flush is currently scheduled.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
