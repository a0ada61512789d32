package focus

import (
	"sync"
	"time"
)

// IntervalScheduler fires the tick callback on a fixed period from its own
// goroutine. Callers that mutate shared state from the tick (the WASM views
// do) must marshal the callback onto their event loop before handing it to
// Start.
type IntervalScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	return &IntervalScheduler{interval: interval}
}

func (s *IntervalScheduler) Start(tick func()) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				tick()
			}
		}
	}()
}

func (s *IntervalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.running = false
}

func (s *IntervalScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
