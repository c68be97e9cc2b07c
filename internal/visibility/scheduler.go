package visibility

import (
	"sync"
	"time"
)

// Cancel stops a scheduled callback. Safe to call more than once.
type Cancel func()

// Scheduler runs fn every period until fn returns false or the returned
// Cancel is called. fn must not be invoked before Every returns.
type Scheduler interface {
	Every(period time.Duration, fn func() bool) Cancel
}

// TimeScheduler ticks on a time.Ticker. Each call to fn is handed to post,
// which lets a UI toolkit run it on its own thread.
type TimeScheduler struct {
	post func(func())
}

// NewTimeScheduler creates a scheduler. A nil post runs fn on the ticker
// goroutine.
func NewTimeScheduler(post func(func())) *TimeScheduler {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &TimeScheduler{post: post}
}

// Every implements Scheduler. A tick is not posted until the previous one
// has run, so slow posting delays the fade instead of queueing ticks.
func (s *TimeScheduler) Every(period time.Duration, fn func() bool) Cancel {
	ticker := time.NewTicker(period)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			result := make(chan bool, 1)
			s.post(func() { result <- fn() })

			select {
			case <-stop:
				return
			case more := <-result:
				if !more {
					return
				}
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}
