// Package peer runs a game client: a single run loop that owns all game state, and a
// websocket connection to the relay
package peer

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Loop serializes every callback onto the goroutine that calls Run
type Loop struct {
	clock  clock.Clock
	logger logrus.FieldLogger

	execInRunLoop chan func()
	done          chan struct{}
	stopOnce      sync.Once

	lock   sync.Mutex
	timers map[int]*clock.Timer
	nextID int
}

// NewLoop returns a loop that takes its time from c
func NewLoop(c clock.Clock, logger logrus.FieldLogger) *Loop {
	if c == nil {
		c = clock.New()
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Loop{
		clock:         c,
		logger:        logger,
		execInRunLoop: make(chan func(), 256),
		done:          make(chan struct{}),
		timers:        make(map[int]*clock.Timer),
	}
}

// Exec queues fn to run on the loop
// It returns false if the loop has stopped
func (l *Loop) Exec(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.execInRunLoop <- fn:
		return true
	case <-l.done:
		return false
	}
}

// AfterFunc runs fn on the loop once d has elapsed
// The returned function cancels fn. Once it returns, fn will not start
func (l *Loop) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	select {
	case <-l.done:
		return func() {}
	default:
	}

	l.lock.Lock()
	l.nextID++
	id := l.nextID
	// registered before the timer exists, so a zero duration cannot outrun it
	l.timers[id] = nil
	l.lock.Unlock()

	timer := l.clock.AfterFunc(d, func() {
		l.Exec(func() {
			if l.take(id) {
				fn()
			}
		})
	})

	l.lock.Lock()
	if _, ok := l.timers[id]; ok {
		l.timers[id] = timer
	}
	l.lock.Unlock()

	return func() {
		l.lock.Lock()
		t, ok := l.timers[id]
		delete(l.timers, id)
		l.lock.Unlock()

		if ok && t != nil {
			t.Stop()
		}
	}
}

// Pending returns the number of timers that have not fired or been canceled
func (l *Loop) Pending() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return len(l.timers)
}

// Done is closed once Run returns
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes callbacks until ctx is done
// Every pending timer is stopped on the way out
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("creating peer run loop")
	defer l.stop()

	for {
		select {
		case fn := <-l.execInRunLoop:
			fn()
		case <-ctx.Done():
			l.logger.Debug("terminating peer run loop")
			return ctx.Err()
		}
	}
}

func (l *Loop) take(id int) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.timers[id]; !ok {
		return false
	}

	delete(l.timers, id)
	return true
}

func (l *Loop) stop() {
	l.stopOnce.Do(func() {
		close(l.done)

		l.lock.Lock()
		defer l.lock.Unlock()
		for id, t := range l.timers {
			if t != nil {
				t.Stop()
			}
			delete(l.timers, id)
		}
	})
}
