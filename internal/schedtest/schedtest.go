// Package schedtest provides a scheduler whose time only moves when a test advances it
package schedtest

import (
	"sort"
	"time"
)

type timer struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

// Manual runs callbacks synchronously from Advance
// It is not safe for concurrent use
type Manual struct {
	now    time.Duration
	seq    int
	timers []*timer
}

// New returns a manual scheduler at time zero
func New() *Manual {
	return &Manual{}
}

// AfterFunc schedules fn to run d after the current time
func (m *Manual) AfterFunc(d time.Duration, fn func()) func() {
	m.seq++
	t := &timer{at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)

	return func() {
		t.canceled = true
	}
}

// Advance moves time forward by d and runs every callback that became due, in time order
// Callbacks scheduled by a callback run in the same call if they fall due before the new time
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d
	for {
		t := m.next(end)
		if t == nil {
			break
		}

		m.now = t.at
		t.fn()
	}

	m.now = end
}

// Pending returns the number of callbacks that have neither run nor been canceled
func (m *Manual) Pending() int {
	count := 0
	for _, t := range m.timers {
		if !t.canceled {
			count++
		}
	}

	return count
}

// Now returns the elapsed scheduler time
func (m *Manual) Now() time.Duration {
	return m.now
}

func (m *Manual) next(end time.Duration) *timer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.timers = live

	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].at == m.timers[j].at {
			return m.timers[i].seq < m.timers[j].seq
		}

		return m.timers[i].at < m.timers[j].at
	})

	if len(m.timers) == 0 || m.timers[0].at > end {
		return nil
	}

	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}
