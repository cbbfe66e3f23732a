// Package chips distributes a fixed pool of visual units between a participant's bins
// The player bin shows the balance not at stake and one wager bin per outcome shows the wager.
// Units are created once and only ever move, so they can keep their colors for the whole game
package chips

import (
	"lucky-server/pkg/observer"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"strings"

	"github.com/sirupsen/logrus"
)

// BinID identifies a bin
type BinID string

// PlayerBin holds the units for the balance that is not wagered
const PlayerBin BinID = "player"

// WagerBin returns the ID of the bin holding a wager on o
func WagerBin(o outcome.Outcome) BinID {
	return BinID("wager-" + strings.ToLower(o.String()))
}

// Options control the pool
type Options struct {
	// Denomination is the balance a single unit stands for
	Denomination int

	// PlayerCapacity is the number of visible positions in the player bin
	PlayerCapacity int

	// WagerCapacity is the number of visible positions in each wager bin
	WagerCapacity int
}

// Allocator moves units between the pool and the bins of a single participant
// It is not safe for concurrent use
type Allocator struct {
	options Options
	logger  logrus.FieldLogger

	pool  *Bin
	size  int
	bins  map[BinID]*Bin
	order []BinID

	target  *participant.Participant
	sub     *observer.Subscription
	changed observer.Subject[*Allocator]
}

// NewAllocator creates every unit up front
// The pool holds enough units to fill the player bin and the largest wager bin
func NewAllocator(options Options, random Random, logger logrus.FieldLogger) *Allocator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if options.Denomination <= 0 {
		options.Denomination = 1
	}

	a := &Allocator{
		options: options,
		logger:  logger,
		bins:    make(map[BinID]*Bin),
	}

	// rebalancing returns wager units before player units
	for _, o := range outcome.All() {
		id := WagerBin(o)
		a.bins[id] = NewBin(string(id), options.WagerCapacity)
		a.order = append(a.order, id)
	}

	a.bins[PlayerBin] = NewBin(string(PlayerBin), options.PlayerCapacity)
	a.order = append(a.order, PlayerBin)

	a.size = a.bins[PlayerBin].Capacity()
	largest := 0
	for _, o := range outcome.All() {
		if c := a.bins[WagerBin(o)].Capacity(); c > largest {
			largest = c
		}
	}
	a.size += largest

	a.pool = NewBin("pool", a.size)
	for _, u := range newUnits(a.size, random) {
		a.pool.Push(u)
	}

	return a
}

// Size returns the number of units that exist
func (a *Allocator) Size() int {
	return a.size
}

// Pooled returns the number of units in the pool
func (a *Allocator) Pooled() int {
	return a.pool.Count()
}

// Total returns the number of units in the pool and every bin
// It is always equal to Size
func (a *Allocator) Total() int {
	total := a.pool.Count()
	for _, b := range a.bins {
		total += b.Count()
	}

	return total
}

// Bin returns the bin with the given ID, or nil
func (a *Allocator) Bin(id BinID) *Bin {
	return a.bins[id]
}

// Target returns the participant being tracked, or nil
func (a *Allocator) Target() *participant.Participant {
	return a.target
}

// OnChanged registers fn for every change in the bins
func (a *Allocator) OnChanged(fn func(*Allocator)) *observer.Subscription {
	return a.changed.Subscribe(fn)
}

// SetTarget tracks p, or nothing when p is nil
// Every unit is returned to the pool first
func (a *Allocator) SetTarget(p *participant.Participant) {
	a.sub.Release()
	a.sub = nil
	a.target = p

	a.returnAll()
	if p == nil {
		a.changed.Publish(a)
		return
	}

	a.sub = p.Subscribe(a.handleChange)
	a.rebalanceTarget()
}

// Desired returns the unit count each bin should hold for p
func (a *Allocator) Desired(p *participant.Participant) map[BinID]int {
	d := a.options.Denomination
	wager := p.WagerAmount()

	targets := make(map[BinID]int, len(a.bins))
	for _, o := range outcome.All() {
		targets[WagerBin(o)] = 0
	}

	targets[WagerBin(p.WagerSelection())] = wager / d
	targets[PlayerBin] = (p.Balance() - wager) / d
	return targets
}

// Rebalance moves units until every bin holds its target count, capped at its capacity
// Surplus units are returned before missing ones are pulled, so one bin can never starve another.
// When the pool runs out the remaining bins are left short
func (a *Allocator) Rebalance(targets map[BinID]int) {
	want := make(map[BinID]int, len(a.order))
	for _, id := range a.order {
		want[id] = clampCount(targets[id], a.bins[id].Capacity())
	}

	for _, id := range a.order {
		b := a.bins[id]
		for b.Count() > want[id] {
			u, _ := b.TryPop()
			a.pool.Push(u)
		}
	}

	for _, id := range a.order {
		b := a.bins[id]
		for b.Count() < want[id] {
			u, ok := a.pool.TryPop()
			if !ok {
				a.logger.WithField("bin", id).Debug("unit pool exhausted")
				break
			}

			b.Push(u)
		}
	}

	a.changed.Publish(a)
}

func (a *Allocator) handleChange(change participant.Change) {
	switch change.Kind {
	case participant.ChangeWagerSelection:
		a.moveWager(change.WagerSelection)
		a.rebalanceTarget()
	case participant.ChangeWagerAmount, participant.ChangeBalance:
		a.rebalanceTarget()
	}
}

// moveWager carries the wager units over to the bin for o
// The units go through the pool, which keeps their order
func (a *Allocator) moveWager(o outcome.Outcome) {
	to := a.bins[WagerBin(o)]

	count := 0
	for _, id := range a.order {
		if id == PlayerBin || id == WagerBin(o) {
			continue
		}

		from := a.bins[id]
		count += from.Count()
		for {
			u, ok := from.TryPop()
			if !ok {
				break
			}

			a.pool.Push(u)
		}
	}

	for !to.IsFull() && to.Count() < count {
		u, ok := a.pool.TryPop()
		if !ok {
			break
		}

		to.Push(u)
	}
}

func (a *Allocator) rebalanceTarget() {
	if a.target == nil {
		return
	}

	a.Rebalance(a.Desired(a.target))
}

func (a *Allocator) returnAll() {
	for _, id := range a.order {
		b := a.bins[id]
		for {
			u, ok := b.TryPop()
			if !ok {
				break
			}

			a.pool.Push(u)
		}
	}
}

func clampCount(n, capacity int) int {
	if n < 0 {
		return 0
	}

	if n > capacity {
		return capacity
	}

	return n
}
