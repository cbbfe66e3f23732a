// Package game assembles everything a single process needs to take part in a room
package game

import (
	"lucky-server/internal/config"
	"lucky-server/internal/rng"
	"lucky-server/pkg/chips"
	"lucky-server/pkg/observer"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/protocol"
	"lucky-server/pkg/round"
	"lucky-server/pkg/session"

	"github.com/sirupsen/logrus"
)

// Random draws outcomes and picks the chip colors
type Random interface {
	rng.Generator
	chips.Random
}

// Game is the composition root of a peer
// Every method must be called from the peer's run loop
type Game struct {
	options     config.Game
	session     *session.Session
	selector    *round.Selector
	coordinator *round.Coordinator
	chips       map[session.Slot]*chips.Allocator
	subs        observer.Group
	logger      logrus.FieldLogger
}

// New returns a game that is waiting for its welcome
// Pass every delivered message to Handle
func New(options config.Game, transport participant.Transport, scheduler round.Scheduler, random Random, logger logrus.FieldLogger) *Game {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := session.New(options.StartingBalance, transport, logger)
	selector := round.NewSelector(s, transport, random, logger)
	coordinator := round.NewCoordinator(s, selector, scheduler, round.Options{
		NeutralPause: options.NeutralPause,
		RevealPause:  options.RevealPause,
	}, logger)

	chipOptions := chips.Options{
		Denomination:   options.WagerDenomination,
		PlayerCapacity: options.PerBinCapacity,
		WagerCapacity:  options.PerBinCapacity,
	}

	g := &Game{
		options:     options,
		session:     s,
		selector:    selector,
		coordinator: coordinator,
		chips: map[session.Slot]*chips.Allocator{
			session.SlotLocal:  chips.NewAllocator(chipOptions, random, logger),
			session.SlotRemote: chips.NewAllocator(chipOptions, random, logger),
		},
		logger: logger,
	}

	g.subs.Add(s.OnSlotChanged(func(change session.SlotChange) {
		g.chips[change.Slot].SetTarget(change.New)
	}))

	return g
}

// Handle applies a message delivered by the transport
func (g *Game) Handle(msg *protocol.Message) {
	g.session.HandleMessage(msg)
}

// Options returns the game options
func (g *Game) Options() config.Game {
	return g.options
}

// Session returns the session
func (g *Game) Session() *session.Session {
	return g.session
}

// Coordinator returns the round coordinator
func (g *Game) Coordinator() *round.Coordinator {
	return g.coordinator
}

// Local returns the participant owned by this process, or nil
func (g *Game) Local() *participant.Participant {
	return g.session.Local()
}

// Remote returns the opponent, or nil
func (g *Game) Remote() *participant.Participant {
	return g.session.Remote()
}

// Chips returns the allocator that follows the participant in slot
func (g *Game) Chips(slot session.Slot) *chips.Allocator {
	return g.chips[slot]
}

// ModifyWager adds delta to the local wager
// It returns false while wagers cannot be changed
func (g *Game) ModifyWager(delta int) bool {
	local := g.Local()
	if local == nil || !g.coordinator.WagerEntryEnabled() {
		return false
	}

	local.ProposeWager(local.WagerAmount() + delta)
	return true
}

// SetWager replaces the local wager
func (g *Game) SetWager(amount int) bool {
	local := g.Local()
	if local == nil || !g.coordinator.WagerEntryEnabled() {
		return false
	}

	local.ProposeWager(amount)
	return true
}

// Select changes the outcome the local wager is on
func (g *Game) Select(o outcome.Outcome) bool {
	local := g.Local()
	if local == nil || !g.coordinator.WagerEntryEnabled() || !o.Valid() {
		return false
	}

	local.ProposeSelection(o)
	return true
}

// LockIn commits the local wager for the next round
func (g *Game) LockIn() bool {
	local := g.Local()
	if local == nil || !g.coordinator.WagerEntryEnabled() {
		return false
	}

	local.ProposeCommit(true)
	return true
}

// Unlock withdraws the local commit if the round has not started yet
func (g *Game) Unlock() bool {
	local := g.Local()
	if local == nil || g.coordinator.Phase() != round.PhaseAwaitingCommits {
		return false
	}

	local.ProposeCommit(false)
	return true
}

// Leave abandons any round in progress and forgets both participants
// The caller still has to close the transport
func (g *Game) Leave() {
	g.coordinator.Cancel()
	g.session.Clear()
}

// Close leaves and releases every subscription
func (g *Game) Close() {
	g.Leave()
	g.coordinator.Close()
	g.subs.Release()
}
