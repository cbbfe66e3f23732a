package round

import (
	"lucky-server/pkg/loopback"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/protocol"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoordinator_solo(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)
	c := alice.coordinator
	local := alice.session.Local()

	a.Equal(PhaseAwaitingCommits, c.Phase())
	a.True(c.WagerEntryEnabled())
	a.Equal(NeutralDisplay, c.Display())
	a.Equal(0, c.Round())

	var phases []Phase
	c.OnPhaseChanged(func(p Phase) { phases = append(phases, p) })
	var settlements []participant.Settlement
	c.OnSettled(func(s participant.Settlement) { settlements = append(settlements, s) })
	var revealed []outcome.Outcome
	c.OnOutcomeRevealed(func(o outcome.Outcome) { revealed = append(revealed, o) })

	local.ProposeWager(40)
	local.ProposeSelection(outcome.Red)
	a.Equal(PhaseAwaitingCommits, c.Phase())

	local.ProposeCommit(true)
	a.Equal(PhaseDrawing, c.Phase())
	a.Equal(1, c.Round())
	a.False(local.Committed(), "commit is cleared when the round starts")
	a.False(c.WagerEntryEnabled())
	a.Equal(NeutralDisplay, c.Display())
	a.Equal(1, sched.Pending())

	sched.Advance(999 * time.Millisecond)
	a.Equal(PhaseDrawing, c.Phase())

	sched.Advance(time.Millisecond)
	a.Equal(PhaseRevealing, c.Phase())
	a.Equal(Display{Color: "#ff0000", Decided: true, Outcome: outcome.Red}, c.Display())
	a.Equal([]outcome.Outcome{outcome.Red}, revealed)
	a.Equal(100, local.Balance(), "balance is not touched before the reveal pause")

	sched.Advance(2 * time.Second)
	a.Equal(PhaseAwaitingCommits, c.Phase())
	a.True(c.WagerEntryEnabled())
	a.Equal(140, local.Balance())
	a.Equal(0, local.WagerAmount())
	a.Equal(outcome.Red, c.LastOutcome())
	a.Equal(0, sched.Pending())

	a.Equal([]Phase{PhaseDrawing, PhaseRevealing, PhaseSettling, PhaseAwaitingCommits}, phases)
	if a.Len(settlements, 1) {
		a.True(settlements[0].Won)
		a.Equal(140, settlements[0].Balance)
	}
}

func TestCoordinator_twoPeers(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)
	bob := sit(t, hub, "Bob", sched, 1)

	a.True(alice.session.IsAuthority())
	a.False(bob.session.IsAuthority())

	alice.session.Local().ProposeWager(40)
	alice.session.Local().ProposeCommit(true)
	a.True(bob.session.Remote().Committed())
	a.Equal(40, bob.session.Remote().WagerAmount())
	a.Equal(PhaseAwaitingCommits, alice.coordinator.Phase())
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())

	bob.session.Local().ProposeCommit(true)
	for _, s := range []*seat{alice, bob} {
		a.Equal(PhaseDrawing, s.coordinator.Phase())
		a.Equal(1, s.coordinator.Round())
		a.False(s.session.Local().Committed())
		a.False(s.session.Remote().Committed())
	}

	// alice draws first, bob holds the outcome until his own pause elapses
	sched.Advance(time.Second)
	for _, s := range []*seat{alice, bob} {
		a.Equal(PhaseRevealing, s.coordinator.Phase())
		a.Equal(outcome.Red, s.coordinator.Display().Outcome)
	}

	sched.Advance(2 * time.Second)
	a.Equal(140, alice.session.Local().Balance())
	a.Equal(140, bob.session.Remote().Balance())
	a.Equal(100, bob.session.Local().Balance())
	a.Equal(100, alice.session.Remote().Balance())
	a.Equal(0, bob.session.Remote().WagerAmount())

	for _, s := range []*seat{alice, bob} {
		a.Equal(PhaseAwaitingCommits, s.coordinator.Phase())
		a.Equal(1, s.coordinator.Round())
		a.True(s.coordinator.WagerEntryEnabled())
	}
}

func TestCoordinator_outcomeAfterPause(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	aliceSched, bobSched := newScheduler(), newScheduler()
	alice := sit(t, hub, "Alice", aliceSched, 1)
	bob := sit(t, hub, "Bob", bobSched, 0)

	alice.session.Local().ProposeCommit(true)
	bob.session.Local().ProposeCommit(true)

	bobSched.Advance(time.Second)
	a.Equal(PhaseDrawing, bob.coordinator.Phase(), "bob is waiting for the authority")
	a.Equal(NeutralDisplay, bob.coordinator.Display())

	aliceSched.Advance(time.Second)
	a.Equal(PhaseRevealing, bob.coordinator.Phase())
	a.Equal(outcome.Green, bob.coordinator.Display().Outcome)
	a.Equal(PhaseRevealing, alice.coordinator.Phase())
}

func TestCoordinator_gateOnlyOpensOnce(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)
	bob := sit(t, hub, "Bob", sched, 0)

	alice.session.Local().ProposeCommit(true)
	bob.session.Local().ProposeCommit(true)
	a.Equal(1, alice.coordinator.Round())

	// commit changes during a round do not start another one
	bob.session.Local().ProposeCommit(true)
	a.Equal(1, alice.coordinator.Round())
	a.Equal(1, bob.coordinator.Round())
	a.Equal(2, sched.Pending())

	sched.Advance(3 * time.Second)
	a.Equal(PhaseAwaitingCommits, alice.coordinator.Phase())
	a.Equal(1, alice.coordinator.Round())
	a.True(bob.session.Local().Committed())

	// bob's early commit carries into the next round
	alice.session.Local().ProposeCommit(true)
	a.Equal(2, alice.coordinator.Round())
	a.Equal(2, bob.coordinator.Round())
}

func TestCoordinator_remoteLeavingOpensGate(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)
	bob := sit(t, hub, "Bob", sched, 0)

	bob.session.Local().ProposeCommit(true)
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())

	a.NoError(alice.endpoint.Close())
	a.Nil(bob.session.Remote())
	a.True(bob.session.IsAuthority(), "authority passes to the remaining peer")
	a.Equal(PhaseDrawing, bob.coordinator.Phase())

	sched.Advance(3 * time.Second)
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())
	a.Equal(outcome.Red, bob.coordinator.LastOutcome())
}

func TestCoordinator_discardsOutcomeItDidNotDraw(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)

	stale := protocol.OutcomePicked(outcome.Green)
	stale.From = "someone"
	alice.session.HandleMessage(stale)

	alice.session.Local().ProposeCommit(true)
	sched.Advance(time.Second)
	a.Equal(outcome.Red, alice.coordinator.Display().Outcome)
}

func TestCoordinator_holdsEarlyOutcome(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	aliceSched, bobSched := newScheduler(), newScheduler()
	alice := sit(t, hub, "Alice", aliceSched, 0)
	bob := sit(t, hub, "Bob", bobSched, 0)

	alice.session.Local().ProposeCommit(true)
	bob.session.Local().ProposeCommit(true)

	aliceSched.Advance(time.Second)
	a.Equal(PhaseRevealing, alice.coordinator.Phase())
	a.Equal(PhaseDrawing, bob.coordinator.Phase(), "the neutral pause is always observed")

	bobSched.Advance(time.Second)
	a.Equal(PhaseRevealing, bob.coordinator.Phase())
	a.Equal(outcome.Red, bob.coordinator.LastOutcome())
}

func TestCoordinator_Cancel(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)
	local := alice.session.Local()

	local.ProposeWager(40)
	local.ProposeCommit(true)
	a.Equal(PhaseDrawing, alice.coordinator.Phase())

	alice.coordinator.Cancel()
	a.Equal(PhaseIdle, alice.coordinator.Phase())
	a.False(alice.coordinator.WagerEntryEnabled())
	a.Equal(0, sched.Pending())

	sched.Advance(time.Minute)
	a.Equal(100, local.Balance(), "a canceled round is not settled")

	alice.coordinator.Activate()
	a.Equal(PhaseAwaitingCommits, alice.coordinator.Phase())
	a.True(alice.coordinator.WagerEntryEnabled())
}

func TestCoordinator_Close(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 0)

	alice.coordinator.Close()
	alice.session.Local().ProposeCommit(true)
	a.Equal(PhaseIdle, alice.coordinator.Phase())
	a.Equal(0, sched.Pending())
}

func TestCoordinator_bankruptcy(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := newScheduler()
	alice := sit(t, hub, "Alice", sched, 1)
	local := alice.session.Local()

	local.ProposeWager(100)
	local.ProposeSelection(outcome.Red)
	local.ProposeCommit(true)
	sched.Advance(3 * time.Second)

	a.Equal(outcome.Green, alice.coordinator.LastOutcome())
	a.Equal(100, local.Balance(), "a bankrupt participant is reset to the starting balance")
	a.Equal(0, local.WagerAmount())
}

func TestCoordinator_dropsOutcomeOfRoundItDidNotJoin(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	aliceSched, bobSched := newScheduler(), newScheduler()
	alice := sit(t, hub, "Alice", aliceSched, 0)
	alice.session.Local().ProposeCommit(true)
	a.Equal(PhaseDrawing, alice.coordinator.Phase())

	bob := sit(t, hub, "Bob", bobSched, 1)
	bob.session.Local().ProposeCommit(true)
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())

	aliceSched.Advance(time.Second)
	a.Equal(PhaseRevealing, alice.coordinator.Phase())
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())
	a.Nil(bob.coordinator.held)
}

func TestCoordinator_survivorDrawsAfterAuthorityLeaves(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	aliceSched, bobSched := newScheduler(), newScheduler()
	alice := sit(t, hub, "Alice", aliceSched, 0)
	bob := sit(t, hub, "Bob", bobSched, 1)

	alice.session.Local().ProposeCommit(true)
	bob.session.Local().ProposeCommit(true)

	bobSched.Advance(time.Second)
	a.Equal(PhaseDrawing, bob.coordinator.Phase(), "bob is waiting for the authority")

	alice.coordinator.Cancel()
	a.NoError(alice.endpoint.Close())
	a.True(bob.session.IsAuthority())
	a.Equal(PhaseRevealing, bob.coordinator.Phase())
	a.Equal(outcome.Green, bob.coordinator.LastOutcome())

	bobSched.Advance(2 * time.Second)
	a.Equal(PhaseAwaitingCommits, bob.coordinator.Phase())
}
