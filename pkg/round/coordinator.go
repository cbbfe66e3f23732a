package round

import (
	"lucky-server/pkg/observer"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/session"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase is the coordinator's position in a round
type Phase string

// Phase constants
const (
	// PhaseIdle is before the wager interface is active, and after leaving
	PhaseIdle Phase = "idle"

	// PhaseAwaitingCommits means wagers may be changed until every participant commits
	PhaseAwaitingCommits Phase = "awaiting-commits"

	// PhaseDrawing covers the neutral pause and the wait for the outcome broadcast
	PhaseDrawing Phase = "drawing"

	// PhaseRevealing means the outcome is displayed and the reveal pause is running
	PhaseRevealing Phase = "revealing"

	// PhaseSettling means the local participant is settling its wager
	PhaseSettling Phase = "settling"
)

// Scheduler runs fn once after d on the caller's run loop
// The returned function cancels fn if it has not run yet
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Options are the round timings
type Options struct {
	NeutralPause time.Duration
	RevealPause  time.Duration
}

// Display is the state of the betting object
type Display struct {
	Color   string
	Decided bool
	Outcome outcome.Outcome
}

// NeutralDisplay is shown while the outcome is undecided
var NeutralDisplay = Display{Color: outcome.NeutralColor}

// Coordinator sequences a round for this process
// Every method must be called from the process's run loop
type Coordinator struct {
	session   *session.Session
	selector  *Selector
	scheduler Scheduler
	options   Options
	logger    logrus.FieldLogger

	phase      Phase
	round      int
	display    Display
	wagerEntry bool

	// waiting is true once the neutral pause elapsed and the outcome has not been revealed
	waiting bool
	// drew is true once this process broadcast the outcome of the current round
	drew bool
	// held is an outcome applied before this process was ready to reveal it
	held      *outcome.Outcome
	revealed  outcome.Outcome
	cancelFn  func()
	sessSubs  observer.Group
	localSub  *observer.Subscription
	remoteSub *observer.Subscription

	phaseChanged      observer.Subject[Phase]
	displayChanged    observer.Subject[Display]
	outcomeRevealed   observer.Subject[outcome.Outcome]
	wagerEntryChanged observer.Subject[bool]
	settled           observer.Subject[participant.Settlement]
}

// NewCoordinator returns a coordinator in the idle phase
// It follows the session's participants and becomes active when a local participant appears
func NewCoordinator(s *session.Session, selector *Selector, scheduler Scheduler, options Options, logger logrus.FieldLogger) *Coordinator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Coordinator{
		session:   s,
		selector:  selector,
		scheduler: scheduler,
		options:   options,
		logger:    logger,
		phase:     PhaseIdle,
		display:   NeutralDisplay,
	}

	c.sessSubs.Add(
		s.OnSlotChanged(c.handleSlotChanged),
		s.OnOutcomeApplied(c.handleOutcomeApplied),
	)

	c.followLocal(s.Local())
	c.followRemote(s.Remote())
	if s.Local() != nil {
		c.Activate()
	}

	return c
}

// Phase returns the current phase
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// Round returns the number of rounds started
func (c *Coordinator) Round() int {
	return c.round
}

// Display returns the current state of the betting object
func (c *Coordinator) Display() Display {
	return c.display
}

// WagerEntryEnabled returns true if the local participant may change its wager
func (c *Coordinator) WagerEntryEnabled() bool {
	return c.wagerEntry
}

// LastOutcome returns the most recently revealed outcome
func (c *Coordinator) LastOutcome() outcome.Outcome {
	return c.revealed
}

// OnPhaseChanged registers fn for phase transitions
func (c *Coordinator) OnPhaseChanged(fn func(Phase)) *observer.Subscription {
	return c.phaseChanged.Subscribe(fn)
}

// OnDisplayChanged registers fn for betting object changes
func (c *Coordinator) OnDisplayChanged(fn func(Display)) *observer.Subscription {
	return c.displayChanged.Subscribe(fn)
}

// OnOutcomeRevealed registers fn for every revealed outcome
func (c *Coordinator) OnOutcomeRevealed(fn func(outcome.Outcome)) *observer.Subscription {
	return c.outcomeRevealed.Subscribe(fn)
}

// OnWagerEntryChanged registers fn for the wager interface being enabled or disabled
func (c *Coordinator) OnWagerEntryChanged(fn func(bool)) *observer.Subscription {
	return c.wagerEntryChanged.Subscribe(fn)
}

// OnSettled registers fn for the local participant's settlement
func (c *Coordinator) OnSettled(fn func(participant.Settlement)) *observer.Subscription {
	return c.settled.Subscribe(fn)
}

// Activate moves from idle to awaiting commits
func (c *Coordinator) Activate() {
	if c.phase != PhaseIdle {
		return
	}

	c.setPhase(PhaseAwaitingCommits)
	local := c.session.Local()
	c.setWagerEntry(local != nil && !local.Committed())
	c.evaluateGate()
}

// Cancel stops any pending pause and returns to idle
// A round in progress is abandoned without settling
func (c *Coordinator) Cancel() {
	c.stopTimer()
	c.waiting = false
	c.drew = false
	c.held = nil
	c.setWagerEntry(false)
	c.setPhase(PhaseIdle)
}

// Close cancels the coordinator and releases every subscription
func (c *Coordinator) Close() {
	c.Cancel()
	c.sessSubs.Release()
	c.localSub.Release()
	c.remoteSub.Release()
	c.localSub, c.remoteSub = nil, nil
}

func (c *Coordinator) handleSlotChanged(change session.SlotChange) {
	switch change.Slot {
	case session.SlotLocal:
		// anything held belonged to the previous seat
		c.held = nil
		c.followLocal(change.New)
		if change.New != nil {
			c.Activate()
		}
	case session.SlotRemote:
		c.followRemote(change.New)
		if change.New == nil {
			c.drawForDepartedAuthority()
			// an absent participant is vacuously committed
			c.evaluateGate()
		}
	}
}

func (c *Coordinator) followLocal(p *participant.Participant) {
	c.localSub.Release()
	c.localSub = c.followCommits(p)
}

func (c *Coordinator) followRemote(p *participant.Participant) {
	c.remoteSub.Release()
	c.remoteSub = c.followCommits(p)
}

func (c *Coordinator) followCommits(p *participant.Participant) *observer.Subscription {
	if p == nil {
		return nil
	}

	return p.Subscribe(func(change participant.Change) {
		if change.Kind != participant.ChangeCommitted {
			return
		}

		// a committed wager is locked until the round settles
		if p == c.session.Local() && c.phase == PhaseAwaitingCommits {
			c.setWagerEntry(!change.Committed)
		}

		c.evaluateGate()
	})
}

func (c *Coordinator) evaluateGate() {
	if c.phase != PhaseAwaitingCommits {
		return
	}

	local := c.session.Local()
	if local == nil {
		return
	}

	if !AllCommitted(local, c.session.Remote()) {
		return
	}

	c.startRound()
}

// AwaitingCommits -> Drawing
func (c *Coordinator) startRound() {
	c.round++
	c.logger = c.logger.WithField("round", c.round)
	c.logger.Debug("all participants committed")

	c.setWagerEntry(false)
	c.setDisplay(NeutralDisplay)
	c.setPhase(PhaseDrawing)
	c.waiting = false
	c.drew = false

	// re-arm the gate for the next round
	c.session.Local().ProposeCommit(false)

	c.cancelFn = c.scheduler.AfterFunc(c.options.NeutralPause, c.neutralPauseElapsed)
}

func (c *Coordinator) neutralPauseElapsed() {
	c.cancelFn = nil
	if c.phase != PhaseDrawing {
		return
	}

	if c.held != nil && c.session.IsAuthority() {
		c.logger.WithField("outcome", c.held.String()).Warn("discarding an outcome this authority did not draw")
		c.held = nil
	}

	c.waiting = true
	_, c.drew = c.selector.PickAndBroadcast()

	// the outcome may already be here, possibly from our own broadcast
	if c.phase == PhaseDrawing && c.held != nil {
		o := *c.held
		c.reveal(o)
	}
}

func (c *Coordinator) handleOutcomeApplied(o outcome.Outcome) {
	if c.phase == PhaseDrawing && c.waiting {
		c.reveal(o)
		return
	}

	// commits are routed ahead of the outcome they trigger, so an outcome meant
	// for this process never arrives before its own gate opened
	if c.phase != PhaseDrawing {
		c.logger.WithField("outcome", o.String()).WithField("phase", c.phase).Warn("dropping outcome outside of a draw")
		return
	}

	if c.held != nil {
		c.logger.WithField("outcome", o.String()).Warn("replacing an outcome that was never revealed")
	}

	c.logger.WithField("outcome", o.String()).WithField("phase", c.phase).Debug("holding outcome")
	c.held = &o
}

// the authority left after our neutral pause without broadcasting, and this process took over
func (c *Coordinator) drawForDepartedAuthority() {
	if c.phase != PhaseDrawing || !c.waiting || c.drew || !c.session.IsAuthority() {
		return
	}

	c.logger.Debug("drawing for the departed authority")
	_, c.drew = c.selector.PickAndBroadcast()
}

// Drawing -> Revealing
func (c *Coordinator) reveal(o outcome.Outcome) {
	c.held = nil
	c.waiting = false
	c.revealed = o

	c.setDisplay(Display{Color: o.Color(), Decided: true, Outcome: o})
	c.setPhase(PhaseRevealing)
	c.outcomeRevealed.Publish(o)

	c.cancelFn = c.scheduler.AfterFunc(c.options.RevealPause, c.revealPauseElapsed)
}

// Revealing -> Settling -> AwaitingCommits
func (c *Coordinator) revealPauseElapsed() {
	c.cancelFn = nil
	if c.phase != PhaseRevealing {
		return
	}

	c.setPhase(PhaseSettling)
	if local := c.session.Local(); local != nil {
		if s, ok := local.Settle(c.revealed); ok {
			c.settled.Publish(s)
		}
	}

	c.setPhase(PhaseAwaitingCommits)
	local := c.session.Local()
	c.setWagerEntry(local != nil && !local.Committed())
	c.evaluateGate()
}

func (c *Coordinator) stopTimer() {
	if c.cancelFn != nil {
		c.cancelFn()
		c.cancelFn = nil
	}
}

func (c *Coordinator) setPhase(p Phase) {
	if c.phase == p {
		return
	}

	c.logger.WithField("from", c.phase).WithField("to", p).Trace("phase changed")
	c.phase = p
	c.phaseChanged.Publish(p)
}

func (c *Coordinator) setDisplay(d Display) {
	c.display = d
	c.displayChanged.Publish(d)
}

func (c *Coordinator) setWagerEntry(enabled bool) {
	if c.wagerEntry == enabled {
		return
	}

	c.wagerEntry = enabled
	c.wagerEntryChanged.Publish(enabled)
}
