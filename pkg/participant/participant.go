package participant

import (
	"lucky-server/pkg/observer"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/protocol"

	"github.com/sirupsen/logrus"
)

// Transport delivers remote calls to one peer or to every peer
// A call sent to all is echoed back to the sender
type Transport interface {
	SendToAll(msg *protocol.Message) error
	SendTo(peer string, msg *protocol.Message) error
}

// ChangeKind identifies which replicated value changed
type ChangeKind string

// ChangeKind constants
const (
	ChangeBalance        ChangeKind = "balance"
	ChangeWagerAmount    ChangeKind = "wager-amount"
	ChangeWagerSelection ChangeKind = "wager-selection"
	ChangeCommitted      ChangeKind = "committed"
)

// Change is raised every time a replicated value is applied
// It carries a copy of every value at the time of the change
type Change struct {
	Kind           ChangeKind
	Balance        int
	WagerAmount    int
	WagerSelection outcome.Outcome
	Committed      bool
}

// values is the set of replicated fields
type values struct {
	balance        int
	wagerAmount    int
	wagerSelection outcome.Outcome
	committed      bool
}

// Participant is the replicated state of one peer
// Only the owning process may propose changes. Every process, the owner included,
// changes the values only by applying propagated updates
type Participant struct {
	// ID is the owning peer's ID
	ID string
	// Name is the owning peer's display name
	Name string

	owned           bool
	startingBalance int
	transport       Transport
	logger          logrus.FieldLogger

	current values
	// sent is the last value the owner propagated for each field
	sent values

	changes observer.Subject[Change]
}

// NewLocal returns a participant owned by this process
func NewLocal(id, name string, startingBalance int, transport Transport, logger logrus.FieldLogger) *Participant {
	p := newParticipant(id, name, startingBalance, logger)
	p.owned = true
	p.transport = transport

	return p
}

// NewReplica returns a read-only mirror of a participant owned by another peer
func NewReplica(id, name string, startingBalance int, logger logrus.FieldLogger) *Participant {
	return newParticipant(id, name, startingBalance, logger)
}

func newParticipant(id, name string, startingBalance int, logger logrus.FieldLogger) *Participant {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	v := values{
		balance:        startingBalance,
		wagerSelection: outcome.Red,
	}

	return &Participant{
		ID:              id,
		Name:            name,
		startingBalance: startingBalance,
		logger:          logger.WithField("participant", id),
		current:         v,
		sent:            v,
	}
}

// IsOwned returns true if this process owns the participant
func (p *Participant) IsOwned() bool {
	return p.owned
}

// Balance returns the replicated balance
func (p *Participant) Balance() int {
	return p.current.balance
}

// WagerAmount returns the replicated wager amount
func (p *Participant) WagerAmount() int {
	return p.current.wagerAmount
}

// WagerSelection returns the replicated wager selection
func (p *Participant) WagerSelection() outcome.Outcome {
	return p.current.wagerSelection
}

// Committed returns the replicated commit flag
func (p *Participant) Committed() bool {
	return p.current.committed
}

// StartingBalance returns the balance used on creation and on bankruptcy
func (p *Participant) StartingBalance() int {
	return p.startingBalance
}

// Subscribe registers fn for every applied change
func (p *Participant) Subscribe(fn func(Change)) *observer.Subscription {
	return p.changes.Subscribe(fn)
}

// ProposeWager clamps amount to [0, balance] and propagates it if it changed
func (p *Participant) ProposeWager(amount int) {
	if !p.owned {
		return
	}

	amount = clamp(amount, 0, p.sent.balance)
	if amount == p.sent.wagerAmount {
		return
	}

	previous := p.sent.wagerAmount
	p.sent.wagerAmount = amount
	if !p.sendToAll(protocol.SetWagerAmount(amount)) {
		p.sent.wagerAmount = previous
	}
}

// ProposeSelection propagates the wager selection if it changed
func (p *Participant) ProposeSelection(o outcome.Outcome) {
	if !p.owned || !o.Valid() {
		return
	}

	if o == p.sent.wagerSelection {
		return
	}

	previous := p.sent.wagerSelection
	p.sent.wagerSelection = o
	if !p.sendToAll(protocol.SetWagerSelection(o)) {
		p.sent.wagerSelection = previous
	}
}

// ProposeCommit propagates the commit flag if it changed
func (p *Participant) ProposeCommit(committed bool) {
	if !p.owned {
		return
	}

	if committed == p.sent.committed {
		return
	}

	previous := p.sent.committed
	p.sent.committed = committed
	if !p.sendToAll(protocol.SetCommitted(committed)) {
		p.sent.committed = previous
	}
}

// ProposeBalance propagates the balance if it changed
// A balance of zero or less is replaced with the starting balance
func (p *Participant) ProposeBalance(balance int) {
	if !p.owned {
		return
	}

	if balance <= 0 {
		balance = p.startingBalance
	}

	if balance == p.sent.balance {
		return
	}

	previous := p.sent.balance
	p.sent.balance = balance
	if !p.sendToAll(protocol.SetBalance(balance)) {
		p.sent.balance = previous
	}
}

// ApplyWager assigns the wager amount and raises the change
func (p *Participant) ApplyWager(amount int) {
	p.current.wagerAmount = amount
	p.publish(ChangeWagerAmount)
}

// ApplySelection assigns the wager selection and raises the change
func (p *Participant) ApplySelection(o outcome.Outcome) {
	p.current.wagerSelection = o
	p.publish(ChangeWagerSelection)
}

// ApplyCommit assigns the commit flag and raises the change
func (p *Participant) ApplyCommit(committed bool) {
	p.current.committed = committed
	p.publish(ChangeCommitted)
}

// ApplyBalance assigns the balance and raises the change
// A balance of zero or less rolls over to the starting balance
func (p *Participant) ApplyBalance(balance int) {
	if balance <= 0 {
		balance = p.startingBalance
	}

	p.current.balance = balance
	p.publish(ChangeBalance)
}

// Apply dispatches a propagated update to the matching apply method
// It returns false if the message does not carry participant state
func (p *Participant) Apply(msg *protocol.Message) bool {
	switch msg.Method {
	case protocol.MethodSetWagerAmount:
		p.ApplyWager(msg.Amount)
	case protocol.MethodSetWagerSelection:
		p.ApplySelection(msg.Outcome)
	case protocol.MethodSetBalance:
		p.ApplyBalance(msg.Amount)
	case protocol.MethodSetCommitted:
		p.ApplyCommit(msg.Flag)
	default:
		return false
	}

	return true
}

// PushSnapshot sends every replicated value to a single peer
// This brings a peer that joined late up to date
func (p *Participant) PushSnapshot(peer string) {
	if !p.owned {
		return
	}

	for _, msg := range []*protocol.Message{
		protocol.SetWagerAmount(p.sent.wagerAmount),
		protocol.SetWagerSelection(p.sent.wagerSelection),
		protocol.SetBalance(p.sent.balance),
		protocol.SetCommitted(p.sent.committed),
	} {
		if err := p.transport.SendTo(peer, msg); err != nil {
			p.logger.WithError(err).WithField("peer", peer).WithField("method", msg.Method.String()).Warn("could not push snapshot, the rest is not sent")
			return
		}
	}
}

func (p *Participant) sendToAll(msg *protocol.Message) bool {
	if err := p.transport.SendToAll(msg); err != nil {
		p.logger.WithError(err).WithField("method", msg.Method.String()).Warn("could not propagate")
		return false
	}

	return true
}

func (p *Participant) publish(kind ChangeKind) {
	p.changes.Publish(Change{
		Kind:           kind,
		Balance:        p.current.balance,
		WagerAmount:    p.current.wagerAmount,
		WagerSelection: p.current.wagerSelection,
		Committed:      p.current.committed,
	})
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
