package participant

import (
	"lucky-server/pkg/outcome"

	"github.com/sirupsen/logrus"
)

// Settlement describes the result of settling a wager
type Settlement struct {
	Outcome  outcome.Outcome
	Wager    int
	Won      bool
	Balance  int
	Bankrupt bool
}

// Settle adjusts the owner's balance against the drawn outcome and zeroes the wager
// Each owner settles only itself. Settle returns false when the participant is a replica
func (p *Participant) Settle(o outcome.Outcome) (Settlement, bool) {
	if !p.owned {
		return Settlement{}, false
	}

	s := Settlement{
		Outcome: o,
		Wager:   p.sent.wagerAmount,
		Won:     p.sent.wagerSelection == o,
	}

	if s.Won {
		s.Balance = p.sent.balance + s.Wager
	} else {
		s.Balance = p.sent.balance - s.Wager
	}

	if s.Balance <= 0 {
		s.Bankrupt = true
		s.Balance = p.startingBalance
	}

	p.ProposeBalance(s.Balance)
	p.ProposeWager(0)

	p.logger.WithFields(logrus.Fields{
		"outcome": o.String(),
		"wager":   s.Wager,
		"won":     s.Won,
		"balance": s.Balance,
	}).Debug("settled")

	return s, true
}
