package view

import "lucky-server/pkg/participant"

// BetPanel is what the bet controls allow for the local participant
type BetPanel struct {
	Amount    int
	Increment bool
	Decrement bool
	LockIn    bool
}

// BetPanelFor returns the controls for p
// Nothing is allowed when enabled is false, as while a round is running
func BetPanelFor(p *participant.Participant, enabled bool) BetPanel {
	if p == nil {
		return BetPanel{}
	}

	panel := BetPanel{Amount: p.WagerAmount()}
	if !enabled {
		return panel
	}

	panel.Increment = p.WagerAmount() < p.Balance()
	panel.Decrement = p.WagerAmount() > 0
	panel.LockIn = p.WagerAmount() > 0
	return panel
}
