// Package view renders a game for a terminal
package view

import (
	"fmt"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/round"
	"strconv"
	"strings"
)

// LocalWagerText describes the local wager, e.g. "40 RED"
func LocalWagerText(p *participant.Participant) string {
	if p == nil {
		return ""
	}

	if p.WagerAmount() <= 0 {
		return "No Bet Placed"
	}

	return fmt.Sprintf("%d %s", p.WagerAmount(), outcomeName(p.WagerSelection()))
}

// LocalBalanceText is the balance of the local participant
func LocalBalanceText(p *participant.Participant) string {
	if p == nil {
		return ""
	}

	return strconv.Itoa(p.Balance())
}

// OpponentNameText introduces the opponent
func OpponentNameText(p *participant.Participant) string {
	if p == nil {
		return ""
	}

	return "Your opponent is " + p.Name
}

// OpponentWagerText describes the opponent's wager
func OpponentWagerText(p *participant.Participant) string {
	if p == nil {
		return ""
	}

	if p.WagerAmount() <= 0 {
		return "Has not placed a bet yet."
	}

	return fmt.Sprintf("They are betting %d on %s.", p.WagerAmount(), outcomeName(p.WagerSelection()))
}

// OpponentBalanceText describes the opponent's balance
func OpponentBalanceText(p *participant.Participant) string {
	if p == nil {
		return ""
	}

	return fmt.Sprintf("Currently has %d chips.", p.Balance())
}

// StatusText describes what the round is waiting for
func StatusText(phase round.Phase, local *participant.Participant, display round.Display) string {
	switch phase {
	case round.PhaseAwaitingCommits:
		if local != nil && local.Committed() {
			return "Locked in. Waiting for your opponent..."
		}

		return "Place your bet."
	case round.PhaseDrawing:
		return "No more bets..."
	case round.PhaseRevealing, round.PhaseSettling:
		return outcomeName(display.Outcome) + "!"
	}

	return "Waiting to join a room..."
}

func outcomeName(o outcome.Outcome) string {
	return strings.ToUpper(o.String())
}
