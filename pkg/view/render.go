package view

import (
	"fmt"
	"io"
	"lucky-server/pkg/chips"
	"lucky-server/pkg/game"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/round"
	"lucky-server/pkg/session"
	"strings"

	"github.com/pterm/pterm"
)

const unitGlyph = "●"

// Bin renders the visible units of a bin in their colors, followed by the hidden count
func Bin(b *chips.Bin) string {
	if b == nil {
		return ""
	}

	var sb strings.Builder
	for _, u := range b.Visible() {
		sb.WriteString(pterm.NewRGB(u.Color.R, u.Color.G, u.Color.B).Sprint(unitGlyph))
	}

	if n := b.Overflow(); n > 0 {
		sb.WriteString(fmt.Sprintf(" +%d", n))
	}

	if sb.Len() == 0 {
		return "-"
	}

	return sb.String()
}

// BettingObject renders the betting object in its display color
func BettingObject(d round.Display) string {
	label := "  ?  "
	if d.Decided {
		label = fmt.Sprintf(" %s ", outcomeName(d.Outcome))
	}

	return outcomeStyle(d).Sprint(label)
}

func outcomeStyle(d round.Display) *pterm.Style {
	if !d.Decided {
		return pterm.NewStyle(pterm.BgWhite, pterm.FgBlack)
	}

	switch d.Outcome {
	case outcome.Red:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case outcome.Green:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack, pterm.Bold)
	}

	return pterm.NewStyle(pterm.BgWhite, pterm.FgBlack)
}

func bins(alloc *chips.Allocator) string {
	if alloc == nil || alloc.Target() == nil {
		return ""
	}

	lines := make([]string, 0, len(outcome.All())+1)
	lines = append(lines, "Chips: "+Bin(alloc.Bin(chips.PlayerBin)))
	for _, o := range outcome.All() {
		lines = append(lines, fmt.Sprintf("%-6s %s", o.String()+":", Bin(alloc.Bin(chips.WagerBin(o)))))
	}

	return strings.Join(lines, "\n")
}

func localPanel(g *game.Game) string {
	local := g.Local()
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	if local == nil {
		return box.WithTitle("You").Sprint("Not seated")
	}

	panel := BetPanelFor(local, g.Coordinator().WagerEntryEnabled())
	controls := make([]string, 0, 4)
	if panel.Increment {
		controls = append(controls, "+N")
	}
	if panel.Decrement {
		controls = append(controls, "-N")
	}
	if panel.Increment || panel.Decrement {
		controls = append(controls, "red/green")
	}
	if panel.LockIn {
		controls = append(controls, "commit")
	}

	body := fmt.Sprintf("%s\nBet: %s\nBalance: %s\n%s",
		pterm.LightCyan(local.Name),
		LocalWagerText(local),
		LocalBalanceText(local),
		bins(g.Chips(session.SlotLocal)),
	)

	if len(controls) > 0 {
		body += "\n" + pterm.Gray(strings.Join(controls, " | "))
	}

	return box.WithTitle("You").WithTitleTopLeft().Sprint(body)
}

func opponentPanel(g *game.Game) string {
	remote := g.Remote()
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	if remote == nil {
		return box.WithTitle("Opponent").Sprint("Waiting for an opponent...")
	}

	body := fmt.Sprintf("%s\n%s\n%s\n%s",
		OpponentNameText(remote),
		OpponentWagerText(remote),
		OpponentBalanceText(remote),
		bins(g.Chips(session.SlotRemote)),
	)

	if remote.Committed() {
		body += "\n" + pterm.LightGreen("Locked in")
	}

	return box.WithTitle("Opponent").WithTitleTopLeft().Sprint(body)
}

func tablePanel(g *game.Game) string {
	c := g.Coordinator()
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	body := fmt.Sprintf("%s\n\n%s\nRound %d",
		BettingObject(c.Display()),
		StatusText(c.Phase(), g.Local(), c.Display()),
		c.Round(),
	)

	return box.WithTitle(pterm.LightYellow("|LUCKY|")).WithTitleTopCenter().Sprint(body)
}

// Board renders the whole table
func Board(g *game.Game) (string, error) {
	return pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{{Data: opponentPanel(g)}},
		{{Data: tablePanel(g)}},
		{{Data: localPanel(g)}},
	}).Srender()
}

// Render writes the table to w
func Render(w io.Writer, g *game.Game) error {
	board, err := Board(g)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, board+"\n")
	return err
}
