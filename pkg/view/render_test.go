package view

import (
	"bytes"
	"lucky-server/internal/config"
	"lucky-server/internal/rng"
	"lucky-server/internal/schedtest"
	"lucky-server/pkg/chips"
	"lucky-server/pkg/game"
	"lucky-server/pkg/loopback"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/round"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func init() {
	pterm.DisableStyling()
}

func TestBin(t *testing.T) {
	a := assert.New(t)

	b := chips.NewBin("test", 2)
	a.Equal("-", Bin(b))
	a.Equal("", Bin(nil))

	b.Push(&chips.Unit{ID: 1})
	b.Push(&chips.Unit{ID: 2})
	b.Push(&chips.Unit{ID: 3})
	out := Bin(b)
	a.Equal(2, strings.Count(out, unitGlyph))
	a.True(strings.HasSuffix(out, " +1"))
}

func TestBettingObject(t *testing.T) {
	assert.Contains(t, BettingObject(round.NeutralDisplay), "?")
	assert.Contains(t, BettingObject(round.Display{Decided: true, Outcome: outcome.Red}), "RED")
}

func TestRender(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	sched := schedtest.New()

	var games []*game.Game
	for i, name := range []string{"Alice", "Bob"} {
		ep := hub.Endpoint(name)
		g := game.New(config.DefaultGame(), ep, sched, rng.New(int64(i)), nil)
		a.NoError(ep.Join(g.Handle))
		games = append(games, g)
	}

	alice, bob := games[0], games[1]
	alice.SetWager(40)

	var buf bytes.Buffer
	a.NoError(Render(&buf, bob))
	out := buf.String()
	a.Contains(out, "Your opponent is Alice")
	a.Contains(out, "They are betting 40 on RED.")
	a.Contains(out, "Currently has 100 chips.")
	a.Contains(out, "No Bet Placed")
	a.Contains(out, "Place your bet.")

	buf.Reset()
	a.NoError(Render(&buf, alice))
	a.Contains(buf.String(), "40 RED")
	a.Contains(buf.String(), "commit")
}
