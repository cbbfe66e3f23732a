package main

import (
	"lucky-server/internal/config"
	"lucky-server/internal/rng"
	"lucky-server/internal/schedtest"
	"lucky-server/pkg/game"
	"lucky-server/pkg/loopback"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/round"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parseCommand(t *testing.T) {
	a := assert.New(t)

	cmd, err := parseCommand("+20")
	a.NoError(err)
	a.Equal(command{kind: commandModify, amount: 20}, cmd)

	cmd, err = parseCommand("  -10 ")
	a.NoError(err)
	a.Equal(command{kind: commandModify, amount: -10}, cmd)

	cmd, err = parseCommand("bet 40")
	a.NoError(err)
	a.Equal(command{kind: commandBet, amount: 40}, cmd)

	cmd, err = parseCommand("RED")
	a.NoError(err)
	a.Equal(command{kind: commandSelect, outcome: outcome.Red}, cmd)

	cmd, err = parseCommand("green")
	a.NoError(err)
	a.Equal(command{kind: commandSelect, outcome: outcome.Green}, cmd)

	cmd, _ = parseCommand("commit")
	a.Equal(commandCommit, cmd.kind)
	cmd, _ = parseCommand("uncommit")
	a.Equal(commandUncommit, cmd.kind)
	cmd, _ = parseCommand("quit")
	a.Equal(commandQuit, cmd.kind)
	cmd, _ = parseCommand("?")
	a.Equal(commandHelp, cmd.kind)

	_, err = parseCommand("")
	a.Equal(errEmptyCommand, err)

	_, err = parseCommand("+ten")
	a.EqualError(err, `invalid amount: "+ten"`)

	_, err = parseCommand("bet")
	a.EqualError(err, "usage: bet N")

	_, err = parseCommand("bet -5")
	a.EqualError(err, `invalid amount: "-5"`)

	_, err = parseCommand("blue")
	a.EqualError(err, `unknown command: "blue"`)
}

func Test_apply(t *testing.T) {
	a := assert.New(t)

	hub := loopback.NewHub(2)
	ep := hub.Endpoint("Alice")
	sched := schedtest.New()
	g := game.New(config.DefaultGame(), ep, sched, rng.New(7), nil)
	a.NoError(ep.Join(g.Handle))

	quit, err := apply(g, command{kind: commandBet, amount: 30})
	a.False(quit)
	a.NoError(err)
	a.Equal(30, g.Local().WagerAmount())

	_, err = apply(g, command{kind: commandModify, amount: -10})
	a.NoError(err)
	a.Equal(20, g.Local().WagerAmount())

	_, err = apply(g, command{kind: commandSelect, outcome: outcome.Green})
	a.NoError(err)
	a.Equal(outcome.Green, g.Local().WagerSelection())

	// alone in the room, committing starts the round
	_, err = apply(g, command{kind: commandCommit})
	a.NoError(err)
	a.Equal(round.PhaseDrawing, g.Coordinator().Phase())

	_, err = apply(g, command{kind: commandBet, amount: 10})
	a.Equal(errNotNow, err)
	a.Equal(20, g.Local().WagerAmount())

	_, err = apply(g, command{kind: commandUncommit})
	a.Equal(errNotNow, err)

	quit, err = apply(g, command{kind: commandQuit})
	a.True(quit)
	a.NoError(err)
	a.Equal(round.PhaseIdle, g.Coordinator().Phase())
	a.Nil(g.Local())
}
