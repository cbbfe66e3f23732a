package main

import (
	"errors"
	"fmt"
	"lucky-server/pkg/game"
	"lucky-server/pkg/outcome"
	"strconv"
	"strings"
)

type commandKind int

const (
	commandModify commandKind = iota + 1
	commandBet
	commandSelect
	commandCommit
	commandUncommit
	commandHelp
	commandQuit
)

type command struct {
	kind    commandKind
	amount  int
	outcome outcome.Outcome
}

const helpText = `+N / -N     change your bet by N
bet N       bet exactly N
red, green  pick the outcome you are betting on
commit      lock in your bet
uncommit    take it back before the round starts
quit        leave the room`

var errEmptyCommand = errors.New("empty command")

func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}

	word := fields[0]
	switch {
	case strings.HasPrefix(word, "+") || strings.HasPrefix(word, "-"):
		n, err := strconv.Atoi(word)
		if err != nil {
			return command{}, fmt.Errorf("invalid amount: %q", word)
		}

		return command{kind: commandModify, amount: n}, nil
	case word == "bet":
		if len(fields) != 2 {
			return command{}, errors.New("usage: bet N")
		}

		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return command{}, fmt.Errorf("invalid amount: %q", fields[1])
		}

		return command{kind: commandBet, amount: n}, nil
	case word == "commit" || word == "lock":
		return command{kind: commandCommit}, nil
	case word == "uncommit" || word == "unlock":
		return command{kind: commandUncommit}, nil
	case word == "help" || word == "?":
		return command{kind: commandHelp}, nil
	case word == "quit" || word == "exit" || word == "leave":
		return command{kind: commandQuit}, nil
	}

	o, err := outcome.FromString(word)
	if err != nil {
		return command{}, fmt.Errorf("unknown command: %q", word)
	}

	return command{kind: commandSelect, outcome: o}, nil
}

var errNotNow = errors.New("bets are closed right now")

// apply runs cmd against g and reports whether the peer should leave
func apply(g *game.Game, cmd command) (quit bool, err error) {
	var ok bool
	switch cmd.kind {
	case commandModify:
		ok = g.ModifyWager(cmd.amount)
	case commandBet:
		ok = g.SetWager(cmd.amount)
	case commandSelect:
		ok = g.Select(cmd.outcome)
	case commandCommit:
		ok = g.LockIn()
	case commandUncommit:
		ok = g.Unlock()
	case commandHelp:
		return false, nil
	case commandQuit:
		g.Leave()
		return true, nil
	default:
		return false, fmt.Errorf("unknown command: %d", cmd.kind)
	}

	if !ok {
		return false, errNotNow
	}

	return false, nil
}
