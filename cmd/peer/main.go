package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"lucky-server/internal/config"
	"lucky-server/internal/rng"
	"lucky-server/internal/util"
	"lucky-server/pkg/game"
	"lucky-server/pkg/loopback"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/peer"
	"lucky-server/pkg/protocol"
	"lucky-server/pkg/round"
	"lucky-server/pkg/view"
	"os"
	"os/signal"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var (
	relayURL = flag.String("url", "ws://localhost:5000", "the relay server")
	roomName = flag.String("room", "lucky", "the room to join")
	name     = flag.String("name", "", "your display name (defaults to a random one)")
	solo     = flag.Bool("solo", false, "play alone without a relay")
)

func main() {
	flag.Parse()

	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	setupLogger(interactive)

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = util.GetRandomName()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, displayName, interactive); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("peer stopped")
	}
}

func run(ctx context.Context, displayName string, interactive bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	options := config.Instance().Game
	logger := logrus.WithField("name", displayName)
	loop := peer.NewLoop(clock.New(), logger)
	random := rng.NewFromTime()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return loop.Run(ctx)
	})

	var g *game.Game
	redraw := func() {
		if interactive {
			pterm.Print("\033[H\033[2J")
		}

		if err := view.Render(os.Stdout, g); err != nil {
			logger.WithError(err).Warn("could not render")
		}
	}

	handle := func(msg *protocol.Message) {
		g.Handle(msg)
		if msg.Method == protocol.MethodRejected {
			pterm.Error.Printfln("could not join %s: %s", *roomName, msg.Reason)
			cancel()
			return
		}

		redraw()
	}

	join := func(transport participant.Transport) {
		g = game.New(options, transport, loop, random, logger)
		c := g.Coordinator()
		c.OnPhaseChanged(func(round.Phase) { redraw() })
		c.OnSettled(func(s participant.Settlement) {
			logger.WithFields(logrus.Fields{
				"outcome": s.Outcome.String(),
				"won":     s.Won,
				"balance": s.Balance,
			}).Debug("round settled")
		})
	}

	if *solo {
		hub := loopback.NewHub(options.MaxParticipants)
		ep := hub.Endpoint(displayName)
		join(ep)
		loop.Exec(func() {
			if err := ep.Join(handle); err != nil {
				logger.WithError(err).Error("could not join")
				cancel()
			}
		})
	} else {
		conn, err := peer.Dial(ctx, *relayURL, *roomName, displayName, logger)
		if err != nil {
			return err
		}

		join(conn)
		group.Go(func() error {
			defer cancel()
			return conn.Run(ctx, func(msg *protocol.Message) {
				loop.Exec(func() { handle(msg) })
			})
		})
	}

	lines := readLines(os.Stdin)
	group.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line, ok := <-lines:
				if !ok {
					// stdin closed
					loop.Exec(g.Leave)
					cancel()
					return nil
				}

				loop.Exec(func() { runCommand(g, line, cancel, redraw) })
			}
		}
	})

	return group.Wait()
}

func runCommand(g *game.Game, line string, cancel context.CancelFunc, redraw func()) {
	cmd, err := parseCommand(line)
	if err != nil {
		if err != errEmptyCommand {
			pterm.Warning.Println(err.Error())
		}
		return
	}

	if cmd.kind == commandHelp {
		pterm.Info.Println("\n" + helpText)
		return
	}

	quit, err := apply(g, cmd)
	if quit {
		cancel()
		return
	}

	redraw()
	if err != nil {
		pterm.Warning.Println(err.Error())
	}
}

func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	return lines
}

func setupLogger(interactive bool) {
	logrus.SetOutput(os.Stderr)
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if !interactive {
		pterm.DisableStyling()
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\nCommands once seated:\n%s\n\nFlags:\n", os.Args[0], helpText)
		flag.PrintDefaults()
	}
}
