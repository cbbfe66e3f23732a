package config

import (
	"lucky-server/internal/util"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("LUCKY_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("LUCKY_GAME_STARTING_BALANCE", "300")
	defer clear2()

	a := assert.New(t)
	cfg := Instance()
	a.Equal(":6000", cfg.Addr)
	a.Equal("debug", cfg.Log.Level)
	a.Equal(300, cfg.Game.StartingBalance)
	a.Equal(25, cfg.Game.WagerDenomination)
	a.Equal(8, cfg.Game.PerBinCapacity)
	a.Equal(1500*time.Millisecond, cfg.Game.NeutralPause)
	a.Equal(2*time.Second, cfg.Game.RevealPause)
	a.Equal(2, cfg.Game.MaxParticipants)

	// ensure that it's only loaded once
	_ = os.Setenv("LUCKY_GAME_STARTING_BALANCE", "400")
	// ensure we aren't using a pointer
	cfg.Game.StartingBalance = 1
	cfg = Instance()
	a.Equal(300, cfg.Game.StartingBalance)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("LUCKY_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear1()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal(":5000", cfg.Addr)
	a.Equal(DefaultGame(), cfg.Game)
	a.Equal(100, cfg.Game.StartingBalance)
	a.Equal(10, cfg.Game.WagerDenomination)
	a.Equal(time.Second, cfg.Game.NeutralPause)
	a.Equal(time.Second, cfg.Game.RevealPause)
	a.Equal(2, cfg.Game.MaxParticipants)
}

func TestLoad_invalid(t *testing.T) {
	clear1 := util.SetEnv("LUCKY_CONFIG_FILE", "testdata/invalid.yaml")
	defer clear1()

	assert.EqualError(t, Load(), "wagerDenomination must be > 0")
}

func TestGame_Validate(t *testing.T) {
	a := assert.New(t)

	a.NoError(DefaultGame().Validate())

	g := DefaultGame()
	g.StartingBalance = 0
	a.EqualError(g.Validate(), "startingBalance must be > 0")

	g = DefaultGame()
	g.PerBinCapacity = -1
	a.EqualError(g.Validate(), "perBinCapacity cannot be negative")

	g = DefaultGame()
	g.RevealPause = -time.Second
	a.EqualError(g.Validate(), "pauses cannot be negative")

	g = DefaultGame()
	g.MaxParticipants = 3
	a.EqualError(g.Validate(), "maxParticipants must be 1 or 2, got 3")
}
