package config

import (
	"errors"
	"fmt"
	"lucky-server/internal/util"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the relay server and the peer client
type Config struct {
	loaded bool
	Addr   string `yaml:"addr" envconfig:"addr"`
	Log    struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Game Game `yaml:"game"`
}

// Game contains the options that every peer in a room must agree on
type Game struct {
	// StartingBalance is the balance a participant starts with and is reset to on bankruptcy
	StartingBalance int `yaml:"startingBalance" envconfig:"starting_balance"`

	// WagerDenomination is the balance quantity a single chip stack represents
	WagerDenomination int `yaml:"wagerDenomination" envconfig:"wager_denomination"`

	// PerBinCapacity is the number of visible chip stacks a single bin can hold
	PerBinCapacity int `yaml:"perBinCapacity" envconfig:"per_bin_capacity"`

	NeutralPause time.Duration `yaml:"neutralPause" envconfig:"neutral_pause"`
	RevealPause  time.Duration `yaml:"revealPause" envconfig:"reveal_pause"`

	// MaxParticipants is the room capacity enforced by the relay
	MaxParticipants int `yaml:"maxParticipants" envconfig:"max_participants"`
}

var config Config

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	c := Config{
		Addr: ":5000",
		Game: DefaultGame(),
	}
	c.Log.Level = "info"

	return c
}

// DefaultGame returns the default game options
func DefaultGame() Game {
	return Game{
		StartingBalance:   100,
		WagerDenomination: 10,
		PerBinCapacity:    20,
		NeutralPause:      time.Second,
		RevealPause:       time.Second,
		MaxParticipants:   2,
	}
}

// Validate checks the game options for values the game cannot run with
func (g Game) Validate() error {
	if g.StartingBalance <= 0 {
		return errors.New("startingBalance must be > 0")
	}

	if g.WagerDenomination <= 0 {
		return errors.New("wagerDenomination must be > 0")
	}

	if g.PerBinCapacity < 0 {
		return errors.New("perBinCapacity cannot be negative")
	}

	if g.NeutralPause < 0 || g.RevealPause < 0 {
		return errors.New("pauses cannot be negative")
	}

	if g.MaxParticipants < 1 || g.MaxParticipants > 2 {
		return fmt.Errorf("maxParticipants must be 1 or 2, got %d", g.MaxParticipants)
	}

	return nil
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing configuration file is not an error, the defaults are used instead
func Load() error {
	c := DefaultConfig()

	configFile := util.Getenv("LUCKY_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&c); err != nil {
			return fmt.Errorf("could not decode %s: %w", configFile, err)
		}
	case !os.IsNotExist(err):
		return err
	}

	if err := envconfig.Process("lucky", &c); err != nil {
		return err
	}

	if err := c.Game.Validate(); err != nil {
		return err
	}

	c.loaded = true
	config = c
	return nil
}
