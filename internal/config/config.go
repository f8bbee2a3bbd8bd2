// Package config provides Viper-based configuration loading for the cave server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// RegistryConfig holds cave-directory registry settings. The cave server
// announces its client listen address to the directory once at startup.
type RegistryConfig struct {
	// Enabled controls whether the server registers with a directory at all.
	// Disabled is useful for local development without a directory process.
	Enabled bool `mapstructure:"enabled"`
	// Host is the directory service host.
	Host string `mapstructure:"host"`
	// Port is the directory service port.
	Port int `mapstructure:"port"`
	// DialTimeout bounds the initial connection attempt.
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// Addr returns the "host:port" directory address.
func (r RegistryConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CaveConfig holds map generation settings.
type CaveConfig struct {
	// Rooms is the number of rooms in the generated cave.
	Rooms int `mapstructure:"rooms"`
	// IDRange is the exclusive upper bound for random room ids. Room ids are
	// drawn uniformly from [0, id_range) and collision-checked.
	IDRange int `mapstructure:"id_range"`
	// LadderIndex is the generation-order index of the escape room.
	LadderIndex int `mapstructure:"ladder_index"`
	// GoldDrop is the amount of gold placed in a gold room at generation.
	GoldDrop int `mapstructure:"gold_drop"`
	// SampleAttempts caps every random retry loop (id assignment, wumpus
	// placement, neighbor resampling). Exhaustion is a fatal error.
	SampleAttempts int `mapstructure:"sample_attempts"`
	// Seed, when non-zero, replaces the crypto randomness source with a
	// deterministic seeded source. Intended for development only.
	Seed uint64 `mapstructure:"seed"`
}

// RulesConfig holds tunable game rules.
type RulesConfig struct {
	// StartingArrows is the arrow count granted to each new player.
	StartingArrows int `mapstructure:"starting_arrows"`
	// WumpusReward is the gold deposited into the room where the wumpus dies.
	WumpusReward int `mapstructure:"wumpus_reward"`
	// ArrowLostOnInvalidTarget controls whether shooting at a room that is
	// not adjacent still consumes an arrow. Variants of the game disagree on
	// this rule, so it is explicit rather than baked in.
	ArrowLostOnInvalidTarget bool `mapstructure:"arrow_lost_on_invalid_target"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Registry RegistryConfig `mapstructure:"registry"`
	Cave     CaveConfig     `mapstructure:"cave"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	// NarrativePath optionally points at a YAML file overriding the built-in
	// player-facing message set. Empty means defaults.
	NarrativePath string `mapstructure:"narrative_path"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRegistry(c.Registry); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCave(c.Cave); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRegistry(r RegistryConfig) error {
	if !r.Enabled {
		return nil
	}
	var errs []string
	if r.Host == "" {
		errs = append(errs, "registry.host must not be empty when registry is enabled")
	}
	if r.Port < 1 || r.Port > 65535 {
		errs = append(errs, fmt.Sprintf("registry.port must be 1-65535, got %d", r.Port))
	}
	if r.DialTimeout < 0 {
		errs = append(errs, "registry.dial_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCave(c CaveConfig) error {
	var errs []string
	// Ring+skip wiring (i↔i+1, i↔i+2 mod N) needs at least 5 rooms before
	// every edge is distinct and every room has degree 4.
	if c.Rooms < 5 {
		errs = append(errs, fmt.Sprintf("cave.rooms must be >= 5, got %d", c.Rooms))
	}
	// The bounded id-collision retry loop terminates quickly only while the
	// id space comfortably exceeds the room count.
	if c.IDRange < 2*c.Rooms {
		errs = append(errs, fmt.Sprintf("cave.id_range must be >= 2*cave.rooms, got %d for %d rooms", c.IDRange, c.Rooms))
	}
	if c.LadderIndex < 0 || c.LadderIndex >= c.Rooms {
		errs = append(errs, fmt.Sprintf("cave.ladder_index must be in [0, cave.rooms), got %d", c.LadderIndex))
	}
	if c.GoldDrop < 0 {
		errs = append(errs, fmt.Sprintf("cave.gold_drop must be >= 0, got %d", c.GoldDrop))
	}
	if c.SampleAttempts < 1 {
		errs = append(errs, fmt.Sprintf("cave.sample_attempts must be >= 1, got %d", c.SampleAttempts))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.StartingArrows < 0 {
		errs = append(errs, fmt.Sprintf("rules.starting_arrows must be >= 0, got %d", r.StartingArrows))
	}
	if r.WumpusReward < 0 {
		errs = append(errs, fmt.Sprintf("rules.wumpus_reward must be >= 0, got %d", r.WumpusReward))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CAVE_ prefix
	v.SetEnvPrefix("CAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: unmarshalling defaults: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: built-in defaults are invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 2000)
	v.SetDefault("telnet.read_timeout", "0s")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("registry.enabled", false)
	v.SetDefault("registry.host", "localhost")
	v.SetDefault("registry.port", 1235)
	v.SetDefault("registry.dial_timeout", "5s")

	v.SetDefault("cave.rooms", 20)
	v.SetDefault("cave.id_range", 100)
	v.SetDefault("cave.ladder_index", 10)
	v.SetDefault("cave.gold_drop", 500)
	v.SetDefault("cave.sample_attempts", 10000)
	v.SetDefault("cave.seed", 0)

	v.SetDefault("rules.starting_arrows", 3)
	v.SetDefault("rules.wumpus_reward", 500)
	v.SetDefault("rules.arrow_lost_on_invalid_target", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("narrative_path", "")
}
