// Package config loads engine configuration from a YAML file with sane
// defaults for every key, so the engine is usable without any file at all.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Rules   Rules   `mapstructure:"rules"`
	Logging Logging `mapstructure:"logging"`
}

// Rules holds the tunable duel rules the engine is constructed with.
type Rules struct {
	VictoryScore        int `mapstructure:"victory_score"`
	StartingHandSize    int `mapstructure:"starting_hand_size"`
	MulliganMax         int `mapstructure:"mulligan_max"`
	RunesPerTurn        int `mapstructure:"runes_per_turn"`
	FirstTurnBonusRunes int `mapstructure:"first_turn_bonus_runes"`
	MaxAutoAdvance      int `mapstructure:"max_auto_advance"`
	MoveLogCapacity     int `mapstructure:"move_log_capacity"`
	ScoreLogCapacity    int `mapstructure:"score_log_capacity"`
	DuelLogCapacity     int `mapstructure:"duel_log_capacity"`
	ChatLogCapacity     int `mapstructure:"chat_log_capacity"`
}

// Logging holds logger settings for binaries embedding the engine.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultRules returns the standard duel rules.
func DefaultRules() Rules {
	return Rules{
		VictoryScore:        8,
		StartingHandSize:    4,
		MulliganMax:         2,
		RunesPerTurn:        1,
		FirstTurnBonusRunes: 1,
		MaxAutoAdvance:      64,
		MoveLogCapacity:     256,
		ScoreLogCapacity:    64,
		DuelLogCapacity:     512,
		ChatLogCapacity:     128,
	}
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Rules:   DefaultRules(),
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads configuration from the given YAML file. An empty path skips
// the file and yields defaults; a named file must exist and parse.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("rules.victory_score", defaults.Rules.VictoryScore)
	v.SetDefault("rules.starting_hand_size", defaults.Rules.StartingHandSize)
	v.SetDefault("rules.mulligan_max", defaults.Rules.MulliganMax)
	v.SetDefault("rules.runes_per_turn", defaults.Rules.RunesPerTurn)
	v.SetDefault("rules.first_turn_bonus_runes", defaults.Rules.FirstTurnBonusRunes)
	v.SetDefault("rules.max_auto_advance", defaults.Rules.MaxAutoAdvance)
	v.SetDefault("rules.move_log_capacity", defaults.Rules.MoveLogCapacity)
	v.SetDefault("rules.score_log_capacity", defaults.Rules.ScoreLogCapacity)
	v.SetDefault("rules.duel_log_capacity", defaults.Rules.DuelLogCapacity)
	v.SetDefault("rules.chat_log_capacity", defaults.Rules.ChatLogCapacity)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

func (c *Config) validate() error {
	if c.Rules.VictoryScore <= 0 {
		return fmt.Errorf("rules.victory_score must be positive, got %d", c.Rules.VictoryScore)
	}
	if c.Rules.StartingHandSize < 0 {
		return fmt.Errorf("rules.starting_hand_size must not be negative, got %d", c.Rules.StartingHandSize)
	}
	if c.Rules.MulliganMax < 0 {
		return fmt.Errorf("rules.mulligan_max must not be negative, got %d", c.Rules.MulliganMax)
	}
	if c.Rules.RunesPerTurn < 0 {
		return fmt.Errorf("rules.runes_per_turn must not be negative, got %d", c.Rules.RunesPerTurn)
	}
	if c.Rules.MaxAutoAdvance <= 0 {
		return fmt.Errorf("rules.max_auto_advance must be positive, got %d", c.Rules.MaxAutoAdvance)
	}
	return nil
}
