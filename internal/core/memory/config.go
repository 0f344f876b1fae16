package memory

import "fmt"

// Config holds the tuning knobs of a Store.
type Config struct {
	Capacity                     int     `yaml:"capacity" env:"CAPACITY"`
	BaseDecayRate                float64 `yaml:"base_decay_rate" env:"BASE_DECAY_RATE"`
	DecayThreshold               float64 `yaml:"decay_threshold" env:"DECAY_THRESHOLD"`
	EmotionalRetentionMultiplier float64 `yaml:"emotional_retention_multiplier" env:"EMOTIONAL_RETENTION_MULTIPLIER"`
	AccessClarityBonus           float64 `yaml:"access_clarity_bonus" env:"ACCESS_CLARITY_BONUS"`
	DecayEnabled                 bool    `yaml:"decay_enabled" env:"DECAY_ENABLED"`
	AutoManageCapacity           bool    `yaml:"auto_manage_capacity" env:"AUTO_MANAGE_CAPACITY"`
}

// DefaultConfig returns the default memory configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:                     1000,
		BaseDecayRate:                0.05,
		DecayThreshold:               0.1,
		EmotionalRetentionMultiplier: 1.5,
		AccessClarityBonus:           5,
		DecayEnabled:                 true,
		AutoManageCapacity:           true,
	}
}

// Validate checks the configuration for values the store cannot work with.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity %d", ErrMisconfigured, c.Capacity)
	}
	if c.BaseDecayRate < 0 {
		return fmt.Errorf("base decay rate must not be negative, got %g", c.BaseDecayRate)
	}
	if c.DecayThreshold < 0 || c.DecayThreshold > 1 {
		return fmt.Errorf("decay threshold must be within [0,1], got %g", c.DecayThreshold)
	}
	if c.EmotionalRetentionMultiplier < 1 {
		return fmt.Errorf("emotional retention multiplier must be at least 1, got %g", c.EmotionalRetentionMultiplier)
	}
	if c.AccessClarityBonus < 0 {
		return fmt.Errorf("access clarity bonus must not be negative, got %g", c.AccessClarityBonus)
	}
	return nil
}
