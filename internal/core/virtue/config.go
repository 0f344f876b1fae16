package virtue

import (
	"fmt"
	"time"
)

// Config holds the tuning knobs of a Ledger.
type Config struct {
	DecayRate              float64       `yaml:"decay_rate" env:"DECAY_RATE"`
	ImpactMultiplier       float64       `yaml:"impact_multiplier" env:"IMPACT_MULTIPLIER"`
	MaxHistory             int           `yaml:"max_history" env:"MAX_HISTORY"`
	ConsistencyWindow      time.Duration `yaml:"consistency_window" env:"CONSISTENCY_WINDOW"`
	ConsistencyRequirement float64       `yaml:"consistency_requirement" env:"CONSISTENCY_REQUIREMENT"`
	DecayEnabled           bool          `yaml:"decay_enabled" env:"DECAY_ENABLED"`
}

// DefaultConfig returns the default ledger configuration.
func DefaultConfig() Config {
	return Config{
		DecayRate:              0.1,
		ImpactMultiplier:       1.0,
		MaxHistory:             500,
		ConsistencyWindow:      30 * 24 * time.Hour,
		ConsistencyRequirement: 0.7,
		DecayEnabled:           true,
	}
}

func (c Config) Validate() error {
	if c.DecayRate < 0 {
		return fmt.Errorf("virtue decay rate must not be negative, got %g", c.DecayRate)
	}
	if c.ImpactMultiplier <= 0 {
		return fmt.Errorf("impact multiplier must be positive, got %g", c.ImpactMultiplier)
	}
	if c.MaxHistory < 1 {
		return fmt.Errorf("max history must be at least 1, got %d", c.MaxHistory)
	}
	if c.ConsistencyWindow <= 0 {
		return fmt.Errorf("consistency window must be positive, got %s", c.ConsistencyWindow)
	}
	if c.ConsistencyRequirement < 0 || c.ConsistencyRequirement > 1 {
		return fmt.Errorf("consistency requirement must be within [0,1], got %g", c.ConsistencyRequirement)
	}
	return nil
}
