package psyche

import (
	"fmt"

	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/values"
	"github.com/zeusync/psyche/internal/core/virtue"
)

// Config aggregates the configuration of the four components.
type Config struct {
	Memory memory.Config `yaml:"memory" envPrefix:"MEMORY_"`
	Virtue virtue.Config `yaml:"virtue" envPrefix:"VIRTUE_"`
	Values values.Config `yaml:"values" envPrefix:"VALUES_"`
	Engine EngineConfig  `yaml:"engine" envPrefix:"ENGINE_"`
}

type EngineConfig struct {
	// MemorySynthesisThreshold is the impact from which a reported action
	// also becomes a moral memory. Zero disables synthesis.
	MemorySynthesisThreshold float64 `yaml:"memory_synthesis_threshold" env:"MEMORY_SYNTHESIS_THRESHOLD"`
}

func DefaultConfig() Config {
	return Config{
		Memory: memory.DefaultConfig(),
		Virtue: virtue.DefaultConfig(),
		Values: values.DefaultConfig(),
		Engine: EngineConfig{MemorySynthesisThreshold: 5},
	}
}

func (c Config) Validate() error {
	if err := c.Memory.Validate(); err != nil {
		return fmt.Errorf("memory: %w", err)
	}
	if err := c.Virtue.Validate(); err != nil {
		return fmt.Errorf("virtue: %w", err)
	}
	if err := c.Values.Validate(); err != nil {
		return fmt.Errorf("values: %w", err)
	}
	if t := c.Engine.MemorySynthesisThreshold; t < 0 || t > models.MaxImpact {
		return fmt.Errorf("engine: memory synthesis threshold must be within [0,%g], got %g", models.MaxImpact, t)
	}
	return nil
}
