package values

import "fmt"

type Config struct {
	// Window is the number of recent actions AssessAll recomputes from.
	Window      int  `yaml:"window" env:"WINDOW"`
	EvidenceCap int  `yaml:"evidence_cap" env:"EVIDENCE_CAP"`
	Enabled     bool `yaml:"enabled" env:"ENABLED"`
}

func DefaultConfig() Config {
	return Config{
		Window:      100,
		EvidenceCap: 10,
		Enabled:     true,
	}
}

func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("value window must be at least 1, got %d", c.Window)
	}
	if c.EvidenceCap < 1 {
		return fmt.Errorf("evidence cap must be at least 1, got %d", c.EvidenceCap)
	}
	return nil
}
