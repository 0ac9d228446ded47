package resolution

import (
	"fmt"
)

// Config holds resolution related configuration.
type Config struct {
	EnabledResolutions []string `env:"ENABLED_RESOLUTIONS" envSeparator:"," envDefault:"1m,15m,1h,4h,1d,1w"`
}

// Resolutions validates and returns the enabled resolutions without duplicates.
func (c Config) Resolutions() ([]Resolution, error) {
	if len(c.EnabledResolutions) == 0 {
		return nil, invalid("no resolution enabled")
	}

	seen := make(map[Resolution]bool, len(c.EnabledResolutions))
	enabled := make([]Resolution, 0, len(c.EnabledResolutions))

	for _, name := range c.EnabledResolutions {
		r, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid resolution in config: %w", err)
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		enabled = append(enabled, r)
	}

	return enabled, nil
}
