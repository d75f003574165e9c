package volatility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SurfaceConfig holds the surface builder knobs. Zero values are filled in
// from DefaultSurfaceConfig, so a partial YAML file is fine.
type SurfaceConfig struct {
	MinQuotePoints int     `yaml:"min_quote_points"`
	MinSmilePoints int     `yaml:"min_smile_points"`
	IVMin          float64 `yaml:"iv_min"`
	IVMax          float64 `yaml:"iv_max"`
	Workers        int     `yaml:"workers"`
	ATMBandPercent float64 `yaml:"atm_band_percent"`
}

func DefaultSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		MinQuotePoints: 4,
		MinSmilePoints: MinSmilePoints,
		IVMin:          0.001,
		IVMax:          5.0,
		Workers:        4,
		ATMBandPercent: 0.005,
	}
}

func (c SurfaceConfig) withDefaults() SurfaceConfig {
	defaults := DefaultSurfaceConfig()

	if c.MinQuotePoints < defaults.MinQuotePoints {
		c.MinQuotePoints = defaults.MinQuotePoints
	}
	if c.MinSmilePoints < MinSmilePoints {
		c.MinSmilePoints = MinSmilePoints
	}
	if c.IVMin <= 0 {
		c.IVMin = defaults.IVMin
	}
	if c.IVMax <= c.IVMin {
		c.IVMax = defaults.IVMax
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.ATMBandPercent <= 0 {
		c.ATMBandPercent = defaults.ATMBandPercent
	}

	return c
}

func LoadSurfaceConfig(path string) (SurfaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SurfaceConfig{}, fmt.Errorf("LoadSurfaceConfig: failed to read %s: %w", path, err)
	}

	config := DefaultSurfaceConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return SurfaceConfig{}, fmt.Errorf("LoadSurfaceConfig: failed to parse %s: %w", path, err)
	}

	return config.withDefaults(), nil
}
