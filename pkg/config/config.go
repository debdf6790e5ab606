// Package config holds the tunables for a rbftrace extraction run: the
// knobs threaded through to pkg/extract's CompositeParams plus the
// incremental-update cadence fields. cmd/rbftrace does not read the cadence
// fields; it takes the cadence from its --interval and --arrival flags.
package config

import (
	"os"

	"github.com/rbftrace/rbftrace/pkg/extract"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a model-extraction run.
// Units:
//   - JitterBound/Resolution: nanoseconds (via rtime.Time)
//   - WindowSize/MaxSignalLen/BufSize: counts (samples, points, events)
//   - FFTCutoff: dimensionless, fraction of peak normalized power [0..1]
//   - UpdateIntervalSec: seconds between incremental model re-extractions
//   - UpdateArrival: re-extract every N arrivals instead of (or as well as)
//     on a time interval
type Config struct {
	// Periodic extractor
	JitterBound rtime.Time `yaml:"jitter_bound"`
	Resolution  rtime.Time `yaml:"resolution"`

	// Spectral extractor
	MaxSignalLen int     `yaml:"max_signal_len"`
	FFTCutoff    float64 `yaml:"fft_cutoff"`

	// RBF extractor
	WindowSize int `yaml:"window_size"`
	BufSize    int `yaml:"buf_size"`

	// Sub-extractor enable flags
	PeriodicEnabled bool `yaml:"periodic_enabled"`
	SpectralEnabled bool `yaml:"spectral_enabled"`
	RBFEnabled      bool `yaml:"rbf_enabled"`

	// Incremental extraction cadence. These fields are loaded and saved
	// only: CompositeParams does not pass them on and cmd/rbftrace does not
	// read them.
	UpdateIntervalSec float64 `yaml:"update_interval"`
	UpdateArrival     uint64  `yaml:"update_arrival"`
}

// Default returns a Config pre-filled with the reference extraction
// defaults.
func Default() *Config {
	return &Config{
		JitterBound:     rtime.FromMs(1.5),   // 1.5ms, i.e. 1_500_000ns
		Resolution:      rtime.FromUs(100),   // 100us
		MaxSignalLen:    1_000_000,           // samples
		FFTCutoff:       0.5,                 // half of peak normalized power
		WindowSize:      1000,                // RBF/history window, in jobs
		BufSize:         1000,                // arrival-subset capacity; not passed on by CompositeParams
		PeriodicEnabled: true,
		SpectralEnabled: true,
		RBFEnabled:      true,
	}
}

// Load reads a Config from a YAML file. It starts from Default() and
// unmarshals the file onto it, so any field the file leaves unset keeps its
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CompositeParams translates cfg into the parameters pkg/extract's
// CompositeExtractor (and, through it, the system-level multiplexer)
// expects.
func (c *Config) CompositeParams() extract.CompositeParams {
	return extract.CompositeParams{
		Periodic: extract.PeriodicParams{
			Resolution: c.Resolution,
			JMax:       c.JitterBound,
		},
		Spectral: extract.SpectralParams{
			MaxSignalLen: c.MaxSignalLen,
			WindowSize:   c.WindowSize,
			FFTCutoff:    c.FFTCutoff,
		},
		RBF: extract.RBFParams{
			WindowSize: c.WindowSize,
		},
		PeriodicEnabled: c.PeriodicEnabled,
		SpectralEnabled: c.SpectralEnabled,
		RBFEnabled:      c.RBFEnabled,
	}
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
