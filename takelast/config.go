package takelast

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/flowkit/errors"
)

// Config holds the immutable settings of one takelast operator.
type Config struct {
	// Count caps how many items are retained. Zero or negative means no
	// count cap.
	Count int64

	// Window is the trailing time window measured back from the most
	// recent item. Zero or negative means no age cap.
	Window time.Duration

	// Unit is the clock quantum items are timestamped in. Defaults to
	// time.Millisecond.
	Unit time.Duration

	// DelayError holds an upstream error back until every retained item
	// has been delivered. When false an error preempts retained items.
	DelayError bool

	// CapacityHint sizes the buffer's storage chunks. Tuning only, no
	// semantic effect.
	CapacityHint int
}

// rawConfig is the YAML shape of Config. Durations are strings in
// time.ParseDuration syntax ("500ms", "2s").
type rawConfig struct {
	Count        int64  `yaml:"count"`
	Window       string `yaml:"window"`
	Unit         string `yaml:"unit"`
	DelayError   bool   `yaml:"delay_error"`
	CapacityHint int    `yaml:"capacity_hint"`
}

// ParseConfig loads a Config from YAML and validates it.
func ParseConfig(data []byte) (Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.WrapInvalid(err, "Config", "ParseConfig", "yaml unmarshal")
	}

	cfg := Config{
		Count:        raw.Count,
		DelayError:   raw.DelayError,
		CapacityHint: raw.CapacityHint,
	}

	var err error
	if cfg.Window, err = parseDuration(raw.Window, "window"); err != nil {
		return Config{}, err
	}
	if cfg.Unit, err = parseDuration(raw.Unit, "unit"); err != nil {
		return Config{}, err
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WrapInvalid(err, "Config", "ParseConfig",
			fmt.Sprintf("parse %s %q", field, s))
	}
	return d, nil
}

// withDefaults fills in the unset tuning fields.
func (c Config) withDefaults() Config {
	if c.Unit <= 0 {
		c.Unit = time.Millisecond
	}
	return c
}

// Validate checks that the configuration bounds something. An operator with
// neither a count cap nor a window would retain everything forever.
func (c Config) Validate() error {
	if c.Count <= 0 && c.Window <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate", "need a count cap or a window")
	}
	if c.Window > 0 && c.Unit > 0 && c.Window < c.Unit {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Config", "Validate",
			fmt.Sprintf("window %v is smaller than unit %v", c.Window, c.Unit))
	}
	return nil
}

// windowTicks returns the window expressed in clock units, 0 when unbounded.
func (c Config) windowTicks() int64 {
	if c.Window <= 0 {
		return 0
	}
	return int64(c.Window / c.Unit)
}
