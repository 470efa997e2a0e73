package mcmc

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/skellam/mcrun/progress"
)

// Config is the flat option set recognized by the harness. A nil *Config is
// valid everywhere and means "all defaults". Options the harness does not
// recognize are never rejected: ConfigFromMap routes them into Extra, which
// steppers, hooks, and bundlers receive untouched.
type Config struct {
	// Progress enables progress reporting for this run. nil means use the
	// process-wide default (progress.Enabled), resolved at call time.
	Progress *bool `mapstructure:"progress"`

	// ProgressName labels the progress sink.
	ProgressName string `mapstructure:"progressName"`

	// ProgressSink receives progress fractions. When nil and progress is
	// enabled, a logrus-backed sink labeled with ProgressName is used.
	ProgressSink progress.Sink `mapstructure:"-"`

	// Callback is invoked synchronously after every internal step. Default
	// is a no-op.
	Callback Callback `mapstructure:"-"`

	// ChainType selects the Result Bundler conversion. Default Unconstrained
	// (identity).
	ChainType ChainType `mapstructure:"chainType"`

	// DiscardInitial is the number of leading internal steps dropped before
	// retention begins (bounded runs only). Default 0.
	DiscardInitial int `mapstructure:"discardInitial"`

	// Thinning retains every k-th internal step after discard (bounded runs
	// only). Default 1.
	Thinning int `mapstructure:"thinning"`

	// Workers is the concurrency slot count for Distributed ensembles.
	// Default is the CPU count.
	Workers int `mapstructure:"workers"`

	// Extra holds options the harness does not recognize, forwarded opaquely.
	Extra map[string]interface{} `mapstructure:",remain"`
}

// Bool returns a pointer to v, for setting Config.Progress in a literal.
func Bool(v bool) *bool {
	return &v
}

// ConfigFromMap decodes a flat option map into a Config. Recognized keys
// (progress, progressName, chainType, discardInitial, thinning, workers)
// populate their fields; everything else lands in Extra.
func ConfigFromMap(opts map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Could not build option decoder")
	}

	if err := dec.Decode(opts); err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "Could not decode options: %v", err)
	}

	return cfg, nil
}

// normalized returns a copy of the config with defaults applied. A nil
// receiver yields the all-default config.
func (c *Config) normalized() *Config {
	cp := Config{}
	if c != nil {
		cp = *c
	}

	if cp.Thinning == 0 {
		cp.Thinning = 1
	}
	if cp.ChainType == "" {
		cp.ChainType = Unconstrained
	}

	return &cp
}

// validate checks the retention options shared by the sampling loops.
func (c *Config) validate() error {
	if c.DiscardInitial < 0 {
		return errors.Wrapf(ErrInvalidArgument, "discardInitial must be >= 0, got %d", c.DiscardInitial)
	}
	if c.Thinning < 1 {
		return errors.Wrapf(ErrInvalidArgument, "thinning must be >= 1, got %d", c.Thinning)
	}
	return nil
}

// progressEnabled resolves the per-run progress switch against the
// process-wide default.
func (c *Config) progressEnabled() bool {
	if c.Progress != nil {
		return *c.Progress
	}
	return progress.Enabled()
}

// sink returns the progress sink for this run: Discard when reporting is
// off, the configured sink when one is set, a logrus sink otherwise.
func (c *Config) sink() progress.Sink {
	if !c.progressEnabled() {
		return progress.Discard
	}
	if c.ProgressSink != nil {
		return c.ProgressSink
	}
	return progress.NewLogSink(c.ProgressName)
}
