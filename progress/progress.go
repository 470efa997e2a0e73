// Package progress defines the fraction sink that sampling loops report
// through, plus the process-wide default toggle for progress reporting.
package progress

import (
	"expvar"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// A Sink receives progress fractions in [0.0, 1.0]. Report is called
// synchronously by the run that owns the sink, so implementations only need
// to be safe for a single caller.
type Sink interface {
	Report(fraction float64)
}

// Func adapts a plain function to the Sink interface.
type Func func(fraction float64)

// Report calls f.
func (f Func) Report(fraction float64) {
	f(fraction)
}

// Discard is a Sink that drops every report.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(float64) {}

// The zero value of an atomic.Bool is false, so we store the toggle inverted
// to keep the documented default (enabled) without an init function.
var disabled atomic.Bool

// Enabled returns the process-wide default for progress reporting. Runs read
// it at call time when their configuration does not say otherwise.
func Enabled() bool {
	return !disabled.Load()
}

// SetEnabled changes the process-wide default. Only future runs are affected;
// runs already in flight keep the value they resolved at start.
func SetEnabled(v bool) {
	disabled.Store(!v)
}

// LogSink reports progress through logrus, at most once per whole percent.
type LogSink struct {
	entry *logrus.Entry
	last  int
}

// NewLogSink returns a LogSink labeled with the given run name.
func NewLogSink(name string) *LogSink {
	if name == "" {
		name = "sample"
	}
	return &LogSink{
		entry: logrus.WithField("run", name),
		last:  -1,
	}
}

// Report logs the fraction as a percentage, skipping repeats of the same
// whole percent.
func (s *LogSink) Report(fraction float64) {
	pct := int(fraction * 100)
	if pct == s.last {
		return
	}
	s.last = pct
	s.entry.Infof("Progress %3d%%", pct)
}

// ExpvarSink publishes the most recent fraction to an expvar Float, making
// run progress visible through the debug/vars HTTP handler.
type ExpvarSink struct {
	v *expvar.Float
}

// NewExpvarSink returns a sink that writes to the given published Float.
func NewExpvarSink(v *expvar.Float) *ExpvarSink {
	return &ExpvarSink{v: v}
}

// Report stores the fraction.
func (s *ExpvarSink) Report(fraction float64) {
	s.v.Set(fraction)
}
