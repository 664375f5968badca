// Package metrics tracks in-process execution counters served by /api/stats.
package metrics

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Metrics is safe for concurrent use by many executions.
type Metrics struct {
	started       *xsync.Counter
	completed     *xsync.Counter
	timeouts      *xsync.Counter
	compileErrors *xsync.Counter
	inFlight      *xsync.Counter
}

func New() *Metrics {
	return &Metrics{
		started:       xsync.NewCounter(),
		completed:     xsync.NewCounter(),
		timeouts:      xsync.NewCounter(),
		compileErrors: xsync.NewCounter(),
		inFlight:      xsync.NewCounter(),
	}
}

// RunStarted records one runtime process spawn attempt.
func (m *Metrics) RunStarted() {
	m.started.Inc()
	m.inFlight.Inc()
}

// RunFinished records the end of a run, whatever its outcome.
func (m *Metrics) RunFinished() {
	m.completed.Inc()
	m.inFlight.Dec()
}

// Timeout records a run killed by the deadline timer.
func (m *Metrics) Timeout() {
	m.timeouts.Inc()
}

// CompileError records a submission rejected by the compiler.
func (m *Metrics) CompileError() {
	m.compileErrors.Inc()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Started       int64 `json:"started"`
	Completed     int64 `json:"completed"`
	Timeouts      int64 `json:"timeouts"`
	CompileErrors int64 `json:"compileErrors"`
	InFlight      int64 `json:"inFlight"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Started:       m.started.Value(),
		Completed:     m.completed.Value(),
		Timeouts:      m.timeouts.Value(),
		CompileErrors: m.compileErrors.Value(),
		InFlight:      m.inFlight.Value(),
	}
}
