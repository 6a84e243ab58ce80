// Package progress provides the cooperative progress and cancellation
// collaborator polled by long enumerations.
package progress

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Monitor exposes cancellation and progress reporting. Implementations are
// purely cooperative: they never stop work on their own.
type Monitor interface {
	IsCanceled() bool
	SubTask(label string)
	Worked(units int)
}

// ContextMonitor reports cancellation from a context and logs sub-tasks.
type ContextMonitor struct {
	ctx    context.Context
	logger *slog.Logger
	done   atomic.Int64
}

// NewMonitor creates a monitor bound to ctx.
// If logger is nil, a discard logger is used.
func NewMonitor(ctx context.Context, logger *slog.Logger) *ContextMonitor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContextMonitor{ctx: ctx, logger: logger}
}

// IsCanceled reports whether the context is done.
func (m *ContextMonitor) IsCanceled() bool {
	return m.ctx.Err() != nil
}

// SubTask labels the current unit of work.
func (m *ContextMonitor) SubTask(label string) {
	m.logger.Debug("progress", slog.String("task", label), slog.Int64("done", m.done.Load()))
}

// Worked records completed units.
func (m *ContextMonitor) Worked(units int) {
	m.done.Add(int64(units))
}

// Done returns the number of completed units.
func (m *ContextMonitor) Done() int64 {
	return m.done.Load()
}

type nopMonitor struct{}

func (nopMonitor) IsCanceled() bool { return false }
func (nopMonitor) SubTask(string)   {}
func (nopMonitor) Worked(int)       {}

// Nop returns a monitor that is never canceled.
func Nop() Monitor {
	return nopMonitor{}
}

// OrNop returns m, or a no-op monitor when m is nil.
func OrNop(m Monitor) Monitor {
	if m == nil {
		return Nop()
	}
	return m
}
