//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop's Config-driven construction plus
// cancelwatch.go/observeconn.go's resource-lifecycle idioms, composed here
// into the single object spec.md §4.4 calls the runtime kernel.
//

package kernel

import (
	"context"
	"log/slog"
	"time"
)

// Runtime is the live dataplane kernel: a buffer pool, connection table,
// timer wheel, worker pool, and I/O observer, constructed once from a
// [Config] and shared by every loaded plugin instance (spec.md §4.4).
type Runtime struct {
	Config  *Config
	Buffers *BufferPool
	Conns   *ConnTable
	Timers  *TimerWheel
	Workers *WorkerPool
	Observe *ObserveFlowFunc

	wheelCancel context.CancelFunc
}

// New constructs a [*Runtime] from cfg. The returned Runtime is inert until
// [Runtime.Start] is called; no goroutines run before then.
func New(cfg *Config) *Runtime {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &Runtime{
		Config:  cfg,
		Buffers: NewBufferPool(cfg.BufferSizeClasses, cfg.BufferHeadroom),
		Conns:   NewConnTable(cfg.ConnTableHighWaterMark),
		Timers:  NewTimerWheel(cfg.TimerResolution, 512),
		Workers: NewWorkerPool(cfg.WorkerPoolSize),
		Observe: NewObserveFlowFunc(cfg),
	}
}

// Start launches the kernel's background goroutines (currently just the
// timer wheel's tick loop). Start must be called at most once per Runtime.
func (k *Runtime) Start(ctx context.Context) {
	wheelCtx, cancel := context.WithCancel(ctx)
	k.wheelCancel = cancel
	go k.Timers.Run(wheelCtx)
	k.Config.Logger.Info("runtimeStart", slog.Time("t", k.Config.TimeNow()))
}

// Admit registers a newly constructed flow in the connection table,
// returning [ErrTableFull] if the kernel is already at its high-water mark
// (spec.md §4.4 "Connection table").
func (k *Runtime) Admit(entry ConnEntry) error {
	if err := k.Conns.Insert(entry); err != nil {
		return err
	}
	k.Config.Logger.Info("flowAdmitted",
		slog.String("flowId", entry.FlowID),
		slog.String("owner", entry.Owner),
		slog.Time("t", k.Config.TimeNow()),
	)
	return nil
}

// Release removes flowID from the connection table once its owning plugin
// has finished tearing it down.
func (k *Runtime) Release(flowID string) {
	k.Conns.Remove(flowID)
	k.Config.Logger.Info("flowReleased",
		slog.String("flowId", flowID),
		slog.Time("t", k.Config.TimeNow()),
	)
}

// Stop waits for in-flight flows to drain, polling at the kernel's timer
// resolution, up to [Config.GracefulShutdownDeadline]. Any flow still
// admitted once the deadline elapses is aborted via [ConnTable.CancelAll]
// and Stop returns [ErrShutdownTimeout]; a clean drain returns nil. Before
// returning, Stop cancels the timer wheel's tick loop; it does not wait for
// that goroutine to exit. Stop does not block [Runtime.Admit], so new flows
// can still be admitted while it drains.
func (k *Runtime) Stop(ctx context.Context) error {
	defer func() {
		if k.wheelCancel != nil {
			k.wheelCancel()
		}
	}()

	deadline := time.NewTimer(k.Config.GracefulShutdownDeadline)
	defer deadline.Stop()

	poll := time.NewTicker(k.Config.TimerResolution)
	defer poll.Stop()

	for {
		if k.Conns.Len() == 0 {
			k.Config.Logger.Info("runtimeStop", slog.String("result", "drained"), slog.Time("t", k.Config.TimeNow()))
			return nil
		}
		select {
		case <-ctx.Done():
			k.Conns.CancelAll()
			return ctx.Err()
		case <-deadline.C:
			k.Conns.CancelAll()
			k.Config.Logger.Info("runtimeStop", slog.String("result", "timeout"), slog.Time("t", k.Config.TimeNow()))
			return ErrShutdownTimeout
		case <-poll.C:
			// loop and recheck drain state
		}
	}
}
