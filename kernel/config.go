//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop config.go (Config-with-defaults
// constructor pattern), extended with the kernel-wide sizing knobs of
// spec.md §4.4.
//

package kernel

import (
	"time"

	"github.com/ytflowcore/ytflowcore/errclass"
	"github.com/ytflowcore/ytflowcore/flow"
)

// Default size classes for the kernel's [BufferPool], per spec.md §4.4.
const (
	DefaultSmallBufferSize  = 2 * 1024
	DefaultMediumBufferSize = 16 * 1024
	DefaultLargeBufferSize  = 64 * 1024

	// DefaultBufferHeadroom is reserved at the front of every pooled
	// buffer so a [flow.StreamFlow] can [flow.Buffer.Prepend] a protocol
	// header without reallocating.
	DefaultBufferHeadroom = 64

	// DefaultConnTableHighWaterMark bounds the number of concurrently
	// admitted flows before [ConnTable.Insert] starts returning
	// [ErrTableFull].
	DefaultConnTableHighWaterMark = 4096

	// DefaultGracefulShutdownDeadline bounds how long [Runtime.Stop]
	// waits for in-flight flows to drain before aborting them.
	DefaultGracefulShutdownDeadline = 10 * time.Second

	// DefaultTimerResolution is the tick granularity of the kernel's
	// [TimerWheel], satisfying spec.md §4.4's "at least 10ms resolution".
	DefaultTimerResolution = 10 * time.Millisecond

	// DefaultWorkerPoolSize bounds concurrent CPU-bound dispatch.
	DefaultWorkerPoolSize = 4
)

// Config holds common kernel configuration.
//
// Pass this to [New] to pre-wire dependencies. All fields have sensible
// defaults set by [NewConfig]. Fields are safe to override after
// construction but before first use; they must not be mutated
// concurrently with calls into the [Runtime].
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to a classifier backed by [errclass.New].
	ErrClassifier flow.ErrClassifier

	// Logger is used for kernel lifecycle and I/O observability events.
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// BufferSizeClasses are the pooled buffer sizes a [BufferPool] picks
	// from, smallest first.
	//
	// Set by [NewConfig] to {2 KiB, 16 KiB, 64 KiB}.
	BufferSizeClasses []int

	// BufferHeadroom is reserved at the front of every pooled buffer.
	//
	// Set by [NewConfig] to [DefaultBufferHeadroom].
	BufferHeadroom int

	// ConnTableHighWaterMark bounds concurrently admitted flows.
	//
	// Set by [NewConfig] to [DefaultConnTableHighWaterMark].
	ConnTableHighWaterMark int

	// GracefulShutdownDeadline bounds [Runtime.Stop]'s drain wait.
	//
	// Set by [NewConfig] to [DefaultGracefulShutdownDeadline].
	GracefulShutdownDeadline time.Duration

	// TimerResolution is the [TimerWheel]'s tick granularity.
	//
	// Set by [NewConfig] to [DefaultTimerResolution].
	TimerResolution time.Duration

	// WorkerPoolSize bounds concurrent CPU-bound dispatch.
	//
	// Set by [NewConfig] to [DefaultWorkerPoolSize].
	WorkerPoolSize int
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier:            flow.ErrClassifierFunc(errclass.New),
		Logger:                   DefaultSLogger(),
		TimeNow:                  time.Now,
		BufferSizeClasses:        []int{DefaultSmallBufferSize, DefaultMediumBufferSize, DefaultLargeBufferSize},
		BufferHeadroom:           DefaultBufferHeadroom,
		ConnTableHighWaterMark:   DefaultConnTableHighWaterMark,
		GracefulShutdownDeadline: DefaultGracefulShutdownDeadline,
		TimerResolution:          DefaultTimerResolution,
		WorkerPoolSize:           DefaultWorkerPoolSize,
	}
}
