// SPDX-License-Identifier: GPL-3.0-or-later

package kernel

import "errors"

// ErrShutdownTimeout is returned by [Runtime.Stop] when in-flight flows do
// not drain before the configured graceful shutdown deadline elapses; Stop
// still aborts every remaining flow before returning it.
var ErrShutdownTimeout = errors.New("kernel: graceful shutdown deadline exceeded")
