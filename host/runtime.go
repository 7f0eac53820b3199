//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package host

import (
	"context"
	"errors"
	"sync"

	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
	"github.com/ytflowcore/ytflowcore/wire"
)

// ErrAlreadyLoaded is returned by [Runtime.Load] when a profile is already
// running; spec.md doesn't define hot-reload, so one runtime handle loads
// at most one profile at a time.
var ErrAlreadyLoaded = errors.New("host: runtime already has a loaded profile")

// ErrNotLoaded is returned by [Runtime.Stop] when no profile was loaded.
var ErrNotLoaded = errors.New("host: no profile is loaded")

// Runtime is the process-facing handle spec.md §6 calls `runtime_new`'s
// return value: it owns a [kernel.Runtime] and, once [Runtime.Load]
// succeeds, the [wire.LoadedProfile] currently running on it.
type Runtime struct {
	Kernel   *kernel.Runtime
	Registry *plugin.Registry

	loader *wire.Loader

	mu     sync.Mutex
	loaded *wire.LoadedProfile
}

// New implements spec.md §6's `runtime_new`: it builds a [Runtime] wired to
// reg for plugin lookups, with cfg (or [kernel.NewConfig] defaults)
// governing the kernel's buffer pool, connection table, and timers.
func New(cfg *kernel.Config, reg *plugin.Registry) *Runtime {
	if cfg == nil {
		cfg = kernel.NewConfig()
	}
	k := kernel.New(cfg)
	loader := wire.NewLoader(reg)
	loader.Kernel = k
	return &Runtime{
		Kernel:   k,
		Registry: reg,
		loader:   loader,
	}
}

// Start launches the kernel's background goroutines. Must be called before
// [Runtime.Load].
func (r *Runtime) Start(ctx context.Context) {
	r.Kernel.Start(ctx)
}

// Load implements spec.md §6's `runtime_load`: it runs the full wiring
// algorithm ([wire.Loader.Load]) against p and, on success, publishes the
// profile's entry access points for traffic admission. On failure, no
// partially constructed plugin is left running and rt's prior state (if
// any) is untouched.
func (r *Runtime) Load(p *plugin.Profile) (*wire.LoadedProfile, *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded != nil {
		return nil, classify(ErrAlreadyLoaded)
	}

	loaded, err := r.loader.Load(p)
	if err != nil {
		return nil, classify(err)
	}
	r.loaded = loaded
	return loaded, nil
}

// EntryAccessPoints returns the currently loaded profile's entry access
// points, or nil if no profile is loaded.
func (r *Runtime) EntryAccessPoints() []plugin.AccessPoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded == nil {
		return nil
	}
	return r.loaded.EntryAPs
}

// Stop implements spec.md §6's `runtime_stop`: it drains in-flight flows
// up to the kernel's configured graceful shutdown deadline (aborting any
// stragglers), then tears down every plugin instance in reverse build
// order. Admission is not closed first: plugins can still admit new flows
// into the kernel while it drains, until their instances are closed.
func (r *Runtime) Stop(ctx context.Context) *Result {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()

	if loaded == nil {
		return classify(ErrNotLoaded)
	}

	kernelErr := r.Kernel.Stop(ctx)
	closeErr := loaded.Close()

	r.mu.Lock()
	r.loaded = nil
	r.mu.Unlock()

	if kernelErr != nil {
		return classify(kernelErr)
	}
	return classify(closeErr)
}

// Free implements spec.md §6's `runtime_free`: idempotent final cleanup,
// safe to call whether or not [Runtime.Stop] already ran.
func (r *Runtime) Free() *Result {
	r.mu.Lock()
	loaded := r.loaded
	r.loaded = nil
	r.mu.Unlock()

	if loaded == nil {
		return nil
	}
	return classify(loaded.Close())
}

// Verify implements spec.md §6's `plugin_verify`: schema and structural
// validation of param against kind/version, without any I/O.
func (r *Runtime) Verify(kind string, version uint16, param []byte) *Result {
	return classify(r.Registry.Verify(kind, version, param))
}
