// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"context"
	"sync"
	"time"
)

// Context carries per-flow metadata alongside a [context.Context] for
// cancellation and deadlines. It is the Go-idiomatic replacement for a
// bespoke cancellation token: cancelling the embedded context is how the
// runtime kernel propagates teardown to every suspension point in the
// flow's pipeline.
//
// A *Context is created once by the inbound plugin that admits the flow
// and passed by reference down the chain of outbound-style access points
// it traverses; plugins may read and write [Context.Hints] but must not
// replace the embedded [context.Context] or [Context.CorrelationID].
type Context struct {
	// ctx is the cancellation/deadline context for this flow.
	ctx context.Context

	// LocalAddr is the local endpoint of the flow, when known.
	LocalAddr string

	// RemoteAddr is the remote endpoint of the flow as seen by the
	// inbound plugin (may be a domain name or an IP).
	RemoteAddr Destination

	// CorrelationID uniquely identifies this flow across every log
	// record emitted while processing it. Seeded with [NewSpanID].
	CorrelationID string

	// CreatedAt is when the flow was admitted.
	CreatedAt time.Time

	mu    sync.Mutex
	hints map[string]any
}

// NewContext creates a new [*Context] wrapping ctx, stamped with a fresh
// correlation id and the current time.
func NewContext(ctx context.Context, remote Destination, now func() time.Time) *Context {
	if now == nil {
		now = time.Now
	}
	return &Context{
		ctx:           ctx,
		RemoteAddr:    remote,
		CorrelationID: NewSpanID(),
		CreatedAt:     now(),
		hints:         make(map[string]any),
	}
}

// Ctx returns the embedded [context.Context].
func (c *Context) Ctx() context.Context {
	return c.ctx
}

// WithCtx returns a shallow copy of c carrying a derived context (e.g. one
// produced by [context.WithTimeout]). The hints map is shared between the
// original and the copy since both describe the same logical flow.
func (c *Context) WithCtx(ctx context.Context) *Context {
	cp := *c
	cp.ctx = ctx
	return &cp
}

// SetHint stores an application-layer hint (SNI, sniffed HTTP host, etc.)
// in the flow's mutable key/value bag. Safe for concurrent use.
func (c *Context) SetHint(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hints[key] = value
}

// Hint retrieves a previously stored hint. Safe for concurrent use.
func (c *Context) Hint(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.hints[key]
	return v, ok
}

// SNI is a convenience accessor for the well-known "sni" hint.
func (c *Context) SNI() (string, bool) {
	v, ok := c.Hint("sni")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SniffedHost is a convenience accessor for the well-known "sniffedHost"
// hint (e.g. sniffed HTTP Host header).
func (c *Context) SniffedHost() (string, bool) {
	v, ok := c.Hint("sniffedHost")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
