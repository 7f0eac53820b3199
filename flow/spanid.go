//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop spanid.go.
//

package flow

import "github.com/google/uuid"

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way: a TLS handshake to an outbound endpoint, a single DNS exchange, one
// flow's lifetime from entry accept to teardown. Use the returned ID to
// correlate structured log records across the pipeline stages a flow
// passes through (see [Context.CorrelationID], which is seeded from this
// function).
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id.String()
}
