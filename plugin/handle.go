// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import "github.com/ytflowcore/ytflowcore/flow"

// StreamOutboundFunc is the concrete shape of an [AccessPoint.Handle] whose
// Kind is [flow.StreamOutbound]: given flow metadata and optional initial
// data, it returns a live [flow.StreamFlow].
type StreamOutboundFunc func(fctx *flow.Context, initial *flow.Buffer) (flow.StreamFlow, error)

// StreamInboundSink is the concrete shape of an [AccessPoint.Handle] whose
// Kind is [flow.StreamInbound]: producers push a live flow into the sink
// rather than requesting one from it.
type StreamInboundSink func(fctx *flow.Context, sf flow.StreamFlow) error

// DatagramOutboundFunc is the concrete shape of an [AccessPoint.Handle]
// whose Kind is [flow.DatagramOutbound].
type DatagramOutboundFunc func(fctx *flow.Context) (flow.DatagramSession, error)

// DatagramInboundSink is the concrete shape of an [AccessPoint.Handle]
// whose Kind is [flow.DatagramInbound].
type DatagramInboundSink func(fctx *flow.Context, ds flow.DatagramSession) error

// AsStreamOutbound type-asserts ap.Handle into a [StreamOutboundFunc],
// returning ok=false if the access point's handle does not match its
// declared [flow.CapabilityKind] — an invariant the loader guarantees for
// any AP it successfully published, but which callers outside the loader
// (e.g. tests constructing an [AccessPoint] by hand) should still check.
func AsStreamOutbound(ap AccessPoint) (StreamOutboundFunc, bool) {
	f, ok := ap.Handle.(StreamOutboundFunc)
	return f, ok
}

// AsStreamInbound type-asserts ap.Handle into a [StreamInboundSink].
func AsStreamInbound(ap AccessPoint) (StreamInboundSink, bool) {
	f, ok := ap.Handle.(StreamInboundSink)
	return f, ok
}

// AsDatagramOutbound type-asserts ap.Handle into a [DatagramOutboundFunc].
func AsDatagramOutbound(ap AccessPoint) (DatagramOutboundFunc, bool) {
	f, ok := ap.Handle.(DatagramOutboundFunc)
	return f, ok
}

// AsDatagramInbound type-asserts ap.Handle into a [DatagramInboundSink].
func AsDatagramInbound(ap AccessPoint) (DatagramInboundSink, bool) {
	f, ok := ap.Handle.(DatagramInboundSink)
	return f, ok
}

// AsResolver type-asserts ap.Handle into a [flow.Resolver].
func AsResolver(ap AccessPoint) (flow.Resolver, bool) {
	r, ok := ap.Handle.(flow.Resolver)
	return r, ok
}
