//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop observeconn.go (wrapper-owns-resource idiom
// applied here to a byte region instead of a net.Conn).
//

package flow

// Buffer is a byte region with configurable headroom and tailroom so
// downstream codecs can prepend headers or append trailers without
// reallocating or copying.
//
// A Buffer is typically obtained from a pool (see package kernel) and
// returned to it on release; callers must not retain a reference to the
// backing array after releasing it.
type Buffer struct {
	// data is the full backing array.
	data []byte

	// off is the start offset of the logical payload within data.
	off int

	// end is the end offset (exclusive) of the logical payload within data.
	end int

	// release, if non-nil, returns the buffer to its owning pool.
	release func()
}

// NewBuffer wraps data as a [Buffer] with no headroom/tailroom reserved and
// no pool affiliation. Useful for tests and for adapting ad-hoc byte slices.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data, off: 0, end: len(data)}
}

// newPooledBuffer constructs a [Buffer] over a pool-owned backing array,
// reserving headroom bytes at the front before the logical payload begins.
// Callers outside package flow reach it through [NewPooledBuffer].
func newPooledBuffer(backing []byte, headroom int, release func()) *Buffer {
	return &Buffer{data: backing, off: headroom, end: headroom, release: release}
}

// NewPooledBuffer is the constructor hook used by package kernel's buffer
// pool. It is exported here (rather than requiring flow to import kernel)
// so the pool can produce values of the concrete [Buffer] type.
func NewPooledBuffer(backing []byte, headroom int, release func()) *Buffer {
	return newPooledBuffer(backing, headroom, release)
}

// Bytes returns the logical payload (no headroom/tailroom included).
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:b.end]
}

// Len returns the length of the logical payload.
func (b *Buffer) Len() int {
	return b.end - b.off
}

// Headroom returns the number of unused bytes available before the payload.
func (b *Buffer) Headroom() int {
	return b.off
}

// Tailroom returns the number of unused bytes available after the payload.
func (b *Buffer) Tailroom() int {
	return len(b.data) - b.end
}

// Prepend writes header into the headroom immediately before the current
// payload, growing the logical payload to include it. It panics if
// len(header) exceeds the available headroom: callers should size buffers
// (or check [Buffer.Headroom]) before calling this.
func (b *Buffer) Prepend(header []byte) {
	if len(header) > b.Headroom() {
		panic("flow: not enough headroom to prepend")
	}
	b.off -= len(header)
	copy(b.data[b.off:], header)
}

// Append writes trailer into the tailroom immediately after the current
// payload, growing the logical payload to include it. It panics if
// len(trailer) exceeds the available tailroom.
func (b *Buffer) Append(trailer []byte) {
	if len(trailer) > b.Tailroom() {
		panic("flow: not enough tailroom to append")
	}
	n := copy(b.data[b.end:], trailer)
	b.end += n
}

// Grow extends the logical payload by n bytes taken from the tailroom and
// returns the newly exposed slice for the caller to fill (e.g. via a Read
// into it). It panics if n exceeds the available tailroom.
func (b *Buffer) Grow(n int) []byte {
	if n > b.Tailroom() {
		panic("flow: not enough tailroom to grow")
	}
	start := b.end
	b.end += n
	return b.data[start:b.end]
}

// TrimFront consumes n bytes from the front of the payload, e.g. after a
// caller has parsed and handled a header. It panics if n exceeds the
// current payload length.
func (b *Buffer) TrimFront(n int) {
	if n > b.Len() {
		panic("flow: trim exceeds buffer length")
	}
	b.off += n
}

// Shrink gives back n bytes from the end of the payload, e.g. after a
// [Buffer.Grow] reservation sized for a hint turns out larger than what an
// actual read filled. It panics if n exceeds the current payload length.
func (b *Buffer) Shrink(n int) {
	if n > b.Len() {
		panic("flow: shrink exceeds buffer length")
	}
	b.end -= n
}

// Release returns the buffer to its owning pool, if any. The release hook
// runs at most once per Buffer: Release clears it after the first call, so
// later calls are no-ops. Release is not safe for concurrent calls on the
// same Buffer; kernel's pool additionally guards its hook with an atomic
// flag.
func (b *Buffer) Release() {
	if b.release != nil {
		b.release()
		b.release = nil
	}
}
