// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	buf := NewBuffer([]byte("hello"))
	assert.Equal(t, "hello", string(buf.Bytes()))
	assert.Equal(t, 5, buf.Len())
	assert.Equal(t, 0, buf.Headroom())
	assert.Equal(t, 0, buf.Tailroom())
}

func TestPooledBufferHeadroomTailroom(t *testing.T) {
	backing := make([]byte, 32)
	released := false
	buf := NewPooledBuffer(backing, 8, func() { released = true })

	require.Equal(t, 8, buf.Headroom())
	require.Equal(t, 24, buf.Tailroom())
	require.Equal(t, 0, buf.Len())

	payload := buf.Grow(10)
	copy(payload, "0123456789")
	assert.Equal(t, "0123456789", string(buf.Bytes()))
	assert.Equal(t, 14, buf.Tailroom())

	buf.Prepend([]byte("HDR"))
	assert.Equal(t, "HDR0123456789", string(buf.Bytes()))
	assert.Equal(t, 5, buf.Headroom())

	buf.Append([]byte("TRL"))
	assert.Equal(t, "HDR0123456789TRL", string(buf.Bytes()))

	buf.TrimFront(3)
	assert.Equal(t, "0123456789TRL", string(buf.Bytes()))

	buf.Release()
	assert.True(t, released)
}

func TestBufferPrependPanicsWithoutHeadroom(t *testing.T) {
	buf := NewBuffer([]byte("payload"))
	assert.Panics(t, func() {
		buf.Prepend([]byte("x"))
	})
}

func TestBufferAppendPanicsWithoutTailroom(t *testing.T) {
	buf := NewBuffer([]byte("payload"))
	assert.Panics(t, func() {
		buf.Append([]byte("x"))
	})
}

func TestBufferGrowPanicsBeyondTailroom(t *testing.T) {
	backing := make([]byte, 4)
	buf := NewPooledBuffer(backing, 0, nil)
	assert.Panics(t, func() {
		buf.Grow(5)
	})
}

func TestBufferTrimFrontPanicsBeyondLength(t *testing.T) {
	buf := NewBuffer([]byte("ab"))
	assert.Panics(t, func() {
		buf.TrimFront(3)
	})
}

func TestBufferReleaseIsSafeWithoutPool(t *testing.T) {
	buf := NewBuffer([]byte("x"))
	assert.NotPanics(t, func() {
		buf.Release()
		buf.Release()
	})
}
