// SPDX-License-Identifier: GPL-3.0-or-later

package errclass

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "", New(nil))
	})

	t.Run("eof", func(t *testing.T) {
		assert.Equal(t, EOF, New(io.EOF))
	})

	t.Run("context canceled", func(t *testing.T) {
		assert.Equal(t, ECANCELED, New(context.Canceled))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		assert.Equal(t, ETIMEDOUT, New(context.DeadlineExceeded))
	})

	t.Run("closed connection", func(t *testing.T) {
		assert.Equal(t, ECONNABORTED, New(net.ErrClosed))
	})

	t.Run("unknown error", func(t *testing.T) {
		assert.Equal(t, EGENERIC, New(errors.New("something else")))
	})
}
