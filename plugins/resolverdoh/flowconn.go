//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop httpconn.go (HTTPConn owning a transport
// connection for RoundTrip), generalized here into the reverse direction:
// wrapping a [flow.StreamFlow] as a net.Conn so the standard HTTP/2
// transport can dial through it.
//

package resolverdoh

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/ytflowcore/ytflowcore/flow"
)

// flowConn adapts a [flow.StreamFlow] into a net.Conn so golang.org/x/net/http2's
// Transport can use a plugin-provided transport as its dial target.
//
// Deadlines set via SetDeadline/SetReadDeadline/SetWriteDeadline are
// accepted and ignored: every Receive/Transmit call already
// runs under the flow's own [flow.Context], whose deadline the runtime
// kernel controls end-to-end, so duplicating a second deadline layer here
// would only risk the two disagreeing.
type flowConn struct {
	sf      flow.StreamFlow
	fctx    *flow.Context
	pending []byte
}

func newFlowConn(fctx *flow.Context, sf flow.StreamFlow) *flowConn {
	return &flowConn{sf: sf, fctx: fctx}
}

func (c *flowConn) Read(b []byte) (int, error) {
	if len(c.pending) == 0 {
		buf, err := c.sf.Receive(c.fctx.Ctx())
		if err != nil {
			return 0, translateReadErr(err)
		}
		c.pending = append([]byte(nil), buf.Bytes()...)
		buf.Release()
	}
	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *flowConn) Write(b []byte) (int, error) {
	if err := c.sf.Transmit(c.fctx.Ctx(), flow.NewBuffer(append([]byte(nil), b...))); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *flowConn) Close() error { return c.sf.Abort() }

func (c *flowConn) LocalAddr() net.Addr  { return flowAddr{} }
func (c *flowConn) RemoteAddr() net.Addr { return flowAddr{} }

func (c *flowConn) SetDeadline(t time.Time) error      { return nil }
func (c *flowConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *flowConn) SetWriteDeadline(t time.Time) error { return nil }

// flowAddr is a placeholder net.Addr: the flow's real endpoint lives in its
// [flow.Context], not in a net.Conn address pair.
type flowAddr struct{}

func (flowAddr) Network() string { return "flow" }
func (flowAddr) String() string  { return "flow" }

func translateReadErr(err error) error {
	if errors.Is(err, flow.ErrEOF) {
		return io.EOF
	}
	return err
}
