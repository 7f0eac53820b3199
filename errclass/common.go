//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop errclass/unix.go, errclass/windows.go
// (platform errno tables) generalized with a shared classification entry
// point, following the same split the teacher package uses between the
// platform-specific errno constants and the OS-independent matching logic.
//

// Package errclass classifies network errors into short categorical labels
// (e.g. "ETIMEDOUT", "ECONNRESET") suitable for structured logging and
// systematic analysis of dataplane failures, without requiring every layer
// of the runtime to exhaustively type-switch on error values.
package errclass

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// Known classification labels.
const (
	EADDRNOTAVAIL   = "EADDRNOTAVAIL"
	EADDRINUSE      = "EADDRINUSE"
	ECONNABORTED    = "ECONNABORTED"
	ECONNREFUSED    = "ECONNREFUSED"
	ECONNRESET      = "ECONNRESET"
	EHOSTUNREACH    = "EHOSTUNREACH"
	EINVAL          = "EINVAL"
	EINTR           = "EINTR"
	ENETDOWN        = "ENETDOWN"
	ENETUNREACH     = "ENETUNREACH"
	ENOBUFS         = "ENOBUFS"
	ENOTCONN        = "ENOTCONN"
	EPROTONOSUPPORT = "EPROTONOSUPPORT"
	ETIMEDOUT       = "ETIMEDOUT"
	EOF             = "EOF"
	ECANCELED       = "ECANCELED"
	EGENERIC        = "EGENERIC"
)

// errnoTable maps platform errno values to their classification label. The
// errno constants it is keyed by are defined in the platform-specific
// unix.go/windows.go files.
var errnoTable = map[syscall.Errno]string{
	errEADDRNOTAVAIL:   EADDRNOTAVAIL,
	errEADDRINUSE:      EADDRINUSE,
	errECONNABORTED:    ECONNABORTED,
	errECONNREFUSED:    ECONNREFUSED,
	errECONNRESET:      ECONNRESET,
	errEHOSTUNREACH:    EHOSTUNREACH,
	errEINVAL:          EINVAL,
	errEINTR:           EINTR,
	errENETDOWN:        ENETDOWN,
	errENETUNREACH:     ENETUNREACH,
	errENOBUFS:         ENOBUFS,
	errENOTCONN:        ENOTCONN,
	errEPROTONOSUPPORT: EPROTONOSUPPORT,
	errETIMEDOUT:       ETIMEDOUT,
}

// New classifies err into one of the labels declared above, returning "" for
// a nil error and [EGENERIC] for an error that matches none of the known
// patterns.
func New(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, io.EOF) {
		return EOF
	}
	if errors.Is(err, context.Canceled) {
		return ECANCELED
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ETIMEDOUT
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ETIMEDOUT
	}
	if errors.Is(err, net.ErrClosed) {
		return ECONNABORTED
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if label, ok := errnoTable[errno]; ok {
			return label
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}

	return EGENERIC
}
