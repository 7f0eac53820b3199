//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package host

import (
	"errors"
	"fmt"
	"net"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/plugin"
	"github.com/ytflowcore/ytflowcore/wire"
)

// ResultKind names the coarse error taxonomy spec.md §7 asks a surrounding
// host to distinguish: Config vs Resource vs Protocol vs Flow vs Internal.
type ResultKind string

const (
	KindConfig   ResultKind = "config"
	KindResource ResultKind = "resource"
	KindProtocol ResultKind = "protocol"
	KindFlow     ResultKind = "flow"
	KindInternal ResultKind = "internal"
)

// Result is the FFI-facing tagged failure shape of spec.md §7: a kind, a
// human-readable message, and a free-form detail string (typically a
// "plugin.field" path). A nil *Result means success.
type Result struct {
	Kind    ResultKind
	Message string
	Detail  string
}

func (r *Result) Error() string {
	if r.Detail != "" {
		return fmt.Sprintf("host: %s: %s (%s)", r.Kind, r.Message, r.Detail)
	}
	return fmt.Sprintf("host: %s: %s", r.Kind, r.Message)
}

// classify maps an internal error from the loader or kernel into the
// [Result] taxonomy a surrounding host needs, so callers never have to
// reach into wire/plugin/kernel error types directly.
func classify(err error) *Result {
	if err == nil {
		return nil
	}

	var cerr *wire.ConfigError
	if errors.As(err, &cerr) {
		return &Result{Kind: KindConfig, Message: fmt.Sprintf("%s: %s", cerr.Kind, cerr.Reason), Detail: detailPath(cerr.PluginName, cerr.Field)}
	}

	var serr *plugin.SchemaError
	if errors.As(err, &serr) {
		return &Result{Kind: KindConfig, Message: serr.Reason, Detail: serr.Field}
	}

	var ferr *plugin.FactoryError
	if errors.As(err, &ferr) {
		kind := KindConfig
		var opErr *net.OpError
		if ferr.Err != nil && errors.As(ferr.Err, &opErr) {
			kind = KindResource
		}
		return &Result{Kind: kind, Message: ferr.Reason, Detail: ferr.PluginName}
	}

	if errors.Is(err, flow.ErrEOF) || errors.Is(err, flow.ErrReset) ||
		errors.Is(err, flow.ErrCancelled) || errors.Is(err, flow.ErrTimeout) {
		return &Result{Kind: KindFlow, Message: err.Error()}
	}

	var ioErr *flow.IOError
	if errors.As(err, &ioErr) {
		return &Result{Kind: KindFlow, Message: err.Error(), Detail: ioErr.Kind}
	}

	return &Result{Kind: KindInternal, Message: err.Error()}
}

func detailPath(pluginName, field string) string {
	switch {
	case pluginName != "" && field != "":
		return pluginName + "." + field
	case pluginName != "":
		return pluginName
	default:
		return ""
	}
}
