//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package host

import (
	"github.com/ytflowcore/ytflowcore/plugin"
	"github.com/ytflowcore/ytflowcore/plugins/direct"
	"github.com/ytflowcore/ytflowcore/plugins/dnsserver"
	"github.com/ytflowcore/ytflowcore/plugins/resolverdoh"
	"github.com/ytflowcore/ytflowcore/plugins/router"
	"github.com/ytflowcore/ytflowcore/plugins/socket"
)

// NewDefaultRegistry returns a [*plugin.Registry] with every sample plugin
// kind (spec.md §4.5) registered: socket-inbound, direct-outbound, router,
// dns-server, resolver-doh.
func NewDefaultRegistry() *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.Register(socket.NewFactory())
	reg.Register(direct.NewFactory())
	reg.Register(router.NewFactory())
	reg.Register(dnsserver.NewFactory())
	reg.Register(resolverdoh.NewFactory())
	return reg
}
