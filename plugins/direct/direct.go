//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package direct

import (
	"errors"

	"github.com/ytflowcore/ytflowcore/flow"
	"github.com/ytflowcore/ytflowcore/kernel"
	"github.com/ytflowcore/ytflowcore/plugin"
)

// errStreamUsesReceive is returned by [echoFlow.CommitReceive]: the tickets
// the stub mints are never fulfilled by a commit, since Receive reads
// straight from the stub's internal channel.
var errStreamUsesReceive = errors.New("direct: echo flow only supports Receive, not a separate commit")

// Factory builds "direct-outbound" instances: a single StreamOutbound
// access point named "out" that exposes [echoFlow] stubs, with no
// descriptors of its own.
type Factory struct {
	plugin.BaseFactory
}

// NewFactory constructs the direct-outbound [Factory] for registration with
// a [plugin.Registry].
func NewFactory() *Factory {
	return &Factory{BaseFactory: plugin.BaseFactory{
		KindName: "direct-outbound",
		MinVer:   1,
		MaxVer:   1,
		Schema:   &plugin.ParamSchema{},
		APs:      []plugin.AccessPointSpec{{Name: "out", Kind: flow.StreamOutbound}},
	}}
}

// Build implements [plugin.Factory]. When rt is non-nil, every flow the
// instance produces is wrapped by rt's [kernel.ObserveFlowFunc], so the
// sample plugin's I/O shows up in the kernel's structured logs just like a
// real transport would.
func (f *Factory) Build(name string, version uint16, param []byte, bound map[string]plugin.AccessPoint, rt *kernel.Runtime) (plugin.Instance, error) {
	return &instance{name: name, rt: rt}, nil
}

type instance struct {
	name string
	rt   *kernel.Runtime
}

func (i *instance) AccessPoints() []plugin.AccessPoint {
	handle := plugin.StreamOutboundFunc(func(fctx *flow.Context, initial *flow.Buffer) (flow.StreamFlow, error) {
		f := newEchoFlow()
		if initial != nil && initial.Len() > 0 {
			f.data <- append([]byte(nil), initial.Bytes()...)
			initial.Release()
		}
		if i.rt != nil {
			return i.rt.Observe.Wrap(fctx, "echo", f), nil
		}
		return f, nil
	})
	return []plugin.AccessPoint{{PluginName: i.name, APName: "out", Kind: flow.StreamOutbound, Handle: handle}}
}

func (i *instance) BindLate(bound map[string]plugin.AccessPoint) error { return nil }

func (i *instance) Close() error { return nil }
