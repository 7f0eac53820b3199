// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import (
	"fmt"
	"strings"
)

// DescriptorRef is a parsed "plugin_name.ap_name" path as it appears in a
// plugin's decoded parameters, identifying the access point a descriptor
// should be bound to (spec.md §3 "Descriptor").
type DescriptorRef struct {
	PluginName string
	APName     string
}

// String renders the reference back to its "plugin_name.ap_name" form.
func (d DescriptorRef) String() string {
	return d.PluginName + "." + d.APName
}

// ParseDescriptorRef parses a "plugin_name.ap_name" string. The plugin name
// itself must not contain a dot; the access point name may not either,
// since both are matched against plugins' declared names.
func ParseDescriptorRef(s string) (DescriptorRef, error) {
	idx := strings.IndexByte(s, '.')
	if idx <= 0 || idx == len(s)-1 || strings.IndexByte(s[idx+1:], '.') >= 0 {
		return DescriptorRef{}, fmt.Errorf("plugin: malformed descriptor reference %q: want \"plugin.ap\"", s)
	}
	return DescriptorRef{PluginName: s[:idx], APName: s[idx+1:]}, nil
}
