// SPDX-License-Identifier: GPL-3.0-or-later

package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptorRef(t *testing.T) {
	ref, err := ParseDescriptorRef("router.default")
	require.NoError(t, err)
	assert.Equal(t, "router", ref.PluginName)
	assert.Equal(t, "default", ref.APName)
	assert.Equal(t, "router.default", ref.String())
}

func TestParseDescriptorRefMalformed(t *testing.T) {
	cases := []string{"", "noDot", ".ap", "plugin.", "plugin"}
	for _, c := range cases {
		_, err := ParseDescriptorRef(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}
