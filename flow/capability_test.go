// SPDX-License-Identifier: GPL-3.0-or-later

package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityKindValid(t *testing.T) {
	valid := []CapabilityKind{
		StreamInbound, StreamOutbound, DatagramInbound, DatagramOutbound, ResolverCap, Netif,
	}
	for _, k := range valid {
		assert.True(t, k.Valid(), "expected %s to be valid", k)
	}

	assert.False(t, CapabilityKind("bogus").Valid())
	assert.Equal(t, "resolver", ResolverCap.String())
}
