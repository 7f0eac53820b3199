//
// SPDX-License-Identifier: GPL-3.0-or-later
//

package dnsserver

import (
	"fmt"
	"net/netip"
	"strings"
)

// parseRecords reads the dns-server's flat "record_count"/"record_N_name"/
// "record_N_addr" param encoding into a lowercase-name-to-address table.
func parseRecords(param map[string]any) (map[string]netip.Addr, error) {
	count, err := paramInt(param, "record_count", 0)
	if err != nil {
		return nil, err
	}

	records := make(map[string]netip.Addr, count)
	for i := 0; i < count; i++ {
		nameKey := fmt.Sprintf("record_%d_name", i)
		addrKey := fmt.Sprintf("record_%d_addr", i)

		rawName, ok := param[nameKey]
		if !ok {
			return nil, fmt.Errorf("dnsserver: field %q: required field missing", nameKey)
		}
		name, ok := rawName.(string)
		if !ok {
			return nil, fmt.Errorf("dnsserver: field %q: expected string, got %T", nameKey, rawName)
		}

		rawAddr, ok := param[addrKey]
		if !ok {
			return nil, fmt.Errorf("dnsserver: field %q: required field missing", addrKey)
		}
		addrStr, ok := rawAddr.(string)
		if !ok {
			return nil, fmt.Errorf("dnsserver: field %q: expected string, got %T", addrKey, rawAddr)
		}
		addr, err := netip.ParseAddr(addrStr)
		if err != nil {
			return nil, fmt.Errorf("dnsserver: field %q: %w", addrKey, err)
		}

		records[strings.ToLower(strings.TrimSuffix(name, "."))] = addr
	}
	return records, nil
}

func paramInt(param map[string]any, key string, def int) (int, error) {
	raw, ok := param[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("dnsserver: field %q: expected int, got %T", key, raw)
	}
}
