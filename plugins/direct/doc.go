//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package direct implements the "direct-outbound" sample plugin: a
// StreamOutbound access point with no descriptors, grounding spec.md §8
// scenario 1's loopback echo stream.
package direct
