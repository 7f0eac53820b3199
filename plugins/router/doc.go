//
// SPDX-License-Identifier: GPL-3.0-or-later
//

// Package router implements the "router" sample plugin: a StreamOutbound
// access point that dispatches by domain-suffix rule to one of several
// named outbound descriptors, falling back to a late-bound default —
// grounding spec.md §8 scenario 2 and the cycle-breaking pattern of §9
// (a late default descriptor lets the default target itself route back
// through this router without forming a strict cycle).
//
// Adapted from: other_examples mosdns forward plugin (rule-ordered dispatch
// to a named upstream) generalized from a fixed upstream list into the
// loader's dynamic-descriptor mechanism.
package router
