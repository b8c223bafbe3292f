// Package ir provides the value model shared by filters and stored records.
//
// This package contains value types and their codecs only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Object is ordered. Member order is the author's order and is
//     observable (the relational translator emits standalone predicates in
//     key order).
//   - Decoding never goes through map[string]any, which would lose order.
//     JSON and YAML are decoded from yaml.v3 nodes, CUE from cue.Value
//     field iterators.
//   - Canonical JSON (sorted keys, NFC strings) is used only for storage.
package ir
