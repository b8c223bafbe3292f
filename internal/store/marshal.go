package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
)

// marshalData converts an ir.Object to canonical JSON TEXT for storage.
// Canonical form keeps stored documents byte-identical for equal data,
// and json_extract output on arrays comparable to a canonical operand.
func marshalData(data ir.Object) (string, error) {
	if data == nil {
		return "{}", nil
	}
	out, err := ir.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	return string(out), nil
}

// unmarshalData parses canonical JSON TEXT to an ir.Object.
func unmarshalData(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	var obj ir.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	return obj, nil
}

// joinLabels normalizes labels (sorted, de-duplicated, empty labels
// dropped) and joins them with commas. Labels may not contain commas.
func joinLabels(labels []string) (string, error) {
	normalized, err := normalizeLabels(labels)
	if err != nil {
		return "", err
	}
	return strings.Join(normalized, ","), nil
}

func normalizeLabels(labels []string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if strings.Contains(l, ",") {
			return nil, fmt.Errorf("label %q contains a comma", l)
		}
		out = append(out, l)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// splitLabels reverses joinLabels.
func splitLabels(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
