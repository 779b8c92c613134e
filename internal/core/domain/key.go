package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// CanonicalKey derives the cache key for an operation invocation.
// Argument maps are serialized with lexicographically sorted keys, so the
// order in which arguments were supplied never affects the key.
// Format: <operation>:<16 hex digits of xxhash64(canonical JSON)>.
func CanonicalKey(operation string, args map[string]any) string {
	canonical := canonicalize(args)
	return fmt.Sprintf("%s:%016x", operation, xxhash.Sum64(canonical))
}

// ParseArguments decodes a JSON argument bag into its runtime representation.
// An empty document is treated as an empty bag.
func ParseArguments(argsJSON string) (map[string]any, error) {
	if argsJSON == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, zerr.Wrap(err, "failed to parse argument JSON")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// canonicalize produces a deterministic JSON encoding of v.
// Maps are emitted with sorted keys; slices keep their order.
func canonicalize(v any) []byte {
	switch val := v.(type) {
	case nil:
		return []byte("null")
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		// Scalars encode deterministically on their own.
		b, err := json.Marshal(v)
		if err != nil {
			// Arguments arrive from json.Unmarshal, so every value is a
			// JSON-representable type and this branch is unreachable.
			return fmt.Appendf(nil, "%q", fmt.Sprint(v))
		}
		return b
	}
}

func canonicalizeMap(m map[string]any) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte("{")
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		kb, _ := json.Marshal(k)
		out = append(out, kb...)
		out = append(out, ':')
		out = append(out, canonicalize(m[k])...)
	}
	return append(out, '}')
}

func canonicalizeSlice(s []any) []byte {
	out := []byte("[")
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, canonicalize(v)...)
	}
	return append(out, ']')
}
