package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flatten walks a decoded object-of-objects and collapses nested maps into
// dotted keys. Scalar leaves become their string form; composite leaves
// (arrays, mixed maps inside arrays) are re-encoded as JSON so the cast
// chain can recover them. An empty map key is the value of the parent key
// itself (see nest).
func flatten(src map[string]any, prefix string, out Mapping) {
	for k, v := range src {
		key := k
		switch {
		case prefix != "" && k == "":
			key = prefix
		case prefix != "":
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(child, key, out)
			continue
		}
		out[key] = leafString(v)
	}
}

// nest rebuilds the object-of-objects structure from dotted keys. A key may
// coexist with dotted children of itself ("a" next to "a.b", which the INI
// format represents naturally); the scalar then lives under the empty leaf
// inside its child object so neither value is lost.
func nest(data Mapping) map[string]any {
	root := make(map[string]any)
	for _, key := range data.Keys() {
		node := root
		parts := strings.Split(key, ".")
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				if scalar, present := node[p]; present {
					child[""] = scalar
				}
				node[p] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if existing, ok := node[leaf].(map[string]any); ok {
			existing[""] = data[key]
			continue
		}
		node[leaf] = data[key]
	}
	return root
}

func leafString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	}
}
