package sigil

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CastError reports a typed getter that could not convert a value.
type CastError struct {
	Key   string
	Value string
	Want  string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast %q: value %q is not a valid %s", e.Key, e.Value, e.Want)
}

// IsCastError reports whether err is a CastError.
func IsCastError(err error) bool {
	var ce *CastError
	return errors.As(err, &ce)
}

// autoCast applies the ordered parse chain to a raw string value: int, then
// float, then bool, then JSON array/object, falling back to the raw string.
func autoCast(raw string) any {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, ok := parseBool(raw); ok {
		return v
	}
	if v, ok := parseJSONComposite(raw); ok {
		return v
	}
	return raw
}

// parseBool accepts true/false, yes/no and 1/0, case-insensitively.
func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}

// parseJSONComposite decodes values that look like a JSON array or object.
func parseJSONComposite(raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, false
	}
	return v, true
}

// formatValue renders a value for persistence. Settings files store raw
// strings; composites round-trip through JSON so the cast chain recovers them.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	}
}
