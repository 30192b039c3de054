// Package query serializes filter and pagination values into URL query strings.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query parameter. Params are serialized in the order the
// caller supplies them.
type Param struct {
	Key   string
	Value interface{}
}

// P is shorthand for constructing a Param.
func P(key string, value interface{}) Param {
	return Param{Key: key, Value: value}
}

// componentUnescaper restores the characters encodeURIComponent leaves alone
// but url.QueryEscape escapes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Build returns "?k1=v1&k2=v2..." for every param whose value is neither nil
// nor an empty string. It returns "" when no param survives.
func Build(params ...Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		value, ok := format(p.Value)
		if !ok {
			continue
		}
		parts = append(parts, p.Key+"="+EscapeComponent(value))
	}

	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// EscapeComponent URL-encodes a value the way browsers' encodeURIComponent does:
// spaces become %20 and the marks !'()* are kept literal.
func EscapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// format converts a param value to text. The bool is false for values that
// must be omitted (nil and "").
func format(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case *string:
		if val == nil || *val == "" {
			return "", false
		}
		return *val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case fmt.Stringer:
		s := val.String()
		return s, s != ""
	default:
		s := fmt.Sprint(val)
		return s, s != ""
	}
}
