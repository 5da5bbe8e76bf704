package quota

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders n with comma thousands separators.
func FormatNumber(n float64) string {
	return groupDigits(strconv.FormatFloat(n, 'f', -1, 64))
}

// groupDigits inserts separators into the integer part of a decimal string.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// toFloat reads a decoded JSON number.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// formatValue groups a decoded JSON number, keeping integer precision when the
// value arrived as a plain integer literal.
func formatValue(v any) (string, bool) {
	if n, ok := v.(json.Number); ok && !strings.ContainsAny(string(n), "eE") {
		if _, err := n.Float64(); err == nil {
			return groupDigits(string(n)), true
		}
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return FormatNumber(f), true
}

// text renders a scalar the way it would appear in a template string.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case json.Number:
		return string(x)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	b, _ := json.Marshal(v)
	return string(b)
}
