// Package quota reshapes quota/limit payloads of the monitor API for display.
package quota

import "fmt"

// Record kind markers.
const (
	KindTokens = "TOKENS_LIMIT"
	KindTime   = "TIME_LIMIT"
)

// Unit codes that select the window unit name.
const (
	unitHour  = 3
	unitMonth = 5
)

// ProcessQuotaLimit augments the data payload of the quota/limit endpoint with
// display fields. Payloads without a limits list are returned unchanged. The
// input is never mutated.
func ProcessQuotaLimit(data any) any {
	obj, ok := data.(map[string]any)
	if !ok {
		return data
	}
	items, ok := obj["limits"].([]any)
	if !ok {
		return data
	}

	out := shallowCopy(obj)
	limits := make([]any, len(items))
	for i, item := range items {
		limits[i] = processLimit(item)
	}
	out["limits"] = limits

	if readable, ok := readableReset(obj["nextResetTime"]); ok {
		out["nextResetTimeReadable"] = readable
	}

	return out
}

func processLimit(item any) any {
	m, ok := item.(map[string]any)
	if !ok {
		return item
	}
	p := shallowCopy(m)

	kind, _ := m["type"].(string)
	switch kind {
	case KindTokens:
		usage, _ := toFloat(m["usage"])
		plan := IdentifyPlan(usage)

		p["type"] = TypeLabel(kind, text(m["number"]), unitCode(m["unit"]))
		p["limitType"] = kind
		p["plan"] = string(plan)
		p["planName"] = "套餐: " + string(plan)
		setFormatted(p, "usageFormatted", m["usage"])
		setFormatted(p, "currentValueFormatted", m["currentValue"])
		setFormatted(p, "remainingFormatted", m["remaining"])
	case KindTime:
		p["type"] = TypeLabel(kind, text(m["number"]), unitCode(m["unit"]))
		p["limitType"] = kind
		copyField(p, m, "currentValue", "currentUsage")
		copyField(p, m, "usage", "total")
	default:
		return p
	}

	if readable, ok := readableReset(m["nextResetTime"]); ok {
		p["nextResetTimeReadable"] = readable
	}
	return p
}

// TypeLabel renders the display label of a limit record, e.g. "Token 用量 (5 小时)".
func TypeLabel(kind, number string, unit int) string {
	switch kind {
	case KindTokens:
		name := "天"
		if unit == unitHour {
			name = "小时"
		}
		return fmt.Sprintf("Token 用量 (%s %s)", number, name)
	case KindTime:
		name := "天"
		if unit == unitMonth {
			name = "个月"
		}
		return fmt.Sprintf("MCP 用量 (%s %s)", number, name)
	default:
		return kind
	}
}

// unitCode reads the unit field; anything that is not an integer yields -1.
func unitCode(v any) int {
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return -1
	}
	return int(f)
}

func setFormatted(dst map[string]any, key string, v any) {
	if s, ok := formatValue(v); ok {
		dst[key] = s
	}
}

func copyField(dst, src map[string]any, from, to string) {
	if v, ok := src[from]; ok {
		dst[to] = v
	}
}

func shallowCopy(m map[string]any) map[string]any {
	c := make(map[string]any, len(m)+8)
	for k, v := range m {
		c[k] = v
	}
	return c
}
