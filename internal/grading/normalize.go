package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The backend's feedback fields are loosely typed: a list entry may be a
// plain string, an object carrying a "text" or "question" property, null,
// or something else entirely. Normalization is total: every input shape
// maps to a defined output, and malformed entries map to nothing.

// NormalizeList flattens a mixed list into non-empty strings.
func NormalizeList(items []any) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, v := range items {
		if s := itemText(v, "text"); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizePitfalls flattens a mixed list into Pitfall records.
// Bare strings become pitfalls with no level; objects keep a finite
// numeric level and are dropped when their text is empty.
func NormalizePitfalls(items []any) []Pitfall {
	if len(items) == 0 {
		return nil
	}
	out := make([]Pitfall, 0, len(items))
	for _, v := range items {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, Pitfall{Text: s})
			}
		case map[string]any:
			text := stringField(t, "text")
			if text == "" {
				continue
			}
			p := Pitfall{Text: text}
			if n, ok := anyNumber(t["level"]); ok {
				lvl := int(n)
				p.Level = &lvl
			}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeFollowUps flattens a mixed list into FollowUp records.
func NormalizeFollowUps(items []any) []FollowUp {
	if len(items) == 0 {
		return nil
	}
	out := make([]FollowUp, 0, len(items))
	for _, v := range items {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, FollowUp{Question: s})
			}
		case map[string]any:
			q := stringField(t, "question")
			if q == "" {
				continue
			}
			out = append(out, FollowUp{Question: q, Reason: stringField(t, "reason")})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeChart coerces chart axis values into finite floats.
// Values may arrive as numbers or numeric strings; anything else maps to 0.
func NormalizeChart(chart map[string]any) map[string]float64 {
	if len(chart) == 0 {
		return nil
	}
	out := make(map[string]float64, len(chart))
	for k, v := range chart {
		if n, ok := anyNumber(v); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			out[k] = n
		} else {
			out[k] = 0
		}
	}
	return out
}

// itemText extracts the usable text from one loosely typed list entry.
func itemText(v any, objKey string) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringField(t, objKey)
	default:
		return ""
	}
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// anyNumber accepts JSON numbers and numeric strings.
func anyNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// rawNumber parses a raw JSON value that should be numeric but may be a
// quoted string or null.
func rawNumber(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
