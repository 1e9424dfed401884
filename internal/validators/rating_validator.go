package validators

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const MsgRatingRange = "Rating must be between 1 and 5"

// CoerceRating converts a decoded JSON rating into a number the way a browser
// Number() call would: JSON numbers and numeric strings are accepted, anything
// else becomes NaN. It does not range-check.
func CoerceRating(raw interface{}) float64 {
	switch v := raw.(type) {
	case nil:
		return math.NaN()
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		return parseNumeric(string(v))
	case string:
		return parseNumeric(v)
	default:
		return math.NaN()
	}
}

func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseRating coerces raw and accepts only whole numbers from 1 to 5.
func ParseRating(raw interface{}) (int, bool) {
	v := CoerceRating(raw)
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0, false
	}
	if v < 1 || v > 5 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
