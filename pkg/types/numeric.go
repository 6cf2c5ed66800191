package types

import (
	"strconv"
	"strings"
)

// PositiveCents parses a metadata numeric field that the storage layer may
// have coerced to a string. It accepts positive numbers and digits-only
// strings; everything else (nil, zero, negatives, booleans, decorated
// strings) reports no value.
func PositiveCents(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		// JSON numbers decode as float64; cents are whole numbers.
		if v > 0 && v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || !isDigits(trimmed) {
			return 0, false
		}
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || parsed <= 0 {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
