package engine

import (
	"regexp"
	"strconv"
	"strings"
)

var decimalRe = regexp.MustCompile(`\d+\.?\d*`)

// ParseDuration converts a free-form duration string ("45.5 seconds",
// "2 minutes", "1.5 hours") into seconds. It is total: malformed or empty
// input yields 0 rather than an error, because telemetry from an untrusted
// frontend must never crash the pipeline.
func ParseDuration(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0.0
	}

	n, ok := firstDecimal(s)
	if !ok {
		return 0.0
	}

	switch {
	case strings.Contains(s, "minute"):
		return n * 60
	case strings.Contains(s, "second"):
		return n
	case strings.Contains(s, "hour"):
		return n * 3600
	default:
		// No recognizable unit; treat the bare number as seconds.
		return n
	}
}

func firstDecimal(s string) (float64, bool) {
	match := decimalRe.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
