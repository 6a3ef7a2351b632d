package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatClock renders seconds as m:ss, truncating fractions.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatPrecise renders seconds as m:ss.s, the editor input format.
func FormatPrecise(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	// Round to tenths first so 59.96 becomes 1:00.0 rather than 0:60.0.
	tenths := math.Round(seconds * 10)
	mins := int(tenths) / 600
	secs := math.Mod(tenths, 600) / 10
	return fmt.Sprintf("%d:%04.1f", mins, secs)
}

// ParseClock parses m:ss.s, m:ss or plain seconds. It reports false for
// malformed or negative input.
func ParseClock(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	mins, secs, found := strings.Cut(s, ":")
	if !found {
		return parseSeconds(s)
	}
	m, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil || m < 0 {
		return 0, false
	}
	sec, ok := parseSeconds(secs)
	if !ok {
		return 0, false
	}
	return float64(m)*60 + sec, true
}

// ParseSeconds parses a non-negative decimal number of seconds.
func ParseSeconds(s string) (float64, bool) {
	return parseSeconds(s)
}

func parseSeconds(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
