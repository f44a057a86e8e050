// Package duration parses relative time-delta literals of the form "2d3w1M",
// a compact admin-facing alternative to writing out an absolute RFC3339 expiry.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// token order mirrors how an operator would write it: years, months, weeks, days, hours, minutes.
var tokenPattern = regexp.MustCompile(`(\d+)([yYwWdDhHMm])`)

// Parse converts a literal like "1y2M3w4d5h6m" into a time.Duration relative to now,
// approximating years as 365 days and months as 30 days. An empty or malformed
// literal is a Validation error.
func Parse(literal string) (time.Duration, error) {
	if literal == "" {
		return 0, fmt.Errorf("empty time-delta literal")
	}

	matches := tokenPattern.FindAllStringSubmatchIndex(literal, -1)
	if matches == nil {
		return 0, fmt.Errorf("malformed time-delta literal: %q", literal)
	}

	var consumed int
	var total time.Duration
	for _, m := range matches {
		consumed += m[1] - m[0]
		numStr := literal[m[2]:m[3]]
		unit := literal[m[4]:m[5]]

		n, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("malformed time-delta literal: %q", literal)
		}

		switch unit {
		case "y", "Y":
			total += time.Duration(n) * 365 * 24 * time.Hour
		case "M":
			total += time.Duration(n) * 30 * 24 * time.Hour
		case "w", "W":
			total += time.Duration(n) * 7 * 24 * time.Hour
		case "d", "D":
			total += time.Duration(n) * 24 * time.Hour
		case "h", "H":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		default:
			return 0, fmt.Errorf("malformed time-delta literal: %q", literal)
		}
	}

	if consumed != len(literal) {
		return 0, fmt.Errorf("malformed time-delta literal: %q", literal)
	}

	return total, nil
}

// ParseExpiry parses a literal relative to the given reference instant.
func ParseExpiry(literal string, now time.Time) (time.Time, error) {
	d, err := Parse(literal)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}
