package analysis

import (
	"strconv"
	"strings"
)

// parseExactaKey parses a combination key of the form "(first)-(second)".
// Keys that do not split into exactly two integers are rejected.
func parseExactaKey(key string) (first, second int, ok bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	second, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

// parseTrifectaKey parses a combination key of the form
// "(first)-(second)-(third)".
func parseTrifectaKey(key string) (first, second, third int, ok bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, false
	}
	second, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, false
	}
	third, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, false
	}
	return first, second, third, true
}
