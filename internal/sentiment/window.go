package sentiment

import (
	"fmt"

	"github.com/wonny/happiness/internal/contracts"
)

// Range is a dashboard time-range filter
type Range string

const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range30d Range = "30d"
)

// ParseRange accepts "24h", "7d", "30d"; empty means 30d
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case "":
		return Range30d, nil
	case Range24h, Range7d, Range30d:
		return Range(s), nil
	default:
		return "", fmt.Errorf("unknown range %q", s)
	}
}

// Points returns how many daily points the range covers, boundary included
func (r Range) Points() int {
	switch r {
	case Range24h:
		return 2
	case Range7d:
		return 8
	default:
		return 31
	}
}

// Tail returns the last n snapshots of a window (the whole window if shorter)
func Tail(window []contracts.SentimentSnapshot, n int) []contracts.SentimentSnapshot {
	if n <= 0 {
		return []contracts.SentimentSnapshot{}
	}
	if n >= len(window) {
		return window
	}
	return window[len(window)-n:]
}
