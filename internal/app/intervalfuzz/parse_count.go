package intervalfuzz

import (
	"errors"
	"regexp"
	"strconv"
)

const maxCount = 1 << 40

var (
	ErrInvalidCount = errors.New("invalid count")

	countPattern = regexp.MustCompile("^([1-9][0-9]*)([KMG])?$")
)

// ParseCount parses a positive decimal count with an optional K, M or G
// (powers of 1000) suffix.
func ParseCount(str string) (int, error) {
	parts := countPattern.FindStringSubmatch(str)
	if len(parts) < 2 {
		return 0, ErrInvalidCount
	}

	count, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, ErrInvalidCount
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "K":
			count *= 1000
		case "M":
			count *= 1000 * 1000
		case "G":
			count *= 1000 * 1000 * 1000
		}
	}
	if count > maxCount {
		return 0, ErrInvalidCount
	}
	return int(count), nil
}
