package intervalfuzz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidValues = errors.New("invalid values")
)

const (
	// Printable ASCII, so values can be shown one character per key.
	minValue = '!'
	maxValue = '~'
)

// ParseValues parses the set of values the fuzzer assigns: either an
// inclusive range "A-F" or a literal list such as "xyz".
func ParseValues(str string) (string, error) {
	if len(str) == 3 && str[1] == '-' {
		first, last := str[0], str[2]
		if !printable(first) || !printable(last) || first > last {
			return "", fmt.Errorf("%w: range %q", ErrInvalidValues, str)
		}
		var sb strings.Builder
		for c := first; c <= last; c++ {
			sb.WriteByte(c)
		}
		return sb.String(), nil
	}

	if str == "" {
		return "", ErrInvalidValues
	}
	for i := 0; i < len(str); i++ {
		if !printable(str[i]) {
			return "", fmt.Errorf("%w: byte 0x%02x at index %d", ErrInvalidValues, str[i], i)
		}
		if strings.IndexByte(str[:i], str[i]) >= 0 {
			return "", fmt.Errorf("%w: duplicate %q", ErrInvalidValues, str[i])
		}
	}
	return str, nil
}

func printable(c byte) bool {
	return c >= minValue && c <= maxValue
}
