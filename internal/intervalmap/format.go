package intervalmap

import (
	"fmt"
	"strings"
)

// Format implements fmt.Formatter. Keys are printed with %v, values with the
// given verb, e.g. "{base: A, 0: B, 4: A}" for %c.
func (m *Map[K, V]) Format(s fmt.State, verb rune) {
	valueFormat := fmt.FormatString(s, verb)
	fmt.Fprint(s, "{base: ")
	fmt.Fprintf(s, valueFormat, m.base)
	m.store.Ascend(func(bp Breakpoint[K, V]) bool {
		fmt.Fprintf(s, ", %v: ", bp.Key)
		fmt.Fprintf(s, valueFormat, bp.Value)
		return true
	})
	fmt.Fprint(s, "}")
}

func (m *Map[K, V]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v", m)
	return sb.String()
}
