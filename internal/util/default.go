package util

// SetDefaultIfZero sets *v to defaultVal if *v holds the zero value.
func SetDefaultIfZero[V comparable](v *V, defaultVal V) {
	var zeroVal V
	if *v == zeroVal {
		*v = defaultVal
	}
}
