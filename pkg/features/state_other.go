//go:build !windows

package features

// QueryState is only supported on Windows.
func QueryState(name string) (State, error) {
	return StateUnknown, ErrStateUnavailable
}
