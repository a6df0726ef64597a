//go:build windows

package features

import (
	"fmt"
	"strings"

	"github.com/yusufpapurcu/wmi"
)

// Win32_OptionalFeature is the subset of the WMI class the state query reads.
type Win32_OptionalFeature struct {
	Name         string
	InstallState uint32
}

// QueryState reads the install state of the optional feature name.
func QueryState(name string) (State, error) {
	var found []Win32_OptionalFeature

	q := fmt.Sprintf("SELECT Name, InstallState FROM Win32_OptionalFeature WHERE Name = '%s'",
		strings.ReplaceAll(name, "'", "\\'"))
	if err := wmi.Query(q, &found); err != nil {
		return StateUnknown, fmt.Errorf("query Win32_OptionalFeature: %w", err)
	}
	if len(found) == 0 {
		return StateUnknown, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return State(found[0].InstallState), nil
}
