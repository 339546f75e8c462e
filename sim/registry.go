package sim

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownDesign is returned by LookupDesign for unregistered names.
var ErrUnknownDesign = errors.New("unknown design")

// Design describes a registered device model.
type Design struct {
	Name        string
	Description string
	New         ModelFactory
}

// designs is filled by sim/designs init(). Not safe for concurrent
// registration; all registration happens during package init.
var designs = map[string]Design{}

// RegisterDesign adds d to the registry. It panics on an empty name, a nil
// factory, or a duplicate registration.
func RegisterDesign(d Design) {
	if d.Name == "" || d.New == nil {
		panic("sim: RegisterDesign requires a name and a factory")
	}
	if _, dup := designs[d.Name]; dup {
		panic("sim: design registered twice: " + d.Name)
	}
	designs[d.Name] = d
}

// LookupDesign returns the design registered under name.
func LookupDesign(name string) (Design, error) {
	d, ok := designs[name]
	if !ok {
		return Design{}, errors.Wrapf(ErrUnknownDesign, "%q (available: %v)", name, DesignNames())
	}
	return d, nil
}

// DesignNames returns the registered design names, sorted.
func DesignNames() []string {
	names := make([]string, 0, len(designs))
	for n := range designs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
