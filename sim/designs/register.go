// register.go wires the built-in designs into the sim package's design
// registry. Importing sim/designs for side effects makes them available to
// sim.LookupDesign.
package designs

import "github.com/tbsim/tbsim/sim"

func init() {
	sim.RegisterDesign(sim.Design{
		Name:        "counter",
		Description: "8-bit up counter testbench; finishes after +cycles rising edges (default 100)",
		New:         NewCounter,
	})
	sim.RegisterDesign(sim.Design{
		Name:        "lfsr",
		Description: "free-running 16-bit LFSR; never finishes unless +stop=N",
		New:         NewLFSR,
	})
}
