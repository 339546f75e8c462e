// Package designs provides built-in self-clocking device models.
//
// Every design generates its own clock: each Eval is one half period, so a
// rising edge happens on every other evaluation starting with the first.
// Registers latch on rising edges only. Designs read their parameters from
// plusargs forwarded through sim.Environment and register themselves with
// sim.RegisterDesign in init(), so importing this package for side effects
// makes them available by name.
package designs
