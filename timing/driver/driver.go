// Package driver runs a core to completion on an event-driven engine.
//
// The pipeline core is purely step-driven; something external has to call
// Step once per cycle. Driver is that something for batch runs: an akita
// ticking component that advances the core one cycle per tick until the
// pipeline drains or a cycle budget is exhausted.
package driver

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/mipssim/log"
	"github.com/sarchlab/mipssim/timing/core"
)

// Driver wraps a Core in an akita ticking component.
type Driver struct {
	*sim.TickingComponent

	core      *core.Core
	engine    sim.Engine
	maxCycles uint64
	cyclesRun uint64
}

// New creates a Driver for the given core. maxCycles bounds the run so
// non-terminating programs still return; 0 means no bound.
func New(c *core.Core, maxCycles uint64) *Driver {
	engine := sim.NewSerialEngine()

	d := &Driver{
		core:      c,
		engine:    engine,
		maxCycles: maxCycles,
	}
	d.TickingComponent = sim.NewTickingComponent(
		"PipelineDriver", engine, 1*sim.GHz, d)

	return d
}

// Tick advances the core by one cycle. It reports false once the pipeline
// has drained or the cycle budget is spent, which stops the ticking.
func (d *Driver) Tick() bool {
	if d.core.Drained() {
		return false
	}
	if d.maxCycles > 0 && d.cyclesRun >= d.maxCycles {
		log.Driver.Warn().
			Uint64("max_cycles", d.maxCycles).
			Msg("cycle budget exhausted, stopping")
		return false
	}

	d.core.Step()
	d.cyclesRun++
	return true
}

// CyclesRun returns the number of cycles this driver has advanced the core.
func (d *Driver) CyclesRun() uint64 {
	return d.cyclesRun
}

// Run drives the core until Tick reports no more work.
func (d *Driver) Run() error {
	d.TickLater()
	if err := d.engine.Run(); err != nil {
		return err
	}

	log.Driver.Info().
		Uint64("cycles", d.cyclesRun).
		Bool("drained", d.core.Drained()).
		Msg("run finished")
	return nil
}
