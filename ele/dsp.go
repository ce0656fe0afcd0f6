// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// Dsp implements the linear dissipator (resistor). Open and bridged connections are
// represented by kind changes; the numeric R/G values are undefined then.
type Dsp struct {
	twoport
	Knd   Kind    // dissipator, open or bridged
	Rval  float64 // resistance; defined for kind dissipator only
	Gval  float64 // conductance; defined for kind dissipator only
	Delta float64 // external delta effort added to port 0 (layer-local offset)
}

// NewDsp returns a new dissipator with resistance r
func NewDsp(id int, prm *inp.SolverData, r float64) *Dsp {
	o := &Dsp{twoport: twoport{Eid: id, Prm: prm}, Knd: KindDissipator}
	o.SetResistanceParameter(r)
	return o
}

// Kind returns the element kind
func (o *Dsp) Kind() Kind { return o.Knd }

// IsLinear returns true: the dissipator law is linear
func (o *Dsp) IsLinear() bool { return true }

// SetResistanceParameter sets R (and G=1/R); the kind becomes dissipator
func (o *Dsp) SetResistanceParameter(r float64) {
	if r <= 0 {
		chk.Panic("element %d: resistance must be positive; use kind changes for open/bridged. r=%g", o.Eid, r)
	}
	o.Knd = KindDissipator
	o.Rval = r
	o.Gval = 1.0 / r
}

// SetConductanceParameter sets G (and R=1/G); the kind becomes dissipator
func (o *Dsp) SetConductanceParameter(g float64) {
	if g <= 0 {
		chk.Panic("element %d: conductance must be positive; use kind changes for open/bridged. g=%g", o.Eid, g)
	}
	o.Knd = KindDissipator
	o.Gval = g
	o.Rval = 1.0 / g
}

// SetOpenConnection makes this connection inactive (infinite resistance)
func (o *Dsp) SetOpenConnection() { o.Knd = KindOpen }

// SetBridgedConnection makes this connection a short (zero resistance)
func (o *Dsp) SetBridgedConnection() { o.Knd = KindBridged }

// Resistance returns R; panics unless the kind is dissipator
func (o *Dsp) Resistance() float64 {
	if o.Knd != KindDissipator {
		chk.Panic("element %d: resistance is undefined for kind %q", o.Eid, o.Knd)
	}
	return o.Rval
}

// Conductance returns G; panics unless the kind is dissipator
func (o *Dsp) Conductance() float64 {
	if o.Knd != KindDissipator {
		chk.Panic("element %d: conductance is undefined for kind %q", o.Eid, o.Knd)
	}
	return o.Gval
}

// SetExternalDeltaEffort sets the layer-local effort offset added to port 0
func (o *Dsp) SetExternalDeltaEffort(d float64) { o.Delta = d }

// PrepareCalculation resets per-tick state
func (o *Dsp) PrepareCalculation() {}

// DoCalculation attempts to complete the local unknowns from whatever neighbouring values
// are available: efforts give the flow via the conductance law, a known flow and one
// effort give the other effort, and a single missing flow at either node is completed by
// the flow sum.
func (o *Dsp) DoCalculation() (changed bool, err error) {
	if len(o.Nods) != 2 {
		return false, ErrModel("element %d is not fully connected", o.Eid)
	}
	a, b := o.Nods[0], o.Nods[1]

	switch o.Knd {

	case KindOpen:
		// an inactive connection carries no flow
		if !a.FlowUpdated(o) {
			if err = a.SetFlow(0, o, false); err != nil {
				return
			}
			changed = true
		}
		if !b.FlowUpdated(o) {
			if err = b.SetFlow(0, o, false); err != nil {
				return
			}
			changed = true
		}
		return

	case KindBridged:
		// a short shares the effort of its two ports
		if a.EffortUpdated() && !b.EffortUpdated() {
			if err = b.SetEffort(a.Effort()+o.Delta, o, false); err != nil {
				return
			}
			changed = true
		} else if b.EffortUpdated() && !a.EffortUpdated() {
			if err = a.SetEffort(b.Effort()-o.Delta, o, false); err != nil {
				return
			}
			changed = true
		}
		// flow comes from the flow sum only
		ch, err2 := o.completeByKCL(o)
		return changed || ch, err2
	}

	// conductance law
	if a.EffortUpdated() && b.EffortUpdated() {
		if _, known := o.throughFlow(o); !known {
			i := (a.Effort() + o.Delta - b.Effort()) * o.Gval
			if err = o.setThroughFlow(o, i, false); err != nil {
				return
			}
			changed = true
		}
	}

	// a known flow and one effort give the other effort
	if i, known := o.throughFlow(o); known {
		if a.EffortUpdated() && !b.EffortUpdated() {
			if err = b.SetEffort(a.Effort()+o.Delta-i*o.Rval, o, false); err != nil {
				return
			}
			changed = true
		} else if b.EffortUpdated() && !a.EffortUpdated() {
			if err = a.SetEffort(b.Effort()-o.Delta+i*o.Rval, o, false); err != nil {
				return
			}
			changed = true
		}
	}

	// complete by flow sum
	ch, err := o.completeByKCL(o)
	return changed || ch, err
}

// IsCalculationFinished tells whether both efforts and both own flows are defined
func (o *Dsp) IsCalculationFinished() bool { return o.finished(o) }

// add to factory
func init() {
	alloc := func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		r := cell.R
		if r == 0 && cell.G > 0 {
			r = 1.0 / cell.G
		}
		if r == 0 {
			r = 1.0
		}
		d := NewDsp(id, prm, r)
		switch cell.Kind {
		case "open":
			d.SetOpenConnection()
		case "bridged":
			d.SetBridgedConnection()
		}
		return d
	}
	allocators["dissipator"] = alloc
	allocators["open"] = alloc
	allocators["bridged"] = alloc
}
