// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"math"

	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/fun"
)

// EffortSource imposes a fixed effort difference between its two ports:
//
//	E(port1) - E(port0) = Eval
type EffortSource struct {
	twoport
	Eval float64       // imposed effort difference
	Fcn  fun.TimeSpace // time-varying characteristic; nil => constant Eval
}

// NewEffortSource returns a new effort source
func NewEffortSource(id int, prm *inp.SolverData, e float64) *EffortSource {
	return &EffortSource{twoport: twoport{Eid: id, Prm: prm}, Eval: e}
}

// Kind returns the element kind
func (o *EffortSource) Kind() Kind { return KindEffortSource }

// IsLinear returns true
func (o *EffortSource) IsLinear() bool { return true }

// SetEffortParameter sets the imposed effort difference
func (o *EffortSource) SetEffortParameter(e float64) { o.Eval = e }

// UpdateCharacteristic evaluates the time function, if any, at time t
func (o *EffortSource) UpdateCharacteristic(t float64) {
	if o.Fcn != nil {
		o.Eval = o.Fcn.F(t, nil)
	}
}

// PrepareCalculation resets per-tick state
func (o *EffortSource) PrepareCalculation() {}

// DoCalculation propagates the imposed effort difference across the ports and completes
// the flow through the source by the flow sum at either node
func (o *EffortSource) DoCalculation() (changed bool, err error) {
	if len(o.Nods) != 2 {
		return false, ErrModel("element %d is not fully connected", o.Eid)
	}
	a, b := o.Nods[0], o.Nods[1]
	switch {
	case a.EffortUpdated() && !b.EffortUpdated():
		if err = b.SetEffort(a.Effort()+o.Eval, o, false); err != nil {
			return
		}
		changed = true
	case b.EffortUpdated() && !a.EffortUpdated():
		if err = a.SetEffort(b.Effort()-o.Eval, o, false); err != nil {
			return
		}
		changed = true
	case a.EffortUpdated() && b.EffortUpdated():
		if math.Abs(b.Effort()-a.Effort()-o.Eval) > o.Prm.Eps {
			return false, ErrCalc("element %d: imposed effort difference violated: %g - %g != %g", o.Eid, b.Effort(), a.Effort(), o.Eval)
		}
	}
	ch, err := o.completeByKCL(o)
	return changed || ch, err
}

// IsCalculationFinished tells whether both efforts and both own flows are defined
func (o *EffortSource) IsCalculationFinished() bool { return o.finished(o) }

// FlowSource imposes a fixed flow through itself, from port 0 to port 1
type FlowSource struct {
	twoport
	Fval float64       // imposed through flow
	Fcn  fun.TimeSpace // time-varying characteristic; nil => constant Fval
	Xpd  bool          // injects exogenous flow (expansion); excluded from flow transfer
}

// NewFlowSource returns a new flow source
func NewFlowSource(id int, prm *inp.SolverData, f float64) *FlowSource {
	return &FlowSource{twoport: twoport{Eid: id, Prm: prm}, Fval: f}
}

// Kind returns the element kind
func (o *FlowSource) Kind() Kind { return KindFlowSource }

// IsLinear returns true
func (o *FlowSource) IsLinear() bool { return true }

// InjectsFlow tells whether this source injects exogenous flow (expanding volumes)
func (o *FlowSource) InjectsFlow() bool { return o.Xpd }

// SetFlowParameter sets the imposed through flow
func (o *FlowSource) SetFlowParameter(f float64) { o.Fval = f }

// UpdateCharacteristic evaluates the time function, if any, at time t
func (o *FlowSource) UpdateCharacteristic(t float64) {
	if o.Fcn != nil {
		o.Fval = o.Fcn.F(t, nil)
	}
}

// PrepareCalculation resets per-tick state
func (o *FlowSource) PrepareCalculation() {}

// DoCalculation pins the imposed flow at both ports. Efforts are left to the network:
// a flow source provides no relation between its port efforts.
func (o *FlowSource) DoCalculation() (changed bool, err error) {
	if len(o.Nods) != 2 {
		return false, ErrModel("element %d is not fully connected", o.Eid)
	}
	if _, known := o.throughFlow(o); !known {
		if err = o.setThroughFlow(o, o.Fval, false); err != nil {
			return
		}
		changed = true
	}
	ch, err := o.completeByKCL(o)
	return changed || ch, err
}

// IsCalculationFinished tells whether both efforts and both own flows are defined
func (o *FlowSource) IsCalculationFinished() bool { return o.finished(o) }

// add to factory
func init() {
	allocators["effortsource"] = func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		return NewEffortSource(id, prm, cell.E)
	}
	allocators["flowsource"] = func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		s := NewFlowSource(id, prm, cell.F)
		s.Xpd = cell.Expansion
		return s
	}
}
