// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package slv implements the network solvers: iterative propagation, closed-form small
// cases, star-polygon transforms, recursive simplification, superposition and the domain
// analogy decomposition
package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// SimpleIterator drives a bounded fixed-point over element local calculations: each sweep
// visits every element in a fixed order and the loop terminates when a full sweep changes
// nothing. Enforcers run first so that dependent propagation never pushes values into
// sources: origins at the front, then capacitance boundaries, then sources, then the
// remaining elements in insertion order.
type SimpleIterator struct {
	Prm      *inp.SolverData
	Elems    []ele.Element // all elements, in solving order
	Nenf     int           // the first Nenf elements are the enforcers
	Warnings int           // recoverable inconsistencies seen during sweeps
}

// NewSimpleIterator returns an iterator over elems with the solving order policy applied
func NewSimpleIterator(prm *inp.SolverData, elems []ele.Element) (o *SimpleIterator) {
	o = &SimpleIterator{Prm: prm}
	for _, e := range elems {
		if e.Kind() == ele.KindOrigin {
			o.Elems = append(o.Elems, e)
		}
	}
	for _, e := range elems {
		if e.Kind() == ele.KindCapacitance {
			o.Elems = append(o.Elems, e)
		}
	}
	for _, e := range elems {
		if e.Kind() == ele.KindEffortSource || e.Kind() == ele.KindFlowSource {
			o.Elems = append(o.Elems, e)
		}
	}
	o.Nenf = len(o.Elems)
	for _, e := range elems {
		if !e.Kind().IsEnforcer() {
			o.Elems = append(o.Elems, e)
		}
	}
	return
}

// PrepareCalculation resets the per-tick state of all elements
func (o *SimpleIterator) PrepareCalculation() {
	o.Warnings = 0
	for _, e := range o.Elems {
		e.PrepareCalculation()
	}
}

// DoCalculationOnEnforcerElements runs the local calculation of the enforcer elements
// only, establishing fixed values before dependent propagation begins
func (o *SimpleIterator) DoCalculationOnEnforcerElements() (err error) {
	for _, e := range o.Elems[:o.Nenf] {
		_, err = e.DoCalculation()
		if err != nil {
			if ele.IsCalcErr(err) {
				o.warn(err)
				err = nil
				continue
			}
			return
		}
	}
	return
}

// DoCalculation drives the fixed-point: enforcers first, then bounded sweeps over all
// elements until a full sweep changes nothing. Exceeding the sweep bound is a model
// error. Open connections are swept once at the end to pin their flows to exact zero.
func (o *SimpleIterator) DoCalculation() (err error) {
	err = o.DoCalculationOnEnforcerElements()
	if err != nil {
		return
	}
	for it := 0; ; it++ {
		if it >= o.Prm.NmaxIt {
			return ele.ErrModel("propagation did not terminate within %d sweeps", o.Prm.NmaxIt)
		}
		anychange := false
		for _, e := range o.Elems {
			ch, cerr := e.DoCalculation()
			if cerr != nil {
				if ele.IsCalcErr(cerr) {
					o.warn(cerr)
					continue
				}
				return cerr
			}
			if ch {
				anychange = true
			}
		}
		if !anychange {
			break
		}
	}

	// pin open connections to exact zero: summed flows drift; e.g. 5.23-1.23-4.0 != 0
	for _, e := range o.Elems {
		if e.Kind() == ele.KindOpen {
			for i := 0; i < e.Nnodes(); i++ {
				e.Node(i).SetFlow(0, e, true)
			}
		}
	}
	return
}

// IsCalculationFinished tells whether all elements completed their local values
func (o *SimpleIterator) IsCalculationFinished() bool {
	for _, e := range o.Elems {
		if !e.IsCalculationFinished() {
			return false
		}
	}
	return true
}

// warn logs and counts a recoverable inconsistency
func (o *SimpleIterator) warn(err error) {
	o.Warnings++
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: %v\n", err)
	}
}
