// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"math"

	"github.com/cpmech/enet/inp"
)

// NlnDsp implements a quadratic dissipator with the turbulent law
//
//	E(port0) - E(port1) = K * F * |F|
//
// Subnets containing nonlinear elements are solved by iterative propagation only.
type NlnDsp struct {
	twoport
	Kval float64 // quadratic coefficient
}

// NewNlnDsp returns a new quadratic dissipator
func NewNlnDsp(id int, prm *inp.SolverData, k float64) *NlnDsp {
	return &NlnDsp{twoport: twoport{Eid: id, Prm: prm}, Kval: k}
}

// Kind returns the element kind
func (o *NlnDsp) Kind() Kind { return KindDissipator }

// IsLinear returns false
func (o *NlnDsp) IsLinear() bool { return false }

// SetCoefficient sets the quadratic coefficient
func (o *NlnDsp) SetCoefficient(k float64) { o.Kval = k }

// PrepareCalculation resets per-tick state
func (o *NlnDsp) PrepareCalculation() {}

// DoCalculation attempts to complete the local unknowns using the quadratic law
func (o *NlnDsp) DoCalculation() (changed bool, err error) {
	if len(o.Nods) != 2 {
		return false, ErrModel("element %d is not fully connected", o.Eid)
	}
	a, b := o.Nods[0], o.Nods[1]

	// efforts give the flow
	if a.EffortUpdated() && b.EffortUpdated() {
		if _, known := o.throughFlow(o); !known {
			d := a.Effort() - b.Effort()
			i := math.Copysign(math.Sqrt(math.Abs(d)/o.Kval), d)
			if err = o.setThroughFlow(o, i, false); err != nil {
				return
			}
			changed = true
		}
	}

	// a known flow and one effort give the other effort
	if i, known := o.throughFlow(o); known {
		drop := o.Kval * i * math.Abs(i)
		if a.EffortUpdated() && !b.EffortUpdated() {
			if err = b.SetEffort(a.Effort()-drop, o, false); err != nil {
				return
			}
			changed = true
		} else if b.EffortUpdated() && !a.EffortUpdated() {
			if err = a.SetEffort(b.Effort()+drop, o, false); err != nil {
				return
			}
			changed = true
		}
	}

	ch, err := o.completeByKCL(o)
	return changed || ch, err
}

// IsCalculationFinished tells whether both efforts and both own flows are defined
func (o *NlnDsp) IsCalculationFinished() bool { return o.finished(o) }

// add to factory
func init() {
	allocators["nlndissipator"] = func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		k := cell.R
		if k == 0 {
			k = 1.0
		}
		return NewNlnDsp(id, prm, k)
	}
}
