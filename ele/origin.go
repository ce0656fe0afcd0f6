// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// Origin is the one-port reference of a domain (ground). It forces a fixed effort on its
// node and absorbs whatever residual flow the rest of the network produces there.
type Origin struct {
	Eid  int
	Prm  *inp.SolverData
	Nod  *Node
	Eref float64 // reference effort
	Coup Element
}

// NewOrigin returns a new origin with reference effort e
func NewOrigin(id int, prm *inp.SolverData, e float64) *Origin {
	return &Origin{Eid: id, Prm: prm, Eref: e}
}

// Id returns the element id
func (o *Origin) Id() int { return o.Eid }

// Kind returns the element kind
func (o *Origin) Kind() Kind { return KindOrigin }

// Nnodes returns 1
func (o *Origin) Nnodes() int {
	if o.Nod == nil {
		return 0
	}
	return 1
}

// Node returns the single connected node
func (o *Origin) Node(i int) *Node { return o.Nod }

// RegisterNode sets the single node of this origin
func (o *Origin) RegisterNode(n *Node) {
	if o.Nod != nil {
		chk.Panic("origin %d: cannot register more than 1 node", o.Eid)
	}
	o.Nod = n
}

// CoupledElement returns the element coupled across a domain boundary; nil if none
func (o *Origin) CoupledElement() Element { return o.Coup }

// SetCoupledElement couples this element to one in another domain
func (o *Origin) SetCoupledElement(e Element) { o.Coup = e }

// IsLinear returns true
func (o *Origin) IsLinear() bool { return true }

// SetEffortParameter sets the reference effort
func (o *Origin) SetEffortParameter(e float64) { o.Eref = e }

// PrepareCalculation resets per-tick state
func (o *Origin) PrepareCalculation() {}

// DoCalculation forces the reference effort and completes the residual flow at the node
func (o *Origin) DoCalculation() (changed bool, err error) {
	if o.Nod == nil {
		return false, ErrModel("origin %d is not connected", o.Eid)
	}
	if !o.Nod.EffortUpdated() {
		if err = o.Nod.SetEffort(o.Eref, o, false); err != nil {
			return
		}
		changed = true
	}
	if missing, val, ok := o.Nod.MissingFlow(); ok && missing == Element(o) {
		if err = o.Nod.SetFlow(val, o, false); err != nil {
			return
		}
		changed = true
	}
	return
}

// IsCalculationFinished tells whether the effort and the own flow are defined
func (o *Origin) IsCalculationFinished() bool {
	return o.Nod != nil && o.Nod.EffortUpdated() && o.Nod.FlowUpdated(o)
}

// Capacitance is the boundary of an external storage element. The host integrates the
// storage outside the core and exposes its current effort here each tick; the core treats
// the boundary as an effort source. A self-capacitance may span several nodes, all forced
// to the same effort.
type Capacitance struct {
	Eid  int
	Prm  *inp.SolverData
	Nods []*Node
	Eb   float64 // boundary effort for this tick
	Coup Element
}

// NewCapacitance returns a new capacitance boundary
func NewCapacitance(id int, prm *inp.SolverData, e float64) *Capacitance {
	return &Capacitance{Eid: id, Prm: prm, Eb: e}
}

// Id returns the element id
func (o *Capacitance) Id() int { return o.Eid }

// Kind returns the element kind
func (o *Capacitance) Kind() Kind { return KindCapacitance }

// Nnodes returns the number of connected nodes
func (o *Capacitance) Nnodes() int { return len(o.Nods) }

// Node returns the i-th connected node
func (o *Capacitance) Node(i int) *Node { return o.Nods[i] }

// RegisterNode appends a node; self-capacitances may span several nodes
func (o *Capacitance) RegisterNode(n *Node) { o.Nods = append(o.Nods, n) }

// CoupledElement returns the element coupled across a domain boundary; nil if none
func (o *Capacitance) CoupledElement() Element { return o.Coup }

// SetCoupledElement couples this element to one in another domain
func (o *Capacitance) SetCoupledElement(e Element) { o.Coup = e }

// IsLinear returns true
func (o *Capacitance) IsLinear() bool { return true }

// SetBoundaryEffort exposes the storage effort for this tick
func (o *Capacitance) SetBoundaryEffort(e float64) { o.Eb = e }

// BoundaryEffort returns the storage effort of this tick
func (o *Capacitance) BoundaryEffort() float64 { return o.Eb }

// PrepareCalculation resets per-tick state
func (o *Capacitance) PrepareCalculation() {}

// DoCalculation forces the boundary effort on all nodes and completes residual flows
func (o *Capacitance) DoCalculation() (changed bool, err error) {
	if len(o.Nods) < 1 {
		return false, ErrModel("capacitance %d is not connected", o.Eid)
	}
	for _, n := range o.Nods {
		if !n.EffortUpdated() {
			if err = n.SetEffort(o.Eb, o, false); err != nil {
				return
			}
			changed = true
		}
		if missing, val, ok := n.MissingFlow(); ok && missing == Element(o) {
			if err = n.SetFlow(val, o, false); err != nil {
				return
			}
			changed = true
		}
	}
	return
}

// IsCalculationFinished tells whether all efforts and own flows are defined
func (o *Capacitance) IsCalculationFinished() bool {
	if len(o.Nods) < 1 {
		return false
	}
	for _, n := range o.Nods {
		if !n.EffortUpdated() || !n.FlowUpdated(o) {
			return false
		}
	}
	return true
}

// add to factory
func init() {
	allocators["origin"] = func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		return NewOrigin(id, prm, cell.E)
	}
	allocators["capacitance"] = func(id int, prm *inp.SolverData, cell *inp.CellData) Element {
		return NewCapacitance(id, prm, cell.E)
	}
}
