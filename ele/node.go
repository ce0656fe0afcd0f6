// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"math"

	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// Node represents one junction of the network. It carries one scalar effort (the across
// variable; e.g. voltage, pressure, temperature) and one flow per incident element (the
// through variable; e.g. current, mass flow). Flows are stored with the into-node sign
// convention so that the sum over all incident elements vanishes at a solved state.
//
// Both effort and flows are write-once per tick: a second non-forced assignment must agree
// with the first one within Prm.Eps, otherwise a calculation error is returned and the
// first value is kept.
type Node struct {

	// constants
	Vid    int    // id of this node within its network
	Domain string // physical domain tag; e.g. "electrical", "heatfluid"
	Prm    *inp.SolverData

	// connectivity (in registration order)
	elems []Element

	// state
	effort float64
	eset   bool
	flows  []float64
	fset   []bool
}

// Id returns the node id within its network
func (o *Node) Id() int { return o.Vid }

// register appends an element to this node. Insertion order is observable: transforms use
// it for tie-breaking. Called by Network.Connect only.
func (o *Node) register(e Element) {
	if o.IsElementRegistered(e) {
		chk.Panic("node %d: element %d is already registered", o.Vid, e.Id())
	}
	o.elems = append(o.elems, e)
	o.flows = append(o.flows, 0)
	o.fset = append(o.fset, false)
}

// Nelements returns the number of incident elements
func (o *Node) Nelements() int { return len(o.elems) }

// Elem returns the i-th incident element, in registration order
func (o *Node) Elem(i int) Element { return o.elems[i] }

// IsElementRegistered tells whether e is incident to this node
func (o *Node) IsElementRegistered(e Element) bool {
	return o.elemIdx(e) >= 0
}

// elemIdx returns the index of e in the registration list; -1 if absent
func (o *Node) elemIdx(e Element) int {
	for i, el := range o.elems {
		if el == e {
			return i
		}
	}
	return -1
}

// OnlyOtherElement returns the single incident element other than 'excluding'.
// A navigation error is returned when this node does not have exactly 2 elements.
func (o *Node) OnlyOtherElement(excluding Element) (Element, error) {
	if len(o.elems) != 2 {
		return nil, ErrNoFlowThrough("node %d has %d elements; cannot pick the only other one", o.Vid, len(o.elems))
	}
	if o.elems[0] == excluding {
		return o.elems[1], nil
	}
	if o.elems[1] == excluding {
		return o.elems[0], nil
	}
	return nil, ErrNoFlowThrough("node %d: excluded element %d is not registered here", o.Vid, excluding.Id())
}

// ClearState resets the per-tick updated bits. Values are kept for debugging but must not
// be read before being set again.
func (o *Node) ClearState() {
	o.eset = false
	for i := range o.fset {
		o.fset[i] = false
	}
}

// SetEffort assigns the effort at this node. With force=false a repeated assignment must
// agree with the existing value within Prm.Eps; on disagreement the first value is kept
// and a calculation error is returned. With force=true the value is overwritten.
// src is the element responsible for the assignment; may be nil for external writes.
func (o *Node) SetEffort(v float64, src Element, force bool) error {
	if math.Abs(v) < o.Prm.ZeroTol {
		v = 0
	}
	if o.eset && !force {
		if math.Abs(v-o.effort) > o.Prm.Eps {
			sid := -1
			if src != nil {
				sid = src.Id()
			}
			return ErrCalc("node %d: effort mismatch: has %g, got %g from element %d", o.Vid, o.effort, v, sid)
		}
		return nil
	}
	o.effort = v
	o.eset = true
	return nil
}

// Effort returns the effort at this node
func (o *Node) Effort() float64 { return o.effort }

// EffortUpdated tells whether the effort was set this tick
func (o *Node) EffortUpdated() bool { return o.eset }

// SetFlow assigns the into-node flow of element e at this node, with the same write-once
// policy as SetEffort
func (o *Node) SetFlow(v float64, e Element, force bool) error {
	i := o.elemIdx(e)
	if i < 0 {
		chk.Panic("node %d: element %d is not registered here", o.Vid, e.Id())
	}
	if math.Abs(v) < o.Prm.ZeroTol {
		v = 0
	}
	if o.fset[i] && !force {
		if math.Abs(v-o.flows[i]) > o.Prm.Eps {
			return ErrCalc("node %d: flow mismatch for element %d: has %g, got %g", o.Vid, e.Id(), o.flows[i], v)
		}
		return nil
	}
	o.flows[i] = v
	o.fset[i] = true
	return nil
}

// Flow returns the into-node flow of element e at this node
func (o *Node) Flow(e Element) float64 {
	i := o.elemIdx(e)
	if i < 0 {
		chk.Panic("node %d: element %d is not registered here", o.Vid, e.Id())
	}
	return o.flows[i]
}

// FlowUpdated tells whether the flow of element e was set this tick
func (o *Node) FlowUpdated(e Element) bool {
	i := o.elemIdx(e)
	if i < 0 {
		chk.Panic("node %d: element %d is not registered here", o.Vid, e.Id())
	}
	return o.fset[i]
}

// AllFlowsUpdated tells whether the flows of all incident elements were set this tick
func (o *Node) AllFlowsUpdated() bool {
	for _, set := range o.fset {
		if !set {
			return false
		}
	}
	return len(o.fset) > 0
}

// SumFlows returns the sum of all set flows at this node. At a fully solved state the sum
// over all incident elements vanishes within tolerance.
func (o *Node) SumFlows() (sum float64) {
	for i, set := range o.fset {
		if set {
			sum += o.flows[i]
		}
	}
	return
}

// MissingFlow returns the single element whose flow is still unset, together with the
// value that completes the flow sum to zero. ok is false when zero or more than one flow
// is missing.
func (o *Node) MissingFlow() (e Element, val float64, ok bool) {
	n := 0
	idx := -1
	for i, set := range o.fset {
		if !set {
			n++
			idx = i
		}
	}
	if n != 1 {
		return nil, 0, false
	}
	return o.elems[idx], -o.SumFlows(), true
}
