// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
)

// SimplifiedResistor stands for a set of parent resistors fused as series or parallel.
// The fused dissipator lives in the child network; this container recomputes its value
// each tick and pushes the solved child results back onto the parent elements and nodes.
type SimplifiedResistor struct {

	// constants
	Prm      *inp.SolverData
	Parallel bool             // parallel fusion; otherwise series
	Parents  []ele.Dissipator // parent resistors in traversal order
	Reversed []bool           // series: parent i is oriented against the chain direction
	Enclosed []*ele.Node      // series: inner parent nodes, in chain order
	Pnodes   [2]*ele.Node     // parent endpoint nodes

	// floating loop: a series chain whose endpoints coincide; electrically isolated and
	// kept out of the child network
	FloatingLoop bool

	// child side
	Fused *ele.Dsp // the fused dissipator in the child network; nil for floating loops
}

// NewParallelResistor fuses parents sharing the endpoint pair (a, b)
func NewParallelResistor(prm *inp.SolverData, parents []ele.Dissipator, a, b *ele.Node) *SimplifiedResistor {
	return &SimplifiedResistor{Prm: prm, Parallel: true, Parents: parents, Pnodes: [2]*ele.Node{a, b}}
}

// NewSeriesResistor fuses a non-branching chain of parents running from a to b through
// the enclosed inner nodes. A chain whose ends coincide becomes a floating loop.
func NewSeriesResistor(prm *inp.SolverData, parents []ele.Dissipator, enclosed []*ele.Node, a, b *ele.Node) *SimplifiedResistor {
	o := &SimplifiedResistor{Prm: prm, Parents: parents, Enclosed: enclosed, Pnodes: [2]*ele.Node{a, b}}
	if a == b {
		o.FloatingLoop = true
	}

	// direction alignment along the chain
	o.Reversed = make([]bool, len(parents))
	cur := a
	for i, p := range parents {
		if p.Node(0) == cur {
			cur = p.Node(1)
		} else {
			o.Reversed[i] = true
			cur = p.Node(0)
		}
	}
	return o
}

// Prepare recomputes the fused kind and value from the parent kinds of this tick:
//   - parallel: G = Σ G(i); one bridged child makes the fusion bridged (two parallel
//     shorts are unsolvable); open only when all children are open
//   - series: R = Σ R(i) skipping bridges; one open child makes the fusion open;
//     bridged when the resistance degenerates to zero
func (o *SimplifiedResistor) Prepare() (err error) {
	if o.FloatingLoop {
		return
	}
	nopen, nbrid := 0, 0
	for _, p := range o.Parents {
		switch p.Kind() {
		case ele.KindOpen:
			nopen++
		case ele.KindBridged:
			nbrid++
		}
	}

	if o.Parallel {
		if nbrid > 1 {
			return ele.ErrModel("parallel fusion across nodes %d and %d holds %d shorts; at most one is solvable",
				o.Pnodes[0].Id(), o.Pnodes[1].Id(), nbrid)
		}
		if nbrid == 1 {
			o.Fused.SetBridgedConnection()
			return
		}
		if nopen == len(o.Parents) {
			o.Fused.SetOpenConnection()
			return
		}
		g := 0.0
		for _, p := range o.Parents {
			if p.Kind() == ele.KindDissipator {
				g += p.Conductance()
			}
		}
		o.Fused.SetConductanceParameter(g)
		return
	}

	// series
	if nopen > 0 {
		o.Fused.SetOpenConnection()
		return
	}
	r := 0.0
	for _, p := range o.Parents {
		if p.Kind() == ele.KindDissipator {
			r += p.Resistance()
		}
	}
	if r == 0 {
		o.Fused.SetBridgedConnection()
		return
	}
	o.Fused.SetResistanceParameter(r)
	return
}

// PushResults back-assigns the solved child values onto the parent elements. The parent
// endpoint efforts must have been copied back before this is called.
func (o *SimplifiedResistor) PushResults() (err error) {

	// a floating loop shares the effort of its single endpoint; all member flows vanish
	if o.FloatingLoop {
		for _, p := range o.Parents {
			if err = SetThroughFlow(p, 0, false); err != nil {
				return
			}
		}
		e := 0.0 // an isolated ring has no reference; zero is the pseudo-solution
		if o.Pnodes[0].EffortUpdated() {
			e = o.Pnodes[0].Effort()
		}
		for _, n := range o.Enclosed {
			if err = n.SetEffort(e, nil, false); err != nil {
				return
			}
		}
		return
	}

	if o.Parallel {
		// each parent recomputes its own flow from the endpoint efforts
		for _, p := range o.Parents {
			if _, err = p.DoCalculation(); err != nil {
				return
			}
		}
		return
	}

	// series containing an open element: no flow anywhere; efforts propagate inward from
	// both endpoints until the open is reached
	anyopen := false
	for _, p := range o.Parents {
		if p.Kind() == ele.KindOpen {
			anyopen = true
			break
		}
	}
	if anyopen {
		for _, p := range o.Parents {
			if err = SetThroughFlow(p, 0, false); err != nil {
				return
			}
		}
		for _, p := range o.Parents {
			if _, err = p.DoCalculation(); err != nil {
				return
			}
		}
		for i := len(o.Parents) - 1; i >= 0; i-- {
			if _, err = o.Parents[i].DoCalculation(); err != nil {
				return
			}
		}
		// a sub-chain between two opens has no unique solution; fixing zero keeps the
		// propagation total
		for _, n := range o.Enclosed {
			if !n.EffortUpdated() {
				if err = n.SetEffort(0, nil, false); err != nil {
					return
				}
			}
		}
		return
	}

	// all-resistor chain: the member flows equal the fused flow, sign-flipped per the
	// direction alignment
	j, known := ThroughFlow(o.Fused)
	if !known {
		return ele.ErrCalc("series fusion across nodes %d and %d was not solved by the child network",
			o.Pnodes[0].Id(), o.Pnodes[1].Id())
	}
	for i, p := range o.Parents {
		ji := j
		if o.Reversed[i] {
			ji = -j
		}
		if err = SetThroughFlow(p, ji, false); err != nil {
			return
		}
	}
	// fill the enclosed efforts by walking the chain from the known endpoints
	for _, p := range o.Parents {
		if _, err = p.DoCalculation(); err != nil {
			return
		}
	}
	return
}
