// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// subnet solver bindings
const (
	BindSuperPosition = iota // all linear, no storage: superposition directly
	BindTransfer             // linear with storage/expansion or several references: electrical twin
	BindIterator             // nonlinear: iterative propagation
)

// Subnet is a connected component bounded by effort-forced nodes, together with its
// solver binding
type Subnet struct {
	Nodes   []*ele.Node
	Elems   []ele.Element
	Binding int
	Sp      *SuperPosition
	Ts      *TransferSubnet
	It      *SimpleIterator
}

// Decomposer walks the global graph from a seed node, classifies effort-forced nodes and
// self-solving resistors, partitions the remaining elements into subnets separated by the
// effort-forced boundaries and routes each subnet to the appropriate solver. A final
// iterator over all reachable elements runs at the end of each tick so that derived
// values are populated after the flows are solved.
type Decomposer struct {

	// constants
	Prm  *inp.SolverData
	Seed *ele.Node

	// classification
	reachNodes  []*ele.Node
	reachElems  []ele.Element
	forced      map[*ele.Node]ele.Element // effort-forced node => its forcing element
	SelfSolving []ele.Element             // resistors with both endpoints effort-forced
	Subnets     []*Subnet

	// tick-end sweep
	Last     *SimpleIterator
	Warnings int
}

// NewDecomposer walks the graph reachable from seed and builds all subnet solvers
func NewDecomposer(prm *inp.SolverData, seed *ele.Node) (o *Decomposer, err error) {
	o = &Decomposer{Prm: prm, Seed: seed}

	// deque-driven walk following node-element incidence and coupled-element links
	seenN := make(map[*ele.Node]bool)
	seenE := make(map[ele.Element]bool)
	deque := []*ele.Node{seed}
	seenN[seed] = true
	for len(deque) > 0 {
		n := deque[0]
		deque = deque[1:]
		o.reachNodes = append(o.reachNodes, n)
		for i := 0; i < n.Nelements(); i++ {
			e := n.Elem(i)
			for _, x := range []ele.Element{e, e.CoupledElement()} {
				if x == nil || seenE[x] {
					continue
				}
				seenE[x] = true
				o.reachElems = append(o.reachElems, x)
				for j := 0; j < x.Nnodes(); j++ {
					if m := x.Node(j); !seenN[m] {
						seenN[m] = true
						deque = append(deque, m)
					}
				}
			}
		}
	}

	// effort-forced nodes (at most one forcer per node, by the setup check)
	o.forced = make(map[*ele.Node]ele.Element)
	for _, e := range o.reachElems {
		if e.Kind().IsEffortForcing() {
			for j := 0; j < e.Nnodes(); j++ {
				o.forced[e.Node(j)] = e
			}
		}
	}

	// self-solving resistors: both endpoints forced; I = (Ea-Eb)/R without any context
	selfsolve := make(map[ele.Element]bool)
	for _, e := range o.reachElems {
		if e.Kind().IsResistor() && e.Nnodes() == 2 && o.forced[e.Node(0)] != nil && o.forced[e.Node(1)] != nil {
			selfsolve[e] = true
			o.SelfSolving = append(o.SelfSolving, e)
		}
	}

	// partition the remaining elements into subnets bounded by effort-forced nodes
	assigned := make(map[ele.Element]bool)
	for _, start := range o.reachElems {
		if assigned[start] || selfsolve[start] || start.Kind().IsEffortForcing() {
			continue
		}
		sn := &Subnet{}
		inN := make(map[*ele.Node]bool)
		inE := make(map[ele.Element]bool)
		stack := []ele.Element{start}
		assigned[start] = true
		inE[start] = true
		sn.Elems = append(sn.Elems, start)
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for j := 0; j < e.Nnodes(); j++ {
				n := e.Node(j)
				if !inN[n] {
					inN[n] = true
					sn.Nodes = append(sn.Nodes, n)
				}
				if f := o.forced[n]; f != nil {
					// boundary: take the forcer in as reference but do not walk through
					if !inE[f] {
						inE[f] = true
						sn.Elems = append(sn.Elems, f)
					}
					continue
				}
				for i := 0; i < n.Nelements(); i++ {
					x := n.Elem(i)
					if inE[x] || selfsolve[x] || x.Kind().IsEffortForcing() {
						continue
					}
					inE[x] = true
					assigned[x] = true
					sn.Elems = append(sn.Elems, x)
					stack = append(stack, x)
				}
			}
		}
		o.Subnets = append(o.Subnets, sn)
	}

	// choose the solver binding per subnet
	for _, sn := range o.Subnets {
		nlin, norg, storage := false, 0, false
		for _, e := range sn.Elems {
			if !e.IsLinear() {
				nlin = true
			}
			switch e.Kind() {
			case ele.KindOrigin:
				norg++
			case ele.KindCapacitance:
				storage = true
			}
			if fi, ok := e.(ele.FlowInjector); ok && fi.InjectsFlow() {
				storage = true
			}
		}
		view := &ele.Network{Prm: prm, Nodes: sn.Nodes, Elems: sn.Elems}
		switch {
		case nlin:
			sn.Binding = BindIterator
			sn.It = NewSimpleIterator(prm, sn.Elems)
		case storage || norg > 1:
			sn.Binding = BindTransfer
			sn.Ts, err = NewTransferSubnet(prm, sn.Nodes, sn.Elems)
			if err != nil {
				return nil, err
			}
		case norg == 0:
			// no reference anywhere: iterative propagation is all that can be done
			sn.Binding = BindIterator
			sn.It = NewSimpleIterator(prm, sn.Elems)
		default:
			sn.Binding = BindSuperPosition
			sn.Sp, err = NewSuperPosition(prm, view)
			if err != nil {
				return nil, err
			}
		}
	}

	// expansion elements need a non-branching path to the nearest capacitance; the twin
	// flows along that path are not physical and must not transfer back
	for _, sn := range o.Subnets {
		for _, e := range sn.Elems {
			fi, ok := e.(ele.FlowInjector)
			if !ok || !fi.InjectsFlow() || e.Nnodes() != 2 {
				continue
			}
			path, found := o.traceToCapacitance(e)
			if !found {
				return nil, ele.ErrModel("expansion element %d has no non-branching path to a capacitance", e.Id())
			}
			if sn.Ts != nil {
				sn.Ts.MarkNoFlowTransfer(append(path, e))
			}
		}
	}

	o.Last = NewSimpleIterator(prm, o.reachElems)
	return
}

// traceToCapacitance walks from both ends of e through single-link nodes until a
// capacitance-forced node is found
func (o *Decomposer) traceToCapacitance(e ele.Element) (path []ele.Element, found bool) {
	for p := 0; p < 2; p++ {
		path = path[:0]
		prev := e
		cur := e.Node(p)
		for steps := 0; steps < len(o.reachElems)+1; steps++ {
			if f := o.forced[cur]; f != nil {
				if _, iscap := f.(*ele.Capacitance); iscap {
					return path, true
				}
				break
			}
			next, err := cur.OnlyOtherElement(prev)
			if err != nil {
				break // branching node: this direction fails
			}
			other, oerr := ele.OnlyOtherNode(next, cur)
			if oerr != nil {
				break
			}
			path = append(path, next)
			prev, cur = next, other
		}
	}
	return nil, false
}

// PrepareCalculation resets the tick state: the tick-end sweep, the self-solving
// resistors, then the transfer subnets, superpositions and nonlinear nets
func (o *Decomposer) PrepareCalculation() (err error) {
	o.Warnings = 0
	for _, n := range o.reachNodes {
		n.ClearState()
	}
	o.Last.PrepareCalculation()
	var ordered []*Subnet
	for _, bind := range []int{BindTransfer, BindSuperPosition, BindIterator} {
		for _, sn := range o.Subnets {
			if sn.Binding == bind {
				ordered = append(ordered, sn)
			}
		}
	}
	for _, sn := range ordered {
		switch sn.Binding {
		case BindTransfer:
			if err = sn.Ts.PrepareCalculation(); err != nil {
				return
			}
		case BindSuperPosition:
			if err = sn.Sp.PrepareCalculation(); err != nil {
				return
			}
		case BindIterator:
			sn.It.PrepareCalculation()
		}
	}
	return
}

// DoCalculation runs one tick: transfer subnets, then the global enforcers, the
// self-solving resistors, the superpositions, the nonlinear nets and the final sweep
func (o *Decomposer) DoCalculation() (err error) {

	for _, sn := range o.Subnets {
		if sn.Binding == BindTransfer {
			if err = sn.Ts.DoCalculation(); err != nil {
				return
			}
			o.Warnings += sn.Ts.Warnings
		}
	}

	if err = o.Last.DoCalculationOnEnforcerElements(); err != nil {
		return
	}

	for _, e := range o.SelfSolving {
		if _, err = e.DoCalculation(); err != nil {
			if ele.IsCalcErr(err) {
				o.warn("%v", err)
				err = nil
				continue
			}
			return
		}
	}

	for _, sn := range o.Subnets {
		if sn.Binding == BindSuperPosition {
			if err = sn.Sp.DoCalculation(); err != nil {
				return
			}
			o.Warnings += sn.Sp.Warnings
		}
	}

	for _, sn := range o.Subnets {
		if sn.Binding == BindIterator {
			if err = sn.It.DoCalculation(); err != nil {
				return
			}
			o.Warnings += sn.It.Warnings
		}
	}

	// tick-end sweep over everything reachable
	if err = o.Last.DoCalculation(); err != nil {
		return
	}
	o.Warnings += o.Last.Warnings

	// completeness report
	for _, e := range o.reachElems {
		if !e.IsCalculationFinished() {
			o.warn("element %d (kind %q) is not fully solved at tick end", e.Id(), e.Kind())
		}
	}
	return
}

// IsCalculationFinished tells whether every reachable element completed its local values
func (o *Decomposer) IsCalculationFinished() bool { return o.Last.IsCalculationFinished() }

// warn logs and counts a recoverable inconsistency
func (o *Decomposer) warn(msg string, prm ...interface{}) {
	o.Warnings++
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: "+msg+"\n", prm...)
	}
}
