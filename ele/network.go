// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/enet/inp"
)

// Network is the arena owning nodes and elements. Handles are stable integer ids and
// connectivity is recorded in both directions: nodes know their incident elements in
// registration order and elements know their nodes in port order. Child networks built by
// the solvers own their copies; the solvers keep the maps from parent nodes and elements
// to those copies.
type Network struct {
	Prm      *inp.SolverData
	Nodes    []*Node
	Elems    []Element
	Warnings int // count of recoverable numerical inconsistencies (reliability signal)
}

// NewNetwork returns a new empty network
func NewNetwork(prm *inp.SolverData) *Network {
	return &Network{Prm: prm}
}

// NewNode creates a node owned by this network
func (o *Network) NewNode(domain string) *Node {
	n := &Node{Vid: len(o.Nodes), Domain: domain, Prm: o.Prm}
	o.Nodes = append(o.Nodes, n)
	return n
}

// AddElement registers an element in this network. The element must be connected to its
// nodes via Connect/ConnectBetween before the setup check.
func (o *Network) AddElement(e Element) {
	o.Elems = append(o.Elems, e)
}

// Connect links an element and a node, registering each on the other. Only same-domain
// elements may connect: all nodes of one element must carry the same domain tag.
func (o *Network) Connect(e Element, n *Node) (err error) {
	for i := 0; i < e.Nnodes(); i++ {
		if e.Node(i).Domain != n.Domain {
			return ErrModel("element %d: cannot connect node %d (domain %q) with node %d (domain %q)",
				e.Id(), e.Node(i).Id(), e.Node(i).Domain, n.Id(), n.Domain)
		}
	}
	e.RegisterNode(n)
	n.register(e)
	return
}

// ConnectBetween links a two-port element with nodes a (port 0) and b (port 1)
func (o *Network) ConnectBetween(e Element, a, b *Node) (err error) {
	if err = o.Connect(e, a); err != nil {
		return
	}
	return o.Connect(e, b)
}

// CheckSetup verifies the static invariants of the assembled network
func (o *Network) CheckSetup() (err error) {

	// elements fully connected, with legal port counts
	for _, e := range o.Elems {
		switch e.Kind() {
		case KindOrigin:
			if e.Nnodes() != 1 {
				return ErrModel("origin %d must have exactly 1 node; has %d", e.Id(), e.Nnodes())
			}
		case KindCapacitance:
			if e.Nnodes() < 1 {
				return ErrModel("capacitance %d is not connected", e.Id())
			}
		default:
			if e.Nnodes() != 2 {
				return ErrModel("element %d must have exactly 2 nodes; has %d", e.Id(), e.Nnodes())
			}
		}
	}

	// nodes used, and at most one effort-forcing element per node
	for _, n := range o.Nodes {
		if n.Nelements() == 0 {
			return ErrModel("node %d is not used by any element", n.Id())
		}
		nforce := 0
		for i := 0; i < n.Nelements(); i++ {
			if n.Elem(i).Kind().IsEffortForcing() {
				nforce++
			}
		}
		if nforce > 1 {
			return ErrModel("node %d has %d effort-forcing elements; at most one is allowed", n.Id(), nforce)
		}
	}
	return
}

// CheckTick verifies the per-tick topology invariants that depend on element kinds:
// an effort source in parallel with a bridged connection is unsolvable
func (o *Network) CheckTick() (err error) {
	for _, e := range o.Elems {
		if e.Kind() != KindEffortSource || e.Nnodes() != 2 {
			continue
		}
		a, b := e.Node(0), e.Node(1)
		for i := 0; i < a.Nelements(); i++ {
			other := a.Elem(i)
			if other == e || other.Kind() != KindBridged || other.Nnodes() != 2 {
				continue
			}
			if (other.Node(0) == a && other.Node(1) == b) || (other.Node(0) == b && other.Node(1) == a) {
				return ErrModel("effort source %d is shorted by bridged element %d", e.Id(), other.Id())
			}
		}
	}
	return
}

// ClearState resets the per-tick updated bits of all nodes
func (o *Network) ClearState() {
	for _, n := range o.Nodes {
		n.ClearState()
	}
}

// PrepareCalculation resets per-tick state of nodes and elements
func (o *Network) PrepareCalculation() {
	o.ClearState()
	for _, e := range o.Elems {
		e.PrepareCalculation()
	}
}

// IsCalculationFinished tells whether all elements completed their local values
func (o *Network) IsCalculationFinished() bool {
	for _, e := range o.Elems {
		if !e.IsCalculationFinished() {
			return false
		}
	}
	return true
}

// FlowResidual returns the largest flow-sum magnitude over nodes with all flows set,
// together with the corresponding node id
func (o *Network) FlowResidual() (res float64, vid int) {
	vid = -1
	for _, n := range o.Nodes {
		if !n.AllFlowsUpdated() {
			continue
		}
		s := n.SumFlows()
		if s < 0 {
			s = -s
		}
		if s > res {
			res = s
			vid = n.Id()
		}
	}
	return
}
