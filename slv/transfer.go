// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"math"

	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// TransferSubnet reduces a heterogeneous subnet (mixed domains, capacitance boundaries,
// arbitrary linear two-port media) to a pure linear electrical twin per tick, solves the
// twin by superposition and transfers the results back:
//
//   - one twin node per linked node, with self-capacitance nodes merged to a canonical
//     representative
//   - resistors become linear dissipators; sources stay sources
//   - a capacitance becomes an effort source between ground and its node
//   - exactly one ground origin is kept; further origins with the same effort merge into
//     the ground node and further origins with a different effort become effort sources
type TransferSubnet struct {

	// constants
	Prm   *inp.SolverData
	Nodes []*ele.Node   // registered subnet nodes
	Elems []ele.Element // registered subnet elements

	// twin side
	Twin     *ele.Network
	tnode    map[*ele.Node]*ele.Node     // subnet node => twin node (canonical)
	telem    map[ele.Element]ele.Element // subnet element => twin element; absent for merged origins
	capsrc   map[*ele.Capacitance]*ele.EffortSource
	orgsrc   map[*ele.Origin]*ele.EffortSource
	ground   *ele.Origin // the subnet origin elected as ground; nil when a capacitance grounds the twin
	gcap     *ele.Capacitance
	gtwin    *ele.Origin          // the single twin origin
	gnode    *ele.Node            // twin ground node
	noFlow   map[ele.Element]bool // elements excluded from solved-flow back-propagation
	Sp       *SuperPosition
	Warnings int
}

// NewTransferSubnet validates the registration and builds the electrical twin
func NewTransferSubnet(prm *inp.SolverData, nodes []*ele.Node, elems []ele.Element) (o *TransferSubnet, err error) {
	o = &TransferSubnet{Prm: prm, Nodes: nodes, Elems: elems}
	o.noFlow = make(map[ele.Element]bool)

	inScope := make(map[ele.Element]bool)
	for _, e := range elems {
		inScope[e] = true
	}
	nodeReg := make(map[*ele.Node]bool)
	for _, n := range nodes {
		nodeReg[n] = true
	}

	// every registered node must be used
	for _, n := range nodes {
		used := false
		for i := 0; i < n.Nelements(); i++ {
			if inScope[n.Elem(i)] {
				used = true
				break
			}
		}
		if !used {
			return nil, ele.ErrModel("transfer subnet: node %d is not used by any registered element", n.Id())
		}

		// an all-resistor node with a missing neighbour makes the twin underdetermined
		allres := true
		for i := 0; i < n.Nelements(); i++ {
			if !n.Elem(i).Kind().IsResistor() {
				allres = false
				break
			}
		}
		if allres {
			for i := 0; i < n.Nelements(); i++ {
				if !inScope[n.Elem(i)] {
					return nil, ele.ErrModel("transfer subnet: node %d carries resistors only but element %d is not registered",
						n.Id(), n.Elem(i).Id())
				}
			}
		}
	}

	// two-port elements need both nodes registered; self-capacitances are exempt
	for _, e := range elems {
		if _, iscap := e.(*ele.Capacitance); iscap {
			continue
		}
		for i := 0; i < e.Nnodes(); i++ {
			if !nodeReg[e.Node(i)] {
				return nil, ele.ErrModel("transfer subnet: element %d uses unregistered node %d", e.Id(), e.Node(i).Id())
			}
		}
	}

	// elect the ground
	for _, e := range elems {
		if org, ok := e.(*ele.Origin); ok {
			o.ground = org
			break
		}
	}
	if o.ground == nil {
		for _, e := range elems {
			if cap, ok := e.(*ele.Capacitance); ok {
				o.gcap = cap
				break
			}
		}
		if o.gcap == nil {
			return nil, ele.ErrModel("transfer subnet: no origin and no capacitance to ground the twin")
		}
	}

	// canonical node classes: self-capacitance nodes collapse to the first one and
	// same-effort extra origins collapse into the ground node
	canon := make(map[*ele.Node]*ele.Node)
	rep := func(n *ele.Node) *ele.Node {
		for canon[n] != nil {
			n = canon[n]
		}
		return n
	}
	for _, e := range elems {
		if cap, ok := e.(*ele.Capacitance); ok && cap.Nnodes() > 1 {
			first := rep(cap.Node(0))
			for i := 1; i < cap.Nnodes(); i++ {
				if r := rep(cap.Node(i)); r != first {
					canon[r] = first
				}
			}
		}
	}
	groundE := o.groundEffort()
	var groundSubnetNode *ele.Node
	if o.ground != nil {
		groundSubnetNode = o.ground.Nod
	} else {
		groundSubnetNode = o.gcap.Node(0)
	}
	o.orgsrc = make(map[*ele.Origin]*ele.EffortSource)
	for _, e := range elems {
		org, ok := e.(*ele.Origin)
		if !ok || org == o.ground {
			continue
		}
		if math.Abs(org.Eref-groundE) <= prm.Eps {
			if r := rep(org.Nod); r != rep(groundSubnetNode) {
				canon[r] = rep(groundSubnetNode)
			}
		}
	}

	// twin nodes
	o.Twin = ele.NewNetwork(prm)
	o.tnode = make(map[*ele.Node]*ele.Node)
	for _, n := range nodes {
		r := rep(n)
		if o.tnode[r] == nil {
			o.tnode[r] = o.Twin.NewNode("electrical")
		}
		o.tnode[n] = o.tnode[r]
	}
	o.gnode = o.tnode[groundSubnetNode]

	// twin ground origin
	o.gtwin = ele.NewOrigin(len(o.Twin.Elems), prm, groundE)
	o.Twin.AddElement(o.gtwin)
	if err = o.Twin.Connect(o.gtwin, o.gnode); err != nil {
		return nil, err
	}

	// twin elements
	o.telem = make(map[ele.Element]ele.Element)
	o.capsrc = make(map[*ele.Capacitance]*ele.EffortSource)
	for _, e := range elems {
		switch t := e.(type) {
		case *ele.Origin:
			if t == o.ground || math.Abs(t.Eref-groundE) <= prm.Eps {
				continue // represented by the twin ground
			}
			src := ele.NewEffortSource(len(o.Twin.Elems), prm, t.Eref-groundE)
			o.Twin.AddElement(src)
			if err = o.Twin.ConnectBetween(src, o.gnode, o.tnode[t.Nod]); err != nil {
				return nil, err
			}
			o.orgsrc[t] = src
		case *ele.Capacitance:
			if t == o.gcap {
				continue // grounds the twin directly
			}
			src := ele.NewEffortSource(len(o.Twin.Elems), prm, t.Eb-groundE)
			o.Twin.AddElement(src)
			if err = o.Twin.ConnectBetween(src, o.gnode, o.tnode[t.Node(0)]); err != nil {
				return nil, err
			}
			o.capsrc[t] = src
		default:
			if !e.IsLinear() {
				return nil, ele.ErrModel("transfer subnet: element %d is nonlinear; route its subnet to iterative propagation", e.Id())
			}
			twin, terr := MakeTwin(e, len(o.Twin.Elems), prm)
			if terr != nil {
				return nil, terr
			}
			o.Twin.AddElement(twin)
			for i := 0; i < e.Nnodes(); i++ {
				if err = o.Twin.Connect(twin, o.tnode[e.Node(i)]); err != nil {
					return nil, err
				}
			}
			o.telem[e] = twin
		}
	}

	o.Sp, err = NewSuperPosition(prm, o.Twin)
	return
}

// groundEffort returns the effort pinning the twin ground this tick
func (o *TransferSubnet) groundEffort() float64 {
	if o.ground != nil {
		return o.ground.Eref
	}
	return o.gcap.Eb
}

// MarkNoFlowTransfer excludes elements from solved-flow back-propagation. Used for the
// path between an expansion element and its capacitance, where the twin flows do not
// match the physical ones.
func (o *TransferSubnet) MarkNoFlowTransfer(elems []ele.Element) {
	for _, e := range elems {
		o.noFlow[e] = true
	}
}

// PrepareCalculation copies the subnet parameter values of this tick into the twin
func (o *TransferSubnet) PrepareCalculation() (err error) {
	o.Warnings = 0
	groundE := o.groundEffort()
	o.gtwin.Eref = groundE
	for e, twin := range o.telem {
		CopyTwinValues(e, twin)
	}
	for cap, src := range o.capsrc {
		src.Eval = cap.Eb - groundE
	}
	for org, src := range o.orgsrc {
		src.Eval = org.Eref - groundE
	}
	return o.Sp.PrepareCalculation()
}

// DoCalculation solves the twin and transfers efforts and flows back onto the subnet
func (o *TransferSubnet) DoCalculation() (err error) {
	if err = o.Sp.DoCalculation(); err != nil {
		return
	}
	o.Warnings += o.Sp.Warnings

	// twin node efforts back onto the subnet nodes
	for _, n := range o.Nodes {
		tn := o.tnode[n]
		if tn != nil && tn.EffortUpdated() {
			if err = o.recover(n.SetEffort(tn.Effort(), nil, false)); err != nil {
				return
			}
		}
	}

	// transferable element flows
	for e, twin := range o.telem {
		if o.noFlow[e] || e.Nnodes() != 2 {
			continue
		}
		if j, known := ThroughFlow(twin); known {
			if err = o.recover(SetThroughFlow(e, j, false)); err != nil {
				return
			}
		}
	}

	// capacitance flows from their twin sources (into the capacitance node)
	for cap, src := range o.capsrc {
		if o.noFlow[cap] {
			continue
		}
		tn := src.Node(1)
		if tn.FlowUpdated(src) {
			if err = o.recover(cap.Node(0).SetFlow(tn.Flow(src), cap, false)); err != nil {
				return
			}
		}
	}

	// back-fill efforts of still-unset nodes from any reachable neighbour
	inScope := make(map[ele.Element]bool)
	for _, e := range o.Elems {
		inScope[e] = true
	}
	for changed := true; changed; {
		changed = false
		for _, n := range o.Nodes {
			if n.EffortUpdated() {
				continue
			}
			for i := 0; i < n.Nelements(); i++ {
				e := n.Elem(i)
				if !inScope[e] || e.Nnodes() != 2 {
					continue
				}
				other, oerr := ele.OnlyOtherNode(e, n)
				if oerr != nil || !other.EffortUpdated() {
					continue
				}
				if err = o.recover(n.SetEffort(other.Effort(), nil, false)); err != nil {
					return
				}
				changed = true
				break
			}
		}
	}

	// dead-end node flows pin to zero; remaining unflowed in-scope nodes are reported
	for _, n := range o.Nodes {
		if n.Nelements() == 1 && !n.FlowUpdated(n.Elem(0)) {
			if err = o.recover(n.SetFlow(0, n.Elem(0), false)); err != nil {
				return
			}
		}
		if missing, val, ok := n.MissingFlow(); ok {
			if err = o.recover(n.SetFlow(val, missing, false)); err != nil {
				return
			}
		}
	}
	for _, n := range o.Nodes {
		if n.AllFlowsUpdated() {
			continue
		}
		allin, marked := true, false
		for i := 0; i < n.Nelements(); i++ {
			if !inScope[n.Elem(i)] {
				allin = false
			}
			if o.noFlow[n.Elem(i)] {
				marked = true
			}
		}
		if allin && !marked {
			o.warn("node %d has unsolved flows after transfer", n.Id())
		}
	}
	return
}

// IsCalculationFinished tells whether the twin was fully solved
func (o *TransferSubnet) IsCalculationFinished() bool { return o.Sp.IsCalculationFinished() }

// recover filters recoverable inconsistencies: the first written value wins
func (o *TransferSubnet) recover(err error) error {
	if err != nil && ele.IsCalcErr(err) {
		o.warn("%v", err)
		return nil
	}
	return err
}

// warn logs and counts a recoverable inconsistency
func (o *TransferSubnet) warn(msg string, prm ...interface{}) {
	o.Warnings++
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: "+msg+"\n", prm...)
	}
}
