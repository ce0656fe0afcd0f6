// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// RecursiveSimplifier reduces a single-source network layer by layer until a terminal
// residual remains. One step performs exactly one class of simplification, in priority
// order: dead-end removal, parallel/series fusion, star-delta, star-square, then the
// generalized star-polygon. The terminal residual is solved in closed form when it
// matches a known small case, by iterative propagation otherwise.
//
// Values flow parent→child during prepare (fused resistances and transform resistances
// are recomputed) and child→parent during the calculation (back-transforms, fused
// push-backs, then a propagation sweep over the parent; floating loops are resolved
// last).
type RecursiveSimplifier struct {

	// constants
	Prm   *inp.SolverData
	Par   *ele.Network // network of this layer
	Depth int

	// provenance of the step applied to this layer
	Dead  []ele.Element         // elements removed with a 1-degree node; zero flow
	Fused []*SimplifiedResistor // series/parallel fusions created by this step
	Trans []*StarPolygon        // star-polygon transform applied by this step

	// parent→child linkage (index relation; the child owns its twins)
	cmap   map[*ele.Node]*ele.Node     // surviving parent node => child node
	twinOf map[ele.Element]ele.Element // surviving parent element => child twin

	// next layer
	Child *ele.Network
	Sub   *RecursiveSimplifier

	// terminal solvers; exactly one of these is chosen when no step applies
	two   *TwoSeriesSolver
	delta *DeltaSourceSolver
	term  *SimpleIterator

	// parent sweep
	parIter  *SimpleIterator
	Warnings int
}

// NewRecursiveSimplifier builds the full layer stack for nw at setup time. The topology
// of every child is immutable afterwards; only parameter values flow through per tick.
func NewRecursiveSimplifier(prm *inp.SolverData, nw *ele.Network, depth int) (o *RecursiveSimplifier, err error) {
	if depth > prm.NmaxRec {
		return nil, ele.ErrModel("network simplification did not terminate within %d layers", prm.NmaxRec)
	}
	o = &RecursiveSimplifier{Prm: prm, Par: nw, Depth: depth}
	o.parIter = NewSimpleIterator(prm, nw.Elems)

	stepped, err := o.step()
	if err != nil {
		return nil, err
	}
	if stepped {
		o.Sub, err = NewRecursiveSimplifier(prm, o.Child, depth+1)
		return
	}

	// terminal residual
	n := len(nw.Elems)
	if n <= 4 {
		if prm.ShowWarn {
			io.Pf("layer %d: terminal residual with %d elements\n", depth, n)
		}
	} else {
		o.warn("layer %d: terminal residual still has %d elements; falling back to propagation", depth, n)
	}
	if o.two, _ = NewTwoSeriesSolver(prm, nw); o.two != nil {
		return
	}
	if o.delta, _ = NewDeltaSourceSolver(prm, nw); o.delta != nil {
		return
	}
	o.term = NewSimpleIterator(prm, nw.Elems)
	return
}

// step tries the simplification classes in priority order and builds the child network
// for the first one that applies. stepped is false when the layer is terminal.
func (o *RecursiveSimplifier) step() (stepped bool, err error) {

	removedEl := make(map[ele.Element]bool)
	removedNd := make(map[*ele.Node]bool)

	// 1. dead-end removal
	for _, e := range o.Par.Elems {
		if e.Kind().IsEnforcer() || e.Nnodes() != 2 {
			continue
		}
		for i := 0; i < 2; i++ {
			if e.Node(i).Nelements() == 1 {
				removedEl[e] = true
				removedNd[e.Node(i)] = true
				o.Dead = append(o.Dead, e)
				break
			}
		}
	}

	// 2. parallel/series fusion
	if len(o.Dead) == 0 {
		o.findFusions(removedEl, removedNd)
	}

	// 3.-5. star transforms
	if len(o.Dead) == 0 && len(o.Fused) == 0 {
		// candidates by branch count: 3 (star-delta), then 4 (star-square), then more
		var cands []*ele.Node
		for _, want := range []int{3, 4, 0} {
			for _, n := range o.Par.Nodes {
				k := n.Nelements()
				if k == want || (want == 0 && k > 4) {
					cands = append(cands, n)
				}
			}
		}
		for _, n := range cands {
			if !o.isStarNode(n) {
				continue
			}
			var tr *StarPolygon
			switch n.Nelements() {
			case 3:
				var sd *StarDelta
				if sd, err = NewStarDelta(o.Prm, n); err == nil {
					tr = &sd.StarPolygon
				}
			case 4:
				var ss *StarSquare
				if ss, err = NewStarSquare(o.Prm, n); err == nil {
					tr = &ss.StarPolygon
				}
			default:
				tr, err = NewStarPolygon(o.Prm, n)
			}
			if err != nil {
				err = nil // this node does not qualify after all; keep searching
				continue
			}
			tr.warnings = &o.Warnings
			o.Trans = append(o.Trans, tr)
			removedNd[n] = true
			for _, b := range tr.Branches {
				removedEl[b] = true
			}
			break // one transform per step
		}
	}

	if len(o.Dead) == 0 && len(o.Fused) == 0 && len(o.Trans) == 0 {
		return false, nil
	}

	// build the strictly simpler child network
	o.Child = ele.NewNetwork(o.Prm)
	o.cmap = make(map[*ele.Node]*ele.Node)
	o.twinOf = make(map[ele.Element]ele.Element)
	for _, n := range o.Par.Nodes {
		if !removedNd[n] {
			o.cmap[n] = o.Child.NewNode(n.Domain)
		}
	}
	for _, e := range o.Par.Elems {
		if removedEl[e] {
			continue
		}
		twin, terr := MakeTwin(e, len(o.Child.Elems), o.Prm)
		if terr != nil {
			return false, terr
		}
		o.Child.AddElement(twin)
		for i := 0; i < e.Nnodes(); i++ {
			if err = o.Child.Connect(twin, o.cmap[e.Node(i)]); err != nil {
				return false, err
			}
		}
		o.twinOf[e] = twin
	}
	for _, f := range o.Fused {
		if f.FloatingLoop {
			continue
		}
		f.Fused = ele.NewDsp(len(o.Child.Elems), o.Prm, 1)
		o.Child.AddElement(f.Fused)
		if err = o.Child.ConnectBetween(f.Fused, o.cmap[f.Pnodes[0]], o.cmap[f.Pnodes[1]]); err != nil {
			return false, err
		}
	}
	for _, tr := range o.Trans {
		if err = tr.Build(o.Child, o.cmap); err != nil {
			return false, err
		}
	}
	return true, nil
}

// findFusions detects parallel groups and series chains among the resistor-family
// elements and records the corresponding fusions and removals
func (o *RecursiveSimplifier) findFusions(removedEl map[ele.Element]bool, removedNd map[*ele.Node]bool) {

	// parallel groups: resistors sharing the same endpoint pair
	type pair struct{ a, b *ele.Node }
	groups := make(map[pair][]ele.Dissipator)
	var order []pair
	for _, e := range o.Par.Elems {
		d, ok := e.(ele.Dissipator)
		if !ok || !e.Kind().IsResistor() || e.Nnodes() != 2 {
			continue
		}
		a, b := e.Node(0), e.Node(1)
		if b.Id() < a.Id() {
			a, b = b, a
		}
		p := pair{a, b}
		if len(groups[p]) == 0 {
			order = append(order, p)
		}
		groups[p] = append(groups[p], d)
	}
	for _, p := range order {
		g := groups[p]
		if len(g) < 2 {
			continue
		}
		f := NewParallelResistor(o.Prm, g, p.a, p.b)
		o.Fused = append(o.Fused, f)
		for _, d := range g {
			removedEl[d] = true
		}
	}

	// series chains: walk maximal non-branching runs through inner nodes
	inner := func(n *ele.Node) bool {
		if removedNd[n] || n.Nelements() != 2 {
			return false
		}
		for i := 0; i < 2; i++ {
			e := n.Elem(i)
			if !e.Kind().IsResistor() || e.Nnodes() != 2 || removedEl[e] {
				return false
			}
		}
		return true
	}
	visited := make(map[*ele.Node]bool)
	for _, n := range o.Par.Nodes {
		if visited[n] || !inner(n) {
			continue
		}

		// expand to both ends
		chainEl := []ele.Dissipator{n.Elem(0).(ele.Dissipator)}
		chainNd := []*ele.Node{n}
		visited[n] = true
		grow := func(from *ele.Node, via ele.Element, prepend bool) *ele.Node {
			cur, e := from, via
			for {
				next, nerr := ele.OnlyOtherNode(e, cur)
				if nerr != nil || !inner(next) || visited[next] {
					return next
				}
				visited[next] = true
				ne, eerr := next.OnlyOtherElement(e)
				if eerr != nil {
					return next
				}
				if prepend {
					chainEl = append([]ele.Dissipator{ne.(ele.Dissipator)}, chainEl...)
					chainNd = append([]*ele.Node{next}, chainNd...)
				} else {
					chainEl = append(chainEl, ne.(ele.Dissipator))
					chainNd = append(chainNd, next)
				}
				cur, e = next, ne
			}
		}
		end1 := grow(n, n.Elem(0), true)

		// a chain that wrapped around is a closed ring: every element is in already
		second := n.Elem(1).(ele.Dissipator)
		wrapped := false
		for _, d := range chainEl {
			if ele.Element(d) == ele.Element(second) {
				wrapped = true
				break
			}
		}
		end2 := end1
		if !wrapped {
			chainEl = append(chainEl, second)
			end2 = grow(n, n.Elem(1), false)
		}

		// order the enclosed nodes from end1 to end2: chainNd was built head-first
		f := NewSeriesResistor(o.Prm, chainEl, chainNd, end1, end2)
		o.Fused = append(o.Fused, f)
		for _, d := range chainEl {
			removedEl[d] = true
		}
		for _, nd := range chainNd {
			removedNd[nd] = true
		}
	}
}

// isStarNode tells whether n qualifies for a star-polygon transform: at least 3 branches,
// all of resistor kind (no sources, origins or capacitors attached), each leading
// somewhere
func (o *RecursiveSimplifier) isStarNode(n *ele.Node) bool {
	if n.Nelements() < 3 {
		return false
	}
	for i := 0; i < n.Nelements(); i++ {
		e := n.Elem(i)
		if !e.Kind().IsResistor() || e.Nnodes() != 2 {
			return false
		}
		if _, ok := e.(ele.Dissipator); !ok {
			return false
		}
		outer, err := ele.OnlyOtherNode(e, n)
		if err != nil || outer.Nelements() < 2 {
			return false
		}
	}
	return true
}

// PrepareRecursiveCalculation pushes the parameter values of this tick top-down: parent
// values into the child twins, fused resistances and transform resistances recomputed,
// then the child layer
func (o *RecursiveSimplifier) PrepareRecursiveCalculation() (err error) {
	o.Warnings = 0
	o.Par.ClearState()
	o.parIter.PrepareCalculation()
	for pe, ce := range o.twinOf {
		CopyTwinValues(pe, ce)
	}
	for _, f := range o.Fused {
		if err = f.Prepare(); err != nil {
			return
		}
	}
	for _, tr := range o.Trans {
		if err = tr.Prepare(); err != nil {
			return
		}
	}
	if o.Sub != nil {
		return o.Sub.PrepareRecursiveCalculation()
	}
	return
}

// DoRecursiveCalculation solves bottom-up: the leaf residual first, then each layer
// back-assigns child results, sweeps the parent and resolves floating loops last
func (o *RecursiveSimplifier) DoRecursiveCalculation() (err error) {

	// terminal layer
	if o.Sub == nil {
		if err = o.Par.CheckTick(); err != nil {
			return
		}
		switch {
		case o.two != nil:
			err = o.two.Solve()
		case o.delta != nil:
			err = o.delta.Solve()
		default:
			o.term.Warnings = 0
			err = o.term.DoCalculation()
			o.Warnings += o.term.Warnings
		}
		return
	}

	// child first
	if err = o.Sub.DoRecursiveCalculation(); err != nil {
		return
	}
	o.Warnings += o.Sub.Warnings

	// child node efforts back to the surviving parent nodes
	for pn, cn := range o.cmap {
		if cn.EffortUpdated() {
			if err = o.setback(pn.SetEffort(cn.Effort(), nil, false)); err != nil {
				return
			}
		}
	}

	// child twin flows back to the surviving parent elements
	for pe, ce := range o.twinOf {
		if pe.Nnodes() == 2 {
			if j, known := ThroughFlow(ce); known {
				if err = o.setback(SetThroughFlow(pe, j, false)); err != nil {
					return
				}
			}
			continue
		}
		for i := 0; i < pe.Nnodes(); i++ {
			cn := ce.Node(i)
			if cn.FlowUpdated(ce) {
				if err = o.setback(pe.Node(i).SetFlow(cn.Flow(ce), pe, false)); err != nil {
					return
				}
			}
		}
	}

	// star back-transforms
	for _, tr := range o.Trans {
		if err = tr.BackTransform(); err != nil {
			return
		}
	}

	// fused push-backs (floating loops wait for the sweep)
	for _, f := range o.Fused {
		if !f.FloatingLoop {
			if err = o.setback(f.PushResults()); err != nil {
				return
			}
		}
	}

	// dead ends carry nothing
	for _, e := range o.Dead {
		if err = o.setback(SetThroughFlow(e, 0, false)); err != nil {
			return
		}
	}

	// parent propagation sweep
	if err = o.parIter.DoCalculation(); err != nil {
		return
	}
	o.Warnings += o.parIter.Warnings

	// floating loops last: they need their endpoint effort from the sweep
	for _, f := range o.Fused {
		if f.FloatingLoop {
			if err = o.setback(f.PushResults()); err != nil {
				return
			}
		}
	}

	// final consistency check
	if !o.Par.IsCalculationFinished() {
		o.warn("layer %d: network is not fully solved after back-assignment", o.Depth)
	}
	return
}

// setback filters recoverable inconsistencies during back-assignment: the first written
// value wins and the mismatch is only logged
func (o *RecursiveSimplifier) setback(err error) error {
	if err != nil && ele.IsCalcErr(err) {
		o.warn("%v", err)
		return nil
	}
	return err
}

// warn logs and counts a recoverable inconsistency
func (o *RecursiveSimplifier) warn(msg string, prm ...interface{}) {
	o.Warnings++
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: "+msg+"\n", prm...)
	}
}
