// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
)

// Overlay is one superposition layer: the original subnet with a single retained source.
// Every other effort source becomes a short and every other flow source becomes an open.
// Nodes across the retained shorts are merged to a canonical representative (preferring
// the ground node), chains hanging off the opened flow sources are excised, and elements
// whose endpoints merged together are dropped as zero-flow. The reduced layer is then
// handed to a recursive simplifier.
type Overlay struct {

	// constants
	Prm  *inp.SolverData
	Par  *ele.Network // the multi-source subnet
	Sole ele.Element  // the retained source

	// reduction bookkeeping
	repr     map[*ele.Node]*ele.Node     // parent node => canonical parent node after merges
	nodeOf   map[*ele.Node]*ele.Node     // canonical parent node => layer node
	twinOf   map[ele.Element]ele.Element // active parent element => layer twin
	excluded map[ele.Element]bool        // zero-flow parent elements in this layer
	dead     bool                        // no closed loop contains the sole source

	// layer network and its solver
	Net *ele.Network
	Rs  *RecursiveSimplifier

	// per tick
	Skip     bool // the sole source value is literally zero; contribution is zero
	Warnings int
}

// NewOverlay builds the reduced layer for the given sole source at setup time. ground
// names the parent node preferred as canonical representative; may be nil.
func NewOverlay(prm *inp.SolverData, par *ele.Network, sole ele.Element, ground *ele.Node) (o *Overlay, err error) {
	o = &Overlay{Prm: prm, Par: par, Sole: sole}
	o.excluded = make(map[ele.Element]bool)

	// merge nodes across the retained shorts (the replaced effort sources); chains of
	// merges collapse transitively
	uf := make(map[*ele.Node]*ele.Node)
	var find func(n *ele.Node) *ele.Node
	find = func(n *ele.Node) *ele.Node {
		if uf[n] == nil {
			return n
		}
		r := find(uf[n])
		uf[n] = r
		return r
	}
	for _, e := range par.Elems {
		if e != sole && e.Kind() == ele.KindEffortSource && e.Nnodes() == 2 {
			a, b := find(e.Node(0)), find(e.Node(1))
			if a != b {
				uf[a] = b
			}
		}
	}
	classes := make(map[*ele.Node][]*ele.Node)
	for _, n := range par.Nodes {
		r := find(n)
		classes[r] = append(classes[r], n)
	}
	o.repr = make(map[*ele.Node]*ele.Node)
	for _, members := range classes {
		canon := members[0]
		for _, m := range members {
			if m == ground {
				canon = ground
				break
			}
			if m.Id() < canon.Id() {
				canon = m
			}
		}
		for _, m := range members {
			o.repr[m] = canon
		}
	}

	// replaced flow sources are open: excise the non-branching chains they hang on
	merged := func(e ele.Element) bool {
		return e != sole && e.Kind() == ele.KindEffortSource
	}
	for _, e := range par.Elems {
		if e != sole && e.Kind() == ele.KindFlowSource {
			o.excluded[e] = true
		}
	}
	degree := func(n *ele.Node) (d int, last ele.Element) {
		for i := 0; i < n.Nelements(); i++ {
			e := n.Elem(i)
			if o.excluded[e] || merged(e) {
				continue
			}
			d++
			last = e
		}
		return
	}
	for _, e := range par.Elems {
		if e != sole && e.Kind() == ele.KindFlowSource && e.Nnodes() == 2 {
			for p := 0; p < 2; p++ {
				n := e.Node(p)
				for {
					d, last := degree(n)
					if d != 1 || !last.Kind().IsResistor() || last.Nnodes() != 2 {
						break
					}
					o.excluded[last] = true
					next, nerr := ele.OnlyOtherNode(last, n)
					if nerr != nil {
						break
					}
					n = next
				}
			}
		}
	}

	// elements between merged endpoints lie on a short path and carry zero flow
	for _, e := range par.Elems {
		if o.excluded[e] || merged(e) || e == sole || e.Nnodes() != 2 {
			continue
		}
		if o.repr[e.Node(0)] == o.repr[e.Node(1)] {
			o.excluded[e] = true
		}
	}

	// degenerate layer: the sole source must sit in a closed loop
	if sole.Nnodes() == 2 {
		c0, c1 := o.repr[sole.Node(0)], o.repr[sole.Node(1)]
		if c0 == c1 {
			if sole.Kind() == ele.KindEffortSource {
				return nil, ele.ErrModel("effort source %d is shorted by the other sources of its subnet", sole.Id())
			}
			o.dead = true
		} else if !o.connected(c0, c1, merged) {
			o.dead = true
		}
	}
	if o.dead {
		return
	}

	// build the layer network from the surviving elements
	o.Net = ele.NewNetwork(prm)
	o.nodeOf = make(map[*ele.Node]*ele.Node)
	o.twinOf = make(map[ele.Element]ele.Element)
	for _, e := range par.Elems {
		if o.excluded[e] || merged(e) {
			continue
		}
		twin, terr := MakeTwin(e, len(o.Net.Elems), prm)
		if terr != nil {
			return nil, terr
		}
		o.Net.AddElement(twin)
		for i := 0; i < e.Nnodes(); i++ {
			canon := o.repr[e.Node(i)]
			ln := o.nodeOf[canon]
			if ln == nil {
				ln = o.Net.NewNode(canon.Domain)
				o.nodeOf[canon] = ln
			}
			if err = o.Net.Connect(twin, ln); err != nil {
				return nil, err
			}
		}
		o.twinOf[e] = twin
	}

	o.Rs, err = NewRecursiveSimplifier(prm, o.Net, 0)
	return
}

// connected tells whether canonical nodes a and b are linked through the surviving
// elements other than the sole source
func (o *Overlay) connected(a, b *ele.Node, merged func(ele.Element) bool) bool {
	seen := map[*ele.Node]bool{a: true}
	stack := []*ele.Node{a}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == b {
			return true
		}
		for _, m := range o.members(n) {
			for i := 0; i < m.Nelements(); i++ {
				e := m.Elem(i)
				if e == o.Sole || o.excluded[e] || merged(e) {
					continue
				}
				for j := 0; j < e.Nnodes(); j++ {
					c := o.repr[e.Node(j)]
					if !seen[c] {
						seen[c] = true
						stack = append(stack, c)
					}
				}
			}
		}
	}
	return false
}

// members returns the parent nodes whose canonical representative is c
func (o *Overlay) members(c *ele.Node) (res []*ele.Node) {
	for _, n := range o.Par.Nodes {
		if o.repr[n] == c {
			res = append(res, n)
		}
	}
	return
}

// Prepare copies the parameter values of this tick into the layer twins and decides
// whether the layer can be skipped (sole source value literally zero)
func (o *Overlay) Prepare() (err error) {
	o.Warnings = 0
	o.Skip = false
	switch s := o.Sole.(type) {
	case *ele.EffortSource:
		o.Skip = s.Eval == 0.0
	case *ele.FlowSource:
		o.Skip = s.Fval == 0.0
	}
	if o.dead || o.Skip {
		return
	}
	for pe, te := range o.twinOf {
		CopyTwinValues(pe, te)
	}
	return o.Rs.PrepareRecursiveCalculation()
}

// Solve computes the layer contribution
func (o *Overlay) Solve() (err error) {
	if o.dead || o.Skip {
		return
	}
	if err = o.Rs.DoRecursiveCalculation(); err != nil {
		return
	}
	o.Warnings += o.Rs.Warnings
	return
}

// LayerFlow returns the port0→port1 flow contribution of this layer for parent element e
func (o *Overlay) LayerFlow(e ele.Element) float64 {
	if o.dead || o.Skip || o.excluded[e] {
		return 0
	}
	twin := o.twinOf[e]
	if twin == nil {
		return 0
	}
	j, known := ThroughFlow(twin)
	if !known {
		return 0
	}
	return j
}

// LayerEffort returns this layer's effort at parent node n, if the layer determined one
func (o *Overlay) LayerEffort(n *ele.Node) (val float64, ok bool) {
	if o.dead || o.Skip {
		return 0, false
	}
	ln := o.nodeOf[o.repr[n]]
	if ln == nil || !ln.EffortUpdated() {
		return 0, false
	}
	return ln.Effort(), true
}
