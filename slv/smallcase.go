// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"math"

	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
)

// TwoSeriesSolver solves, in closed form, the residual network made of exactly 4
// elements: two resistors in series, one source across the resistor pair and one origin
// on the middle node between the two resistors:
//
//	nodeX ──[resistorX]── mid ──[resistorY]── nodeY
//	  │                    │                    │
//	  └──────[source]──────┼────────────────────┘
//	                    [origin]
type TwoSeriesSolver struct {
	Prm    *inp.SolverData
	Source ele.Element    // effort or flow source
	Orig   *ele.Origin    // origin on the middle node
	Mid    *ele.Node      // middle node
	NodeX  *ele.Node      // source port 0
	NodeY  *ele.Node      // source port 1
	Rx     ele.Dissipator // resistor between nodeX and mid
	Ry     ele.Dissipator // resistor between nodeY and mid
}

// NewTwoSeriesSolver identifies the two-series shape within nw. A model error is
// returned when nw does not have exactly 2 resistors, 1 source and 1 origin with the
// origin on the middle node.
func NewTwoSeriesSolver(prm *inp.SolverData, nw *ele.Network) (o *TwoSeriesSolver, err error) {
	if len(nw.Elems) != 4 {
		return nil, ele.ErrModel("two-series: network has %d elements; need 4", len(nw.Elems))
	}
	o = &TwoSeriesSolver{Prm: prm}
	var resistors []ele.Dissipator
	for _, e := range nw.Elems {
		switch {
		case e.Kind() == ele.KindEffortSource || e.Kind() == ele.KindFlowSource:
			if o.Source != nil {
				return nil, ele.ErrModel("two-series: more than one source")
			}
			o.Source = e
		case e.Kind() == ele.KindOrigin:
			if o.Orig != nil {
				return nil, ele.ErrModel("two-series: more than one origin")
			}
			o.Orig = e.(*ele.Origin)
		case e.Kind().IsResistor():
			d, ok := e.(ele.Dissipator)
			if !ok {
				return nil, ele.ErrModel("two-series: element %d is not a dissipator", e.Id())
			}
			resistors = append(resistors, d)
		default:
			return nil, ele.ErrModel("two-series: element %d has unexpected kind %q", e.Id(), e.Kind())
		}
	}
	if o.Source == nil || o.Orig == nil || len(resistors) != 2 {
		return nil, ele.ErrModel("two-series: need 2 resistors, 1 source and 1 origin")
	}
	o.Mid = o.Orig.Nod
	o.NodeX = o.Source.Node(0)
	o.NodeY = o.Source.Node(1)
	for _, d := range resistors {
		switch {
		case connects(d, o.NodeX, o.Mid):
			o.Rx = d
		case connects(d, o.NodeY, o.Mid):
			o.Ry = d
		default:
			return nil, ele.ErrModel("two-series: resistor %d does not link a source node with the origin node", d.Id())
		}
	}
	if o.Rx == nil || o.Ry == nil {
		return nil, ele.ErrModel("two-series: origin must sit on the middle node between the two resistors")
	}
	return
}

// connects tells whether two-port element e links nodes a and b (either orientation)
func connects(e ele.Element, a, b *ele.Node) bool {
	if e.Nnodes() != 2 {
		return false
	}
	return (e.Node(0) == a && e.Node(1) == b) || (e.Node(0) == b && e.Node(1) == a)
}

// Solve assigns all node efforts and element flows of the two-series shape
func (o *TwoSeriesSolver) Solve() (err error) {

	// origin pins the middle node
	e0 := o.Orig.Eref
	if err = o.Mid.SetEffort(e0, o.Orig, false); err != nil {
		return
	}

	kx, ky := o.Rx.Kind(), o.Ry.Kind()
	nopen := 0
	if kx == ele.KindOpen {
		nopen++
	}
	if ky == ele.KindOpen {
		nopen++
	}

	// flow source cases
	if fs, isflow := o.Source.(*ele.FlowSource); isflow {
		if nopen > 0 && math.Abs(fs.Fval) > o.Prm.ZeroTol {
			return ele.ErrModel("two-series: open connection in series with flow source %d", fs.Id())
		}
		// loop flow imposed by the source: positive from the source into nodeY
		return o.assign(fs.Fval)
	}

	es := o.Source.(*ele.EffortSource)
	v := es.Eval

	// open connections: no loop flow; efforts propagate over the closed side only
	if nopen > 0 {
		if err = o.zeroAllFlows(); err != nil {
			return
		}
		switch {
		case nopen == 2:
			// floating source pair: fix nodeY and derive the other via the source relation
			if err = o.NodeY.SetEffort(0, es, false); err != nil {
				return
			}
			return o.NodeX.SetEffort(-v, es, false)
		case kx == ele.KindOpen:
			// no drop across resistorY
			if err = o.NodeY.SetEffort(e0, o.Ry, false); err != nil {
				return
			}
			return o.NodeX.SetEffort(e0-v, es, false)
		default:
			if err = o.NodeX.SetEffort(e0, o.Rx, false); err != nil {
				return
			}
			return o.NodeY.SetEffort(e0+v, es, false)
		}
	}

	// total resistance; bridges contribute nothing
	rtot := 0.0
	if kx == ele.KindDissipator {
		rtot += o.Rx.Resistance()
	}
	if ky == ele.KindDissipator {
		rtot += o.Ry.Resistance()
	}
	if rtot <= 0 {
		return ele.ErrModel("two-series: both resistors bridged in series with effort source %d", es.Id())
	}
	return o.assign(v / rtot)
}

// assign distributes the loop flow j (circulating source→nodeY→mid→nodeX→source) and
// derives the remaining efforts from the middle node outwards
func (o *TwoSeriesSolver) assign(j float64) (err error) {
	e0 := o.Orig.Eref

	// flows, with into-node signs
	if err = o.NodeY.SetFlow(j, o.Source, false); err != nil {
		return
	}
	if err = o.NodeX.SetFlow(-j, o.Source, false); err != nil {
		return
	}
	if err = setBranchFlow(o.Ry, o.NodeY, -j); err != nil {
		return
	}
	if err = setBranchFlow(o.Rx, o.Mid, -j); err != nil {
		return
	}
	if err = o.Mid.SetFlow(0, o.Orig, false); err != nil {
		return
	}

	// efforts
	ry, rx := 0.0, 0.0
	if o.Ry.Kind() == ele.KindDissipator {
		ry = o.Ry.Resistance()
	}
	if o.Rx.Kind() == ele.KindDissipator {
		rx = o.Rx.Resistance()
	}
	if err = o.NodeY.SetEffort(e0+j*ry, o.Ry, false); err != nil {
		return
	}
	return o.NodeX.SetEffort(e0-j*rx, o.Rx, false)
}

// zeroAllFlows pins every flow of the shape to zero
func (o *TwoSeriesSolver) zeroAllFlows() (err error) {
	for _, e := range []ele.Element{o.Source, o.Rx, o.Ry} {
		if err = SetThroughFlow(e, 0, false); err != nil {
			return
		}
	}
	return o.Mid.SetFlow(0, o.Orig, false)
}

// setBranchFlow assigns the flow of two-port element e so that 'val' is the into-node
// value at node 'from'; the opposite sign goes to the other node
func setBranchFlow(e ele.Element, from *ele.Node, val float64) (err error) {
	other, err := ele.OnlyOtherNode(e, from)
	if err != nil {
		return
	}
	if err = from.SetFlow(val, e, false); err != nil {
		return
	}
	return other.SetFlow(-val, e, false)
}

// DeltaSourceSolver solves, in closed form, the residual network made of exactly 5
// elements: three resistors in a triangle, one effort source in parallel with one edge
// and one origin on the opposing corner:
//
//	       nodeZ ──[origin]
//	       /   \
//	[resY]/     \[resX]
//	     /       \
//	nodeX ─[resZ]─ nodeY
//	     \___________/
//	       [source]
type DeltaSourceSolver struct {
	Prm    *inp.SolverData
	Source *ele.EffortSource
	Orig   *ele.Origin
	NodeX  *ele.Node      // source port 0
	NodeY  *ele.Node      // source port 1
	NodeZ  *ele.Node      // origin corner
	RZ     ele.Dissipator // edge parallel to the source (nodeX-nodeY)
	RY     ele.Dissipator // edge nodeX-nodeZ
	RX     ele.Dissipator // edge nodeY-nodeZ
}

// NewDeltaSourceSolver identifies the delta-with-source shape within nw
func NewDeltaSourceSolver(prm *inp.SolverData, nw *ele.Network) (o *DeltaSourceSolver, err error) {
	if len(nw.Elems) != 5 {
		return nil, ele.ErrModel("delta-source: network has %d elements; need 5", len(nw.Elems))
	}
	o = &DeltaSourceSolver{Prm: prm}
	var resistors []ele.Dissipator
	for _, e := range nw.Elems {
		switch {
		case e.Kind() == ele.KindEffortSource:
			if o.Source != nil {
				return nil, ele.ErrModel("delta-source: more than one source")
			}
			o.Source = e.(*ele.EffortSource)
		case e.Kind() == ele.KindOrigin:
			if o.Orig != nil {
				return nil, ele.ErrModel("delta-source: more than one origin")
			}
			o.Orig = e.(*ele.Origin)
		case e.Kind().IsResistor():
			d, ok := e.(ele.Dissipator)
			if !ok {
				return nil, ele.ErrModel("delta-source: element %d is not a dissipator", e.Id())
			}
			resistors = append(resistors, d)
		default:
			return nil, ele.ErrModel("delta-source: element %d has unexpected kind %q", e.Id(), e.Kind())
		}
	}
	if o.Source == nil || o.Orig == nil || len(resistors) != 3 {
		return nil, ele.ErrModel("delta-source: need 3 resistors, 1 effort source and 1 origin")
	}
	o.NodeX = o.Source.Node(0)
	o.NodeY = o.Source.Node(1)
	o.NodeZ = o.Orig.Nod
	if o.NodeZ == o.NodeX || o.NodeZ == o.NodeY {
		return nil, ele.ErrModel("delta-source: origin must sit on the corner opposing the source")
	}
	for _, d := range resistors {
		switch {
		case connects(d, o.NodeX, o.NodeY):
			o.RZ = d
		case connects(d, o.NodeX, o.NodeZ):
			o.RY = d
		case connects(d, o.NodeY, o.NodeZ):
			o.RX = d
		default:
			return nil, ele.ErrModel("delta-source: resistor %d is not a triangle edge", d.Id())
		}
	}
	if o.RZ == nil || o.RY == nil || o.RX == nil {
		return nil, ele.ErrModel("delta-source: the three resistors must close the triangle")
	}
	return
}

// Solve assigns all node efforts and element flows of the delta-with-source shape
func (o *DeltaSourceSolver) Solve() (err error) {

	// a bridged edge parallel to the source is unsolvable
	if o.RZ.Kind() == ele.KindBridged {
		return ele.ErrModel("delta-source: effort source %d is shorted by bridged element %d", o.Source.Id(), o.RZ.Id())
	}

	e0 := o.Orig.Eref
	if err = o.NodeZ.SetEffort(e0, o.Orig, false); err != nil {
		return
	}
	v := o.Source.Eval
	kx, ky := o.RX.Kind(), o.RY.Kind()

	// corner potentials
	var ex float64
	switch {
	case math.Abs(v) < o.Prm.ZeroTol:
		ex = e0
	case kx == ele.KindBridged && ky == ele.KindBridged:
		return ele.ErrModel("delta-source: both divider edges bridged with nonzero source")
	case kx == ele.KindOpen && ky == ele.KindOpen:
		// no circulating flow; source pair floats against the origin corner
		ex = e0
	case kx == ele.KindBridged:
		ex = e0 - v
	case ky == ele.KindBridged:
		ex = e0
	case kx == ele.KindOpen:
		// divider chain broken at resistorX: no drop across resistorY
		ex = e0
	case ky == ele.KindOpen:
		ex = e0 - v
	default:
		gx, gy := o.RX.Conductance(), o.RY.Conductance()
		ex = e0 - v*gx/(gx+gy)
	}
	ey := ex + v
	if err = o.NodeX.SetEffort(ex, o.Source, false); err != nil {
		return
	}
	if err = o.NodeY.SetEffort(ey, o.Source, false); err != nil {
		return
	}

	// edge flows from the potentials
	iy := edgeFlow(o.RY, e0, ex) // nodeZ → nodeX
	ix := edgeFlow(o.RX, ey, e0) // nodeY → nodeZ
	iz := edgeFlow(o.RZ, ey, ex) // nodeY → nodeX
	if kx == ele.KindBridged {
		ix = iy // the bridged edge closes the divider loop
	}
	if ky == ele.KindBridged {
		iy = ix
	}
	if err = setBranchFlow(o.RY, o.NodeX, iy); err != nil {
		return
	}
	if err = setBranchFlow(o.RX, o.NodeZ, ix); err != nil {
		return
	}
	if err = setBranchFlow(o.RZ, o.NodeX, iz); err != nil {
		return
	}

	// source carries the return flow; origin carries the divider residual
	if err = setBranchFlow(o.Source, o.NodeY, iy+iz); err != nil {
		return
	}
	return o.NodeZ.SetFlow(iy-ix, o.Orig, false)
}

// edgeFlow returns the flow from the high node to the low node of a triangle edge, given
// the two corner potentials; opens carry nothing and bridges are resolved by the caller
func edgeFlow(d ele.Dissipator, ehigh, elow float64) float64 {
	if d.Kind() != ele.KindDissipator {
		return 0
	}
	return (ehigh - elow) * d.Conductance()
}
