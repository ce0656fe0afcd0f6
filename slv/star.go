// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// StarPolygon replaces a star of k >= 3 resistor branches by the complete polygon over
// its outer nodes: k(k-1)/2 edges. The transform works in admittance form
//
//	G(i,j) = G(i)·G(j) / Σ G(m)
//
// so that closed connections (G=0) stay representable: infinite resistances map to
// finite zeros. The star node must carry dissipator-kind branches only, and every branch
// must actually lead somewhere.
type StarPolygon struct {

	// constants (set at setup; the structure never changes)
	Prm      *inp.SolverData
	Star     *ele.Node        // parent star node
	Branches []ele.Dissipator // k branch resistors, in registration order at the star
	Outer    []*ele.Node      // outer parent node of each branch
	Poly     []*ele.Dsp       // polygon resistors in the child network
	pairIdx  [][]int          // (i,j) => polygon index
	pairs    [][2]int         // polygon index => (i,j)
	warnings *int             // sink for pseudo-solution warnings; may be nil
}

// NewStarPolygon validates the star centred at node star and prepares the transform
// bookkeeping. The polygon elements are created by Build.
func NewStarPolygon(prm *inp.SolverData, star *ele.Node) (o *StarPolygon, err error) {
	k := star.Nelements()
	if k < 3 {
		return nil, ele.ErrModel("star-polygon: node %d has %d branches; need at least 3", star.Id(), k)
	}
	o = &StarPolygon{Prm: prm, Star: star}
	for i := 0; i < k; i++ {
		e := star.Elem(i)
		if !e.Kind().IsResistor() {
			return nil, ele.ErrModel("star-polygon: node %d carries element %d of kind %q; only dissipators qualify", star.Id(), e.Id(), e.Kind())
		}
		d, ok := e.(ele.Dissipator)
		if !ok {
			return nil, ele.ErrModel("star-polygon: element %d is not a dissipator", e.Id())
		}
		outer, oerr := ele.OnlyOtherNode(e, star)
		if oerr != nil {
			return nil, oerr
		}
		if outer.Nelements() < 2 {
			return nil, ele.ErrModel("star-polygon: branch %d of node %d leads to a dead end", e.Id(), star.Id())
		}
		o.Branches = append(o.Branches, d)
		o.Outer = append(o.Outer, outer)
	}

	// pair lookup tables
	o.pairIdx = make([][]int, k)
	for i := range o.pairIdx {
		o.pairIdx[i] = make([]int, k)
		for j := range o.pairIdx[i] {
			o.pairIdx[i][j] = -1
		}
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			p := len(o.pairs)
			o.pairIdx[i][j] = p
			o.pairIdx[j][i] = p
			o.pairs = append(o.pairs, [2]int{i, j})
		}
	}
	return
}

// K returns the number of branches
func (o *StarPolygon) K() int { return len(o.Branches) }

// PairIdx returns the polygon index of the edge joining branches i and j
func (o *StarPolygon) PairIdx(i, j int) int { return o.pairIdx[i][j] }

// Pair returns the branch pair of polygon edge p
func (o *StarPolygon) Pair(p int) (i, j int) { return o.pairs[p][0], o.pairs[p][1] }

// Build creates the polygon resistors inside the child network, connecting them across
// the child twins of the outer nodes given by cmap
func (o *StarPolygon) Build(child *ele.Network, cmap map[*ele.Node]*ele.Node) (err error) {
	for p := range o.pairs {
		i, j := o.pairs[p][0], o.pairs[p][1]
		d := ele.NewDsp(len(child.Elems), o.Prm, 1)
		child.AddElement(d)
		if err = child.ConnectBetween(d, cmap[o.Outer[i]], cmap[o.Outer[j]]); err != nil {
			return
		}
		o.Poly = append(o.Poly, d)
	}
	return
}

// Prepare recomputes the polygon resistances from the branch values of this tick,
// applying the short/open specializations of the admittance rule
func (o *StarPolygon) Prepare() (err error) {
	k := o.K()
	nopen, nbrid := 0, 0
	for _, b := range o.Branches {
		switch b.Kind() {
		case ele.KindOpen:
			nopen++
		case ele.KindBridged:
			nbrid++
		}
	}

	// degenerate stars
	if nopen == k {
		for _, d := range o.Poly {
			d.SetOpenConnection()
		}
		return
	}
	if nbrid == k {
		for _, d := range o.Poly {
			d.SetBridgedConnection()
		}
		return
	}

	// sum of admittances over the surviving (non-open) dissipator branches
	sumg := 0.0
	nsurv := 0
	for _, b := range o.Branches {
		if b.Kind() == ele.KindDissipator {
			sumg += b.Conductance()
		}
		if b.Kind() != ele.KindOpen {
			nsurv++
		}
	}

	for p := range o.pairs {
		i, j := o.pairs[p][0], o.pairs[p][1]
		bi, bj := o.Branches[i], o.Branches[j]
		ki, kj := bi.Kind(), bj.Kind()
		d := o.Poly[p]
		switch {
		case ki == ele.KindOpen || kj == ele.KindOpen:
			// edges incident to an opened branch vanish
			d.SetOpenConnection()
		case ki == ele.KindBridged && kj == ele.KindBridged:
			d.SetBridgedConnection()
		case ki == ele.KindBridged:
			// empirical mixed-bridge rule: the surviving admittance split over the bridges
			d.SetConductanceParameter(bj.Conductance() / float64(nbrid))
		case kj == ele.KindBridged:
			d.SetConductanceParameter(bi.Conductance() / float64(nbrid))
		case nbrid > 0:
			// bridges are present elsewhere: non-bridged pairs lose their direct edge
			d.SetOpenConnection()
		default:
			d.SetConductanceParameter(bi.Conductance() * bj.Conductance() / sumg)
		}
	}
	return
}

// BackTransform recovers the star node effort from the solved outer efforts by the
// admittance-weighted mean, then assigns the branch flows. Pseudo-solutions (all-open
// star) are logged as warnings.
func (o *StarPolygon) BackTransform() (err error) {

	nopen, nbrid := 0, 0
	for _, b := range o.Branches {
		switch b.Kind() {
		case ele.KindOpen:
			nopen++
		case ele.KindBridged:
			nbrid++
		}
	}
	k := o.K()

	// star effort
	var estar float64
	switch {
	case nbrid > 0:
		// a short pins the star to its outer node
		for i, b := range o.Branches {
			if b.Kind() == ele.KindBridged && o.Outer[i].EffortUpdated() {
				estar = o.Outer[i].Effort()
				break
			}
		}
	case nopen == k:
		// fully isolated star: the arithmetic mean of the known outer efforts is assigned
		// as a pseudo-solution
		sum, n := 0.0, 0
		for _, outer := range o.Outer {
			if outer.EffortUpdated() {
				sum += outer.Effort()
				n++
			}
		}
		if n > 0 {
			estar = sum / float64(n)
		}
		o.warn("star node %d is isolated; using mean outer effort %g as pseudo-solution", o.Star.Id(), estar)
	default:
		sumg, sumge := 0.0, 0.0
		for i, b := range o.Branches {
			if b.Kind() != ele.KindDissipator || !o.Outer[i].EffortUpdated() {
				continue
			}
			g := b.Conductance()
			sumg += g
			sumge += g * o.Outer[i].Effort()
		}
		if sumg > 0 {
			estar = sumge / sumg
		}
	}
	if err = o.Star.SetEffort(estar, nil, false); err != nil {
		return
	}

	// branch flows into the star
	residual := 0.0
	for i, b := range o.Branches {
		switch b.Kind() {
		case ele.KindOpen:
			if err = setBranchFlow(b, o.Star, 0); err != nil {
				return
			}
		case ele.KindDissipator:
			flow := (o.Outer[i].Effort() - estar) * b.Conductance()
			residual += flow
			if err = setBranchFlow(b, o.Star, flow); err != nil {
				return
			}
		}
	}

	// bridged branches share the residual; with more than one bridge the split is a
	// pseudo-solution
	if nbrid > 0 {
		if nbrid > 1 {
			o.warn("star node %d has %d bridged branches; splitting residual flow equally", o.Star.Id(), nbrid)
		}
		share := -residual / float64(nbrid)
		for _, b := range o.Branches {
			if b.Kind() == ele.KindBridged {
				if err = setBranchFlow(b, o.Star, share); err != nil {
					return
				}
			}
		}
	}
	return
}

// warn logs and counts a pseudo-solution
func (o *StarPolygon) warn(msg string, prm ...interface{}) {
	if o.warnings != nil {
		*o.warnings++
	}
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: "+msg+"\n", prm...)
	}
}

// StarDelta is the 3-branch specialization: the polygon is a triangle
type StarDelta struct {
	StarPolygon
}

// NewStarDelta returns the Y-Δ transform for a 3-branch star node
func NewStarDelta(prm *inp.SolverData, star *ele.Node) (o *StarDelta, err error) {
	if star.Nelements() != 3 {
		return nil, ele.ErrModel("star-delta: node %d has %d branches; need exactly 3", star.Id(), star.Nelements())
	}
	g, err := NewStarPolygon(prm, star)
	if err != nil {
		return nil, err
	}
	return &StarDelta{*g}, nil
}

// StarSquare is the 4-branch specialization: the polygon has 6 resistors, the square
// sides plus the two diagonals
type StarSquare struct {
	StarPolygon
}

// NewStarSquare returns the Y-square transform for a 4-branch star node
func NewStarSquare(prm *inp.SolverData, star *ele.Node) (o *StarSquare, err error) {
	if star.Nelements() != 4 {
		return nil, ele.ErrModel("star-square: node %d has %d branches; need exactly 4", star.Id(), star.Nelements())
	}
	g, err := NewStarPolygon(prm, star)
	if err != nil {
		return nil, err
	}
	return &StarSquare{*g}, nil
}
