// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"testing"

	"github.com/cpmech/enet/ana"
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// starFixture builds a k-branch star with the given resistances. Outer nodes carry a
// stub resistor each so that every branch leads somewhere.
type starFixture struct {
	nw    *ele.Network
	star  *ele.Node
	outer []*ele.Node
	bra   []*ele.Dsp
	child *ele.Network
	cmap  map[*ele.Node]*ele.Node
}

func newStarFixture(prm *inp.SolverData, res []float64) (o *starFixture) {
	o = &starFixture{nw: ele.NewNetwork(prm)}
	o.star = o.nw.NewNode("electrical")
	for i, r := range res {
		out := o.nw.NewNode("electrical")
		b := ele.NewDsp(i, prm, r)
		o.nw.AddElement(b)
		o.nw.ConnectBetween(b, o.star, out)
		o.outer = append(o.outer, out)
		o.bra = append(o.bra, b)
	}
	for i := range res {
		far := o.nw.NewNode("electrical")
		stub := ele.NewDsp(len(res)+i, prm, 1)
		o.nw.AddElement(stub)
		o.nw.ConnectBetween(stub, o.outer[i], far)
	}
	o.child = ele.NewNetwork(prm)
	o.cmap = make(map[*ele.Node]*ele.Node)
	for _, out := range o.outer {
		o.cmap[out] = o.child.NewNode("electrical")
	}
	return
}

func Test_star01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("star01. admittance form of the polygon resistances")

	prm := NewTestPrm()
	fx := newStarFixture(prm, []float64{100, 200, 400, 500, 250})
	tr, err := NewStarPolygon(prm, fx.star)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	chk.IntAssert(tr.K(), 5)
	err = tr.Build(fx.child, fx.cmap)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	chk.IntAssert(len(tr.Poly), 10)
	err = tr.Prepare()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}

	ref := ana.StarEquivalent{G: []float64{1.0 / 100, 1.0 / 200, 1.0 / 400, 1.0 / 500, 1.0 / 250}}
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			p := tr.PairIdx(i, j)
			ii, jj := tr.Pair(p)
			chk.Ints(tst, "pair lookup", []int{ii, jj}, []int{i, j})
			chk.Scalar(tst, "G(i,j)", 1e-15, tr.Poly[p].Conductance(), ref.Gpair(i, j))
		}
	}
}

func Test_star02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("star02. back-transform: weighted mean effort and branch flows")

	prm := NewTestPrm()
	fx := newStarFixture(prm, []float64{100, 200, 400})
	tr, err := NewStarDelta(prm, fx.star)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	err = tr.Build(fx.child, fx.cmap)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	chk.IntAssert(len(tr.Poly), 3)
	err = tr.Prepare()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}

	// impose solved outer efforts and recover the star
	fx.nw.ClearState()
	efforts := []float64{10, 4, -2}
	for i, out := range fx.outer {
		out.SetEffort(efforts[i], nil, false)
	}
	err = tr.BackTransform()
	if err != nil {
		tst.Errorf("back-transform failed: %v\n", err)
		return
	}
	g := []float64{0.01, 0.005, 0.0025}
	want := (g[0]*10 + g[1]*4 + g[2]*(-2)) / (g[0] + g[1] + g[2])
	chk.Scalar(tst, "E(star)", 1e-13, fx.star.Effort(), want)

	// flows into the star sum to zero
	sum := 0.0
	for _, b := range fx.bra {
		sum += fx.star.Flow(b)
	}
	chk.Scalar(tst, "KCL at star", 1e-15, sum, 0)
	chk.Scalar(tst, "branch 0 flow", 1e-13, fx.star.Flow(fx.bra[0]), (10-want)*0.01)
}

func Test_star03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("star03. short/open specializations of the forward rules")

	// one open branch: incident polygon edges vanish; the rest uses the survivors
	prm := NewTestPrm()
	fx := newStarFixture(prm, []float64{100, 200, 400})
	tr, _ := NewStarPolygon(prm, fx.star)
	tr.Build(fx.child, fx.cmap)
	fx.bra[0].SetOpenConnection()
	err := tr.Prepare()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}
	chk.IntAssert(int(tr.Poly[tr.PairIdx(0, 1)].Kind()), int(ele.KindOpen))
	chk.IntAssert(int(tr.Poly[tr.PairIdx(0, 2)].Kind()), int(ele.KindOpen))
	gsurv := 1.0/200 + 1.0/400
	chk.Scalar(tst, "surviving edge", 1e-15, tr.Poly[tr.PairIdx(1, 2)].Conductance(), (1.0/200)*(1.0/400)/gsurv)

	// mixed bridges: the empirical rule G = G_nonbridged / nbridges
	fx = newStarFixture(prm, []float64{100, 200, 400})
	tr, _ = NewStarPolygon(prm, fx.star)
	tr.Build(fx.child, fx.cmap)
	fx.bra[0].SetBridgedConnection()
	err = tr.Prepare()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "bridged pair 0-1", 1e-15, tr.Poly[tr.PairIdx(0, 1)].Conductance(), 1.0/200)
	chk.Scalar(tst, "bridged pair 0-2", 1e-15, tr.Poly[tr.PairIdx(0, 2)].Conductance(), 1.0/400)
	chk.IntAssert(int(tr.Poly[tr.PairIdx(1, 2)].Kind()), int(ele.KindOpen))

	// all open / all bridged degenerate to uniform polygons
	fx = newStarFixture(prm, []float64{100, 200, 400})
	tr, _ = NewStarPolygon(prm, fx.star)
	tr.Build(fx.child, fx.cmap)
	for _, b := range fx.bra {
		b.SetOpenConnection()
	}
	tr.Prepare()
	for _, d := range tr.Poly {
		chk.IntAssert(int(d.Kind()), int(ele.KindOpen))
	}
	for _, b := range fx.bra {
		b.SetBridgedConnection()
	}
	tr.Prepare()
	for _, d := range tr.Poly {
		chk.IntAssert(int(d.Kind()), int(ele.KindBridged))
	}
}

func Test_star04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("star04. back-transform special cases")

	// all-open star: arithmetic mean over the k known outer efforts (pinning the
	// convention: divide by the number of efforts actually present)
	prm := NewTestPrm()
	fx := newStarFixture(prm, []float64{100, 200, 400})
	tr, _ := NewStarPolygon(prm, fx.star)
	tr.Build(fx.child, fx.cmap)
	for _, b := range fx.bra {
		b.SetOpenConnection()
	}
	tr.Prepare()
	fx.nw.ClearState()
	for i, out := range fx.outer {
		out.SetEffort(float64(i+1), nil, false) // 1, 2, 3
	}
	err := tr.BackTransform()
	if err != nil {
		tst.Errorf("back-transform failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "mean pseudo-solution", 1e-15, fx.star.Effort(), 2)
	for _, b := range fx.bra {
		chk.Scalar(tst, "open branch flow", 1e-15, fx.star.Flow(b), 0)
	}

	// single bridge: the star copies the bridged outer effort and the bridge carries
	// the residual
	fx = newStarFixture(prm, []float64{100, 200, 400})
	tr, _ = NewStarPolygon(prm, fx.star)
	tr.Build(fx.child, fx.cmap)
	fx.bra[1].SetBridgedConnection()
	tr.Prepare()
	fx.nw.ClearState()
	fx.outer[0].SetEffort(10, nil, false)
	fx.outer[1].SetEffort(4, nil, false)
	fx.outer[2].SetEffort(-2, nil, false)
	err = tr.BackTransform()
	if err != nil {
		tst.Errorf("back-transform failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "star copies bridge", 1e-15, fx.star.Effort(), 4)
	i0 := (10.0 - 4.0) * 0.01
	i2 := (-2.0 - 4.0) * 0.0025
	chk.Scalar(tst, "bridge residual", 1e-15, fx.star.Flow(fx.bra[1]), -(i0 + i2))
}

func Test_star05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("star05. star-square carries the two diagonals")

	prm := NewTestPrm()
	fx := newStarFixture(prm, []float64{100, 200, 400, 800})
	tr, err := NewStarSquare(prm, fx.star)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	err = tr.Build(fx.child, fx.cmap)
	if err != nil {
		tst.Errorf("build failed: %v\n", err)
		return
	}
	chk.IntAssert(len(tr.Poly), 6)

	// a 3-branch node must not pass as a square
	fx3 := newStarFixture(prm, []float64{100, 200, 400})
	_, err = NewStarSquare(prm, fx3.star)
	if err == nil {
		tst.Errorf("square transform on a 3-branch star must fail\n")
		return
	}
}
