// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"testing"

	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// bridgeFixture builds an unbalanced Wheatstone bridge:
//
//	a ──[100]── c ──[300]── b
//	a ──[200]── d ──[400]── b     bridge: c ──[500]── d
//	source b→a (10), origin on b
type bridgeFixture struct {
	nw                      *ele.Network
	a, b, c, d              *ele.Node
	rac, rad, rcb, rdb, rcd *ele.Dsp
	src                     *ele.EffortSource
	org                     *ele.Origin
}

func newBridgeFixture(prm *inp.SolverData) (o *bridgeFixture) {
	o = &bridgeFixture{nw: ele.NewNetwork(prm)}
	o.a = o.nw.NewNode("electrical")
	o.b = o.nw.NewNode("electrical")
	o.c = o.nw.NewNode("electrical")
	o.d = o.nw.NewNode("electrical")
	o.rac = ele.NewDsp(0, prm, 100)
	o.rad = ele.NewDsp(1, prm, 200)
	o.rcb = ele.NewDsp(2, prm, 300)
	o.rdb = ele.NewDsp(3, prm, 400)
	o.rcd = ele.NewDsp(4, prm, 500)
	o.src = ele.NewEffortSource(5, prm, 10)
	o.org = ele.NewOrigin(6, prm, 0)
	for _, e := range []ele.Element{o.rac, o.rad, o.rcb, o.rdb, o.rcd, o.src, o.org} {
		o.nw.AddElement(e)
	}
	o.nw.ConnectBetween(o.rac, o.a, o.c)
	o.nw.ConnectBetween(o.rad, o.a, o.d)
	o.nw.ConnectBetween(o.rcb, o.c, o.b)
	o.nw.ConnectBetween(o.rdb, o.d, o.b)
	o.nw.ConnectBetween(o.rcd, o.c, o.d)
	o.nw.ConnectBetween(o.src, o.b, o.a)
	o.nw.Connect(o.org, o.b)
	return
}

func Test_rec01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("rec01. wheatstone bridge by layered reduction")

	prm := NewTestPrm()
	fx := newBridgeFixture(prm)
	rs, err := NewRecursiveSimplifier(prm, fx.nw, 0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	err = rs.PrepareRecursiveCalculation()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}
	err = rs.DoRecursiveCalculation()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}

	// exact solution of the bridge
	ec := 126.0 / 17.0
	ed := 116.0 / 17.0
	chk.Scalar(tst, "E(a)", 1e-10, fx.a.Effort(), 10)
	chk.Scalar(tst, "E(b)", 1e-10, fx.b.Effort(), 0)
	chk.Scalar(tst, "E(c)", 1e-10, fx.c.Effort(), ec)
	chk.Scalar(tst, "E(d)", 1e-10, fx.d.Effort(), ed)
	chk.Scalar(tst, "flow rac", 1e-10, fx.c.Flow(fx.rac), (10-ec)/100.0)
	chk.Scalar(tst, "flow rcd", 1e-10, fx.d.Flow(fx.rcd), (ec-ed)/500.0)
	chk.Scalar(tst, "KCL", 1e-10, MaxKclResidual(fx.nw), 0)
	if !fx.nw.IsCalculationFinished() {
		tst.Errorf("calculation must be finished\n")
		return
	}
}

func Test_rec02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("rec02. replays are bit-identical and resets are complete")

	prm := NewTestPrm()
	fx := newBridgeFixture(prm)
	rs, err := NewRecursiveSimplifier(prm, fx.nw, 0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}

	run := func() []float64 {
		if err := rs.PrepareRecursiveCalculation(); err != nil {
			tst.Fatalf("prepare failed: %v\n", err)
		}
		if err := rs.DoRecursiveCalculation(); err != nil {
			tst.Fatalf("solve failed: %v\n", err)
		}
		var res []float64
		for _, n := range fx.nw.Nodes {
			res = append(res, n.Effort())
		}
		for _, e := range fx.nw.Elems {
			if e.Nnodes() == 2 {
				res = append(res, e.Node(1).Flow(e))
			}
		}
		return res
	}
	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			tst.Errorf("replay differs at position %d: %g != %g\n", i, first[i], second[i])
			return
		}
	}
}

func Test_rec03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("rec03. dead ends are removed and a valve closure re-routes")

	prm := NewTestPrm()
	fx := newBridgeFixture(prm)

	// a dangling probe line off node c
	p1 := fx.nw.NewNode("electrical")
	probe := ele.NewDsp(7, prm, 1000)
	fx.nw.AddElement(probe)
	fx.nw.ConnectBetween(probe, fx.c, p1)

	rs, err := NewRecursiveSimplifier(prm, fx.nw, 0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	if len(rs.Dead) != 1 {
		tst.Errorf("the probe line must be removed as a dead end\n")
		return
	}
	err = rs.PrepareRecursiveCalculation()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}
	err = rs.DoRecursiveCalculation()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "probe flow", 1e-15, fx.c.Flow(probe), 0)
	chk.Scalar(tst, "E(c) unchanged", 1e-10, fx.c.Effort(), 126.0/17.0)

	// closing the bridge resistor (open kind) degrades the bridge to two dividers
	fx.rcd.SetOpenConnection()
	err = rs.PrepareRecursiveCalculation()
	if err != nil {
		tst.Errorf("prepare failed: %v\n", err)
		return
	}
	err = rs.DoRecursiveCalculation()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "E(c) divider", 1e-10, fx.c.Effort(), 10.0*300.0/400.0)
	chk.Scalar(tst, "E(d) divider", 1e-10, fx.d.Effort(), 10.0*400.0/600.0)
	chk.Scalar(tst, "bridge flow", 1e-15, fx.c.Flow(fx.rcd), 0)
}

func Test_rec04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("rec04. recursion depth cap")

	prm := NewTestPrm()
	prm.NmaxRec = 2
	fx := newBridgeFixture(prm)
	_, err := NewRecursiveSimplifier(prm, fx.nw, 0)
	if err == nil || ele.KindOfErr(err) != ele.ErrkindModel {
		tst.Errorf("exceeding the recursion cap must be a model error\n")
		return
	}
}
