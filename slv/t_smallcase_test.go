// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"testing"

	"github.com/cpmech/enet/ana"
	"github.com/cpmech/enet/ele"

	"github.com/cpmech/gosl/chk"
)

func Test_twoseries01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("twoseries01. closed-form two-series with origin between")

	prm := NewTestPrm()
	c := NewTwoSeriesCircuit(prm, 10, 100, 400, 7)
	sol, err := NewTwoSeriesSolver(prm, c.Nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	c.Nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}

	ref := ana.TwoSeries{V: 10, Rx: 100, Ry: 400, E0: 7}
	chk.Scalar(tst, "loop flow", 1e-12, c.Mid.Flow(c.Rx), -ref.Flow())
	chk.Scalar(tst, "E(nodeX)", 1e-12, c.NodeX.Effort(), ref.EffortX())
	chk.Scalar(tst, "E(nodeY)", 1e-12, c.NodeY.Effort(), ref.EffortY())
	chk.Scalar(tst, "E(nodeX) polarity", 1e-12, c.NodeX.Effort(), 7-2)
	chk.Scalar(tst, "E(nodeY) polarity", 1e-12, c.NodeY.Effort(), 7+8)
	chk.Scalar(tst, "origin carries nothing", 1e-15, c.Mid.Flow(c.Org), 0)
	chk.Scalar(tst, "KCL", 1e-12, MaxKclResidual(c.Nw), 0)
	if !c.Nw.IsCalculationFinished() {
		tst.Errorf("calculation must be finished\n")
		return
	}
}

func Test_twoseries02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("twoseries02. edge policies of the two-series shape")

	// open with effort source: zero flows; closed side without drop
	prm := NewTestPrm()
	c := NewTwoSeriesCircuit(prm, 10, 100, 400, 7)
	c.Rx.SetOpenConnection()
	sol, err := NewTwoSeriesSolver(prm, c.Nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	c.Nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "flow", 1e-15, c.Mid.Flow(c.Ry), 0)
	chk.Scalar(tst, "E(nodeY)", 1e-12, c.NodeY.Effort(), 7)
	chk.Scalar(tst, "E(nodeX)", 1e-12, c.NodeX.Effort(), -3)

	// both open: floating pair pinned via nodeY = 0
	c = NewTwoSeriesCircuit(prm, 10, 100, 400, 7)
	c.Rx.SetOpenConnection()
	c.Ry.SetOpenConnection()
	sol, err = NewTwoSeriesSolver(prm, c.Nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	c.Nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "E(nodeY) pseudo", 1e-15, c.NodeY.Effort(), 0)
	chk.Scalar(tst, "E(nodeX) pseudo", 1e-15, c.NodeX.Effort(), -10)

	// one bridged: total resistance is the surviving one
	c = NewTwoSeriesCircuit(prm, 10, 100, 400, 7)
	c.Rx.SetBridgedConnection()
	sol, err = NewTwoSeriesSolver(prm, c.Nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	c.Nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "loop flow", 1e-12, c.NodeY.Flow(c.Src), 0.025)
	chk.Scalar(tst, "E(nodeX) no drop", 1e-12, c.NodeX.Effort(), 7)

	// two bridged in series with an effort source: unsolvable
	c = NewTwoSeriesCircuit(prm, 10, 100, 400, 7)
	c.Rx.SetBridgedConnection()
	c.Ry.SetBridgedConnection()
	sol, err = NewTwoSeriesSolver(prm, c.Nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	c.Nw.PrepareCalculation()
	err = sol.Solve()
	if err == nil || ele.KindOfErr(err) != ele.ErrkindModel {
		tst.Errorf("two bridges with an effort source must fail\n")
		return
	}
}

func Test_twoseries03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("twoseries03. flow source variants")

	// flow source drives the loop directly
	prm := NewTestPrm()
	nw := ele.NewNetwork(prm)
	nx := nw.NewNode("electrical")
	mid := nw.NewNode("electrical")
	ny := nw.NewNode("electrical")
	fs := ele.NewFlowSource(0, prm, 0.02)
	rx := ele.NewDsp(1, prm, 100)
	ry := ele.NewDsp(2, prm, 400)
	org := ele.NewOrigin(3, prm, 0)
	nw.AddElement(fs)
	nw.AddElement(rx)
	nw.AddElement(ry)
	nw.AddElement(org)
	nw.ConnectBetween(fs, nx, ny)
	nw.ConnectBetween(rx, nx, mid)
	nw.ConnectBetween(ry, ny, mid)
	nw.Connect(org, mid)

	sol, err := NewTwoSeriesSolver(prm, nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "E(nodeY)", 1e-12, ny.Effort(), 8)
	chk.Scalar(tst, "E(nodeX)", 1e-12, nx.Effort(), -2)
	chk.Scalar(tst, "KCL", 1e-12, MaxKclResidual(nw), 0)

	// open in series with a flow source: unsolvable
	rx.SetOpenConnection()
	nw.PrepareCalculation()
	err = sol.Solve()
	if err == nil || ele.KindOfErr(err) != ele.ErrkindModel {
		tst.Errorf("open with flow source must fail\n")
		return
	}
}

func Test_deltasource01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("deltasource01. closed-form delta with source and origin")

	prm := NewTestPrm()
	nw := ele.NewNetwork(prm)
	nx := nw.NewNode("electrical")
	ny := nw.NewNode("electrical")
	nz := nw.NewNode("electrical")
	src := ele.NewEffortSource(0, prm, 12)
	rz := ele.NewDsp(1, prm, 600)
	ry := ele.NewDsp(2, prm, 100)
	rx := ele.NewDsp(3, prm, 200)
	org := ele.NewOrigin(4, prm, 5)
	nw.AddElement(src)
	nw.AddElement(rz)
	nw.AddElement(ry)
	nw.AddElement(rx)
	nw.AddElement(org)
	nw.ConnectBetween(src, nx, ny)
	nw.ConnectBetween(rz, nx, ny)
	nw.ConnectBetween(ry, nx, nz)
	nw.ConnectBetween(rx, ny, nz)
	nw.Connect(org, nz)

	sol, err := NewDeltaSourceSolver(prm, nw)
	if err != nil {
		tst.Errorf("shape detection failed: %v\n", err)
		return
	}
	nw.PrepareCalculation()
	err = sol.Solve()
	if err != nil {
		tst.Errorf("solve failed: %v\n", err)
		return
	}

	ref := ana.DeltaSource{V: 12, Rx: 200, Ry: 100, Rz: 600, E0: 5}
	chk.Scalar(tst, "E(nodeX)", 1e-12, nx.Effort(), ref.EffortX())
	chk.Scalar(tst, "E(nodeY)", 1e-12, ny.Effort(), ref.EffortY())
	chk.Scalar(tst, "flow rz", 1e-12, nx.Flow(rz), ref.ParallelFlow())
	chk.Scalar(tst, "flow ry", 1e-12, nx.Flow(ry), ref.CirculatingFlow())
	chk.Scalar(tst, "KCL", 1e-12, MaxKclResidual(nw), 0)
	if !nw.IsCalculationFinished() {
		tst.Errorf("calculation must be finished\n")
		return
	}

	// the edge parallel to the source must never be bridged
	rz.SetBridgedConnection()
	nw.PrepareCalculation()
	err = sol.Solve()
	if err == nil || ele.KindOfErr(err) != ele.ErrkindModel {
		tst.Errorf("bridged parallel to source must fail\n")
		return
	}
}
