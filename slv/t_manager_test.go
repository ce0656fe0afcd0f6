// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"testing"

	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// ohmSim describes the basic circuit the way a .sim file would
func ohmSim() *inp.Simulation {
	var sim inp.Simulation
	sim.Key = "ohm-mem"
	sim.Solver.SetDefault()
	sim.Network.Verts = []*inp.VertData{
		{Id: 0, Domain: "electrical"},
		{Id: 1, Domain: "electrical"},
		{Id: 2, Domain: "electrical"},
	}
	sim.Network.Cells = []*inp.CellData{
		{Id: 1, Kind: "origin", Verts: []int{0}},
		{Id: 2, Kind: "effortsource", Verts: []int{0, 1}, E: 16},
		{Id: 3, Kind: "dissipator", Verts: []int{1, 2}, R: 800},
		{Id: 4, Kind: "origin", Verts: []int{2}},
	}
	sim.Stages = []*inp.Stage{{Nticks: 1, Dt: 1}}
	return &sim
}

func Test_manager01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("manager01. assemble and run the basic circuit")

	sim := ohmSim()
	if err := sim.Check(); err != nil {
		tst.Errorf("simulation data is inconsistent: %v\n", err)
		return
	}
	m, err := NewManager(sim, false)
	if err != nil {
		tst.Errorf("cannot allocate manager: %v\n", err)
		return
	}
	defer m.Clean()
	err = m.Run()
	if err != nil {
		tst.Errorf("run failed: %v\n", err)
		return
	}

	n1 := m.Vid2node[1]
	res := m.Cid2elem[3]
	chk.Scalar(tst, "E(p1)", 1e-6, n1.Effort(), 16)
	chk.Scalar(tst, "flow", 1e-6, m.Vid2node[2].Flow(res), 0.02)
	chk.IntAssert(m.Warnings, 0)
}

func Test_manager02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("manager02. time-varying source characteristic")

	sim := ohmSim()
	sim.Functions = inp.FuncsData{
		{Name: "rampup", Type: "lin", Prms: dbf.Params{{N: "m", V: 4}}},
	}
	sim.Network.Cells[1].Fcn = "rampup" // the effort source follows 4*t
	sim.Stages = []*inp.Stage{{Nticks: 3, Dt: 1}}
	m, err := NewManager(sim, false)
	if err != nil {
		tst.Errorf("cannot allocate manager: %v\n", err)
		return
	}
	defer m.Clean()
	err = m.Run()
	if err != nil {
		tst.Errorf("run failed: %v\n", err)
		return
	}

	// after 3 ticks the source sits at 12
	chk.Scalar(tst, "E(p1)", 1e-6, m.Vid2node[1].Effort(), 12)
	chk.Scalar(tst, "flow", 1e-6, m.Vid2node[2].Flow(m.Cid2elem[3]), 12.0/800.0)
}

func Test_manager03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("manager03. setup violations are caught before solving")

	// two effort-forcing elements on one node
	sim := ohmSim()
	sim.Network.Cells = append(sim.Network.Cells, &inp.CellData{Id: 5, Kind: "origin", Verts: []int{0}, E: 3})
	_, err := NewManager(sim, false)
	if err == nil {
		tst.Errorf("two origins on one node must fail\n")
		return
	}
}
