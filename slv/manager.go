// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// Manager assembles the network from input data and drives the solver core per tick: the
// host calls PrepareCalculation and DoCalculation, in that order, once per tick.
type Manager struct {

	// input and assembled model
	Sim *inp.Simulation
	Prm *inp.SolverData
	Nw  *ele.Network
	Dec *Decomposer

	// maps between input ids and model handles
	Vid2node []*ele.Node   // vertex id => node
	Cid2elem []ele.Element // cell id => element

	// time-varying characteristics of enforcers without their own function slot
	fcns map[ele.Element]fun.TimeSpace

	// control
	ShowMsg  bool
	Warnings int
}

// NewManager builds the network described by sim, checks it and runs the decomposition
func NewManager(sim *inp.Simulation, verbose bool) (o *Manager, err error) {
	o = &Manager{Sim: sim, Prm: &sim.Solver, ShowMsg: verbose}
	o.Prm.ShowWarn = o.Prm.ShowWarn || verbose
	o.Nw = ele.NewNetwork(o.Prm)
	o.fcns = make(map[ele.Element]fun.TimeSpace)

	// nodes
	maxv, maxc := -1, -1
	for _, v := range sim.Network.Verts {
		if v.Id > maxv {
			maxv = v.Id
		}
	}
	for _, c := range sim.Network.Cells {
		if c.Id > maxc {
			maxc = c.Id
		}
	}
	o.Vid2node = make([]*ele.Node, maxv+1)
	o.Cid2elem = make([]ele.Element, maxc+1)
	for _, v := range sim.Network.Verts {
		o.Vid2node[v.Id] = o.Nw.NewNode(v.Domain)
	}

	// elements
	for _, c := range sim.Network.Cells {
		e, eerr := ele.New(len(o.Nw.Elems), o.Prm, c)
		if eerr != nil {
			return nil, eerr
		}
		o.Nw.AddElement(e)
		o.Cid2elem[c.Id] = e
		for _, vid := range c.Verts {
			if err = o.Nw.Connect(e, o.Vid2node[vid]); err != nil {
				return nil, err
			}
		}

		// time function binding
		if c.Fcn != "" && c.Fcn != "none" {
			fcn, ferr := sim.Functions.Get(c.Fcn)
			if ferr != nil {
				return nil, ferr
			}
			switch t := e.(type) {
			case *ele.EffortSource:
				t.Fcn = fcn
			case *ele.FlowSource:
				t.Fcn = fcn
			default:
				o.fcns[e] = fcn
			}
		}
	}

	// couplings across domain boundaries
	for _, c := range sim.Network.Cells {
		if c.Coupled > 0 {
			o.Cid2elem[c.Id].SetCoupledElement(o.Cid2elem[c.Coupled])
		}
	}

	// checks and decomposition
	if err = o.Nw.CheckSetup(); err != nil {
		return nil, err
	}
	if len(o.Nw.Nodes) == 0 {
		return nil, ele.ErrModel("simulation %q describes an empty network", sim.Key)
	}
	InstallPool(o.Prm.Npool)
	o.Dec, err = NewDecomposer(o.Prm, o.Nw.Nodes[0])
	if err != nil {
		return nil, err
	}
	if o.ShowMsg {
		io.Pf("> %d nodes, %d elements, %d subnets, %d self-solving\n",
			len(o.Nw.Nodes), len(o.Nw.Elems), len(o.Dec.Subnets), len(o.Dec.SelfSolving))
	}
	return
}

// PrepareCalculation starts a tick at time t: characteristics are updated and the
// per-tick state is reset
func (o *Manager) PrepareCalculation(t float64) (err error) {
	for _, e := range o.Nw.Elems {
		switch s := e.(type) {
		case *ele.EffortSource:
			s.UpdateCharacteristic(t)
		case *ele.FlowSource:
			s.UpdateCharacteristic(t)
		case *ele.Origin:
			if fcn := o.fcns[e]; fcn != nil {
				s.SetEffortParameter(fcn.F(t, nil))
			}
		case *ele.Capacitance:
			if fcn := o.fcns[e]; fcn != nil {
				s.SetBoundaryEffort(fcn.F(t, nil))
			}
		}
	}
	return o.Dec.PrepareCalculation()
}

// DoCalculation completes the tick started by PrepareCalculation
func (o *Manager) DoCalculation() (err error) {
	err = o.Dec.DoCalculation()
	o.Warnings += o.Dec.Warnings
	return
}

// Run executes all stages of the simulation
func (o *Manager) Run() (err error) {
	t := 0.0
	for i, stg := range o.Sim.Stages {
		if stg.Skip {
			continue
		}
		if o.ShowMsg {
			io.Pf("> Running stage %d (%d ticks)\n", i, stg.Nticks)
		}
		for n := 0; n < stg.Nticks; n++ {
			t += stg.Dt
			if err = o.PrepareCalculation(t); err != nil {
				return
			}
			if err = o.DoCalculation(); err != nil {
				return
			}
		}
	}
	return
}

// Clean releases the process-scoped resources
func (o *Manager) Clean() {
	RemovePool()
}
