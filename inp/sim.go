// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	ShowR   bool   `json:"showr"`   // print the flow of every two-port element after the run
	ListBcs bool   `json:"listbcs"` // list enforced efforts/flows before running
}

// SolverData holds network solver data
type SolverData struct {

	// iteration control
	NmaxIt  int `json:"nmaxit"`  // max number of propagation sweeps per tick
	NmaxRec int `json:"nmaxrec"` // max recursion depth for layered simplification
	Npool   int `json:"npool"`   // worker pool size for superposition layers; 0 => sequential

	// tolerances
	Eps     float64 `json:"eps"`     // validation and flow-sum tolerance
	ZeroTol float64 `json:"zerotol"` // values below this are pinned to exact zero
	FlowTol float64 `json:"flowtol"` // relative tolerance on solved flows

	// messages
	ShowWarn bool `json:"showwarn"` // print WARNING messages from pseudo-solutions and mismatches
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 1000
	o.NmaxRec = 1000
	o.Npool = 0
	o.Eps = 1e-3
	o.ZeroTol = 1e-11
	o.FlowTol = 1e-6
}

// PostProcess performs a post-processing of the just read json file
func (o *SolverData) PostProcess() {
	if o.NmaxIt < 1 {
		o.NmaxIt = 1000
	}
	if o.NmaxRec < 1 {
		o.NmaxRec = 1000
	}
	if o.Eps <= 0 {
		o.Eps = 1e-3
	}
	if o.ZeroTol <= 0 {
		o.ZeroTol = 1e-11
	}
	if o.FlowTol <= 0 {
		o.FlowTol = 1e-6
	}
}

// VertData holds one network junction read from the .sim file
type VertData struct {
	Id     int    `json:"id"`     // vertex id
	Domain string `json:"domain"` // physical domain tag; e.g. "electrical", "heatfluid"
}

// CellData holds one network element read from the .sim file
type CellData struct {

	// essential
	Id    int    `json:"id"`    // cell id
	Kind  string `json:"kind"`  // element kind; e.g. "dissipator", "effortsource", "origin"
	Verts []int  `json:"verts"` // connected vertex ids, in port order

	// parameters; which ones are meaningful depends on Kind
	R float64 `json:"r"` // resistance (dissipator)
	G float64 `json:"g"` // conductance (dissipator; used if R == 0)
	E float64 `json:"e"` // effort (effort source, origin, capacitance boundary)
	F float64 `json:"f"` // flow (flow source)

	// time-varying characteristics
	Fcn string `json:"fcn"` // name of function in "functions" giving the characteristic over time

	// couplings and special roles
	Coupled   int  `json:"coupled"`   // id of coupled element in another domain; values < 1 => none
	Expansion bool `json:"expansion"` // element injects exogenous flow towards a capacitance
}

// NetworkData holds the network description
type NetworkData struct {
	Verts []*VertData `json:"verts"` // junctions
	Cells []*CellData `json:"cells"` // elements
}

// Stage holds one simulation stage
type Stage struct {
	Desc   string  `json:"desc"`   // description of simulation stage
	Nticks int     `json:"nticks"` // number of ticks to run
	Dt     float64 `json:"dt"`     // tick duration
	Skip   bool    `json:"skip"`   // do not run this stage
}

// Simulation holds all simulation data read from the .sim file
type Simulation struct {

	// input
	Data      Data        `json:"data"`      // global simulation data
	Solver    SolverData  `json:"solver"`    // solver data
	Functions FuncsData   `json:"functions"` // time functions
	Network   NetworkData `json:"network"`   // network description
	Stages    []*Stage    `json:"stages"`    // stages

	// derived
	Key     string // simulation key; e.g. "ohm01"
	DirIn   string // directory containing the .sim file
	maxVert int    // largest vertex id
}

// ReadSim reads a simulation (.sim) input file
func ReadSim(simfilepath string) *Simulation {

	// new sim
	var o Simulation

	// read file
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		chk.Panic("ReadSim: cannot read simulation file %q", simfilepath)
	}

	// set default values
	o.Solver.SetDefault()

	// decode
	err = json.Unmarshal(b, &o)
	if err != nil {
		chk.Panic("ReadSim: cannot unmarshal simulation file %q", simfilepath)
	}

	// input directory and filename key
	dir := filepath.Dir(simfilepath)
	fn := filepath.Base(simfilepath)
	o.DirIn = os.ExpandEnv(dir)
	o.Key = io.FnKey(fn)

	// set solver constants
	o.Solver.PostProcess()

	// check
	err = o.Check()
	if err != nil {
		chk.Panic("ReadSim: simulation file %q is inconsistent:\n%v", simfilepath, err)
	}
	return &o
}

// Check verifies the consistency of the network description
func (o *Simulation) Check() (err error) {

	// vertices
	seen := make(map[int]bool)
	o.maxVert = -1
	for _, v := range o.Network.Verts {
		if seen[v.Id] {
			return chk.Err("duplicate vertex id %d", v.Id)
		}
		seen[v.Id] = true
		if v.Id > o.maxVert {
			o.maxVert = v.Id
		}
	}

	// cells
	cseen := make(map[int]bool)
	for _, c := range o.Network.Cells {
		if cseen[c.Id] {
			return chk.Err("duplicate cell id %d", c.Id)
		}
		cseen[c.Id] = true
		if len(c.Verts) < 1 {
			return chk.Err("cell %d is not connected to any vertex", c.Id)
		}
		for _, vid := range c.Verts {
			if !seen[vid] {
				return chk.Err("cell %d refers to unknown vertex %d", c.Id, vid)
			}
		}
		if c.Fcn != "" && c.Fcn != "zero" && c.Fcn != "none" {
			if _, ferr := o.Functions.Get(c.Fcn); ferr != nil {
				return chk.Err("cell %d refers to unknown function %q", c.Id, c.Fcn)
			}
		}
	}

	// couplings
	for _, c := range o.Network.Cells {
		if c.Coupled > 0 && !cseen[c.Coupled] {
			return chk.Err("cell %d is coupled to unknown cell %d", c.Id, c.Coupled)
		}
	}
	return
}

// Cell returns the cell with given id; nil if not found
func (o *Simulation) Cell(id int) *CellData {
	for _, c := range o.Network.Cells {
		if c.Id == id {
			return c
		}
	}
	return nil
}

// GetInfo returns formatted information about the simulation
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return
	}
	_, err = w.Write(b)
	return
}
