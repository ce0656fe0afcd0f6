// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
	"github.com/cpmech/enet/slv"

	"github.com/cpmech/gosl/io"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// message
	io.PfWhite("\nEnet -- Engineering Network Solver\n\n")
	io.Pf("Copyright 2016 The Enet Authors. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	// simulation filenamepath
	flag.Parse()
	var fnamepath string
	if len(flag.Args()) > 0 {
		fnamepath = flag.Arg(0)
	} else {
		io.PfRed("Please, provide a simulation (.sim) input file\n")
		return
	}

	// read input, build and run
	sim := inp.ReadSim(fnamepath)
	m, err := slv.NewManager(sim, true)
	if err != nil {
		io.PfRed("cannot allocate solver:\n%v\n", err)
		return
	}
	defer m.Clean()
	if sim.Data.ListBcs {
		io.Pf("\nenforced values:\n")
		for _, e := range m.Nw.Elems {
			switch t := e.(type) {
			case *ele.Origin:
				io.Pf("  origin %3d : effort = %g\n", t.Id(), t.Eref)
			case *ele.Capacitance:
				io.Pf("  capac  %3d : effort = %g\n", t.Id(), t.Eb)
			case *ele.EffortSource:
				io.Pf("  esrc   %3d : effort = %g\n", t.Id(), t.Eval)
			case *ele.FlowSource:
				io.Pf("  fsrc   %3d : flow   = %g\n", t.Id(), t.Fval)
			}
		}
		io.Pf("\n")
	}
	err = m.Run()
	if err != nil {
		io.PfRed("solver failed:\n%v\n", err)
		return
	}

	// report
	io.Pf("\n")
	for _, n := range m.Nw.Nodes {
		io.Pf("node %3d : effort = %23.15e\n", n.Id(), n.Effort())
	}
	if m.Sim.Data.ShowR {
		for _, e := range m.Nw.Elems {
			if e.Nnodes() == 2 {
				io.Pf("elem %3d : flow   = %23.15e\n", e.Id(), e.Node(1).Flow(e))
			}
		}
	}
	if m.Warnings > 0 {
		io.Pfyel("\n%d warnings were issued\n", m.Warnings)
	} else {
		io.PfGreen("\nSuccess\n")
	}
}
