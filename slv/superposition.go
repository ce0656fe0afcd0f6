// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"math"

	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/io"
)

// SuperPosition solves a linear multi-source subnet by superposition: one overlay per
// source, each solved independently (across the worker pool when one is installed), the
// per-layer flows summed on every dissipator and a final propagation sweep restoring the
// full node and element state.
type SuperPosition struct {

	// constants
	Prm     *inp.SolverData
	Net     *ele.Network
	Ground  *ele.Node     // node of the single origin
	Sources []ele.Element // effort and flow sources, in insertion order
	Layers  []*Overlay    // one per source

	// final sweep
	it       *SimpleIterator
	Warnings int
}

// NewSuperPosition builds the overlays for nw at setup time. The subnet must carry
// exactly one origin: subnets with several references are normalized by the transfer
// subnet translator before reaching here.
func NewSuperPosition(prm *inp.SolverData, nw *ele.Network) (o *SuperPosition, err error) {
	o = &SuperPosition{Prm: prm, Net: nw}
	for _, e := range nw.Elems {
		switch e.Kind() {
		case ele.KindOrigin:
			if o.Ground != nil {
				return nil, ele.ErrModel("superposition: subnet has more than one origin; normalize via a transfer subnet")
			}
			o.Ground = e.Node(0)
		case ele.KindEffortSource, ele.KindFlowSource:
			o.Sources = append(o.Sources, e)
		case ele.KindCapacitance:
			return nil, ele.ErrModel("superposition: subnet holds capacitance %d; route it via a transfer subnet", e.Id())
		}
	}
	for _, s := range o.Sources {
		layer, lerr := NewOverlay(prm, nw, s, o.Ground)
		if lerr != nil {
			return nil, lerr
		}
		o.Layers = append(o.Layers, layer)
	}
	o.it = NewSimpleIterator(prm, nw.Elems)
	return
}

// PrepareCalculation copies the current parameter values into every layer
func (o *SuperPosition) PrepareCalculation() (err error) {
	o.Warnings = 0
	o.it.PrepareCalculation()
	for _, layer := range o.Layers {
		if err = layer.Prepare(); err != nil {
			return
		}
	}
	return
}

// DoCalculation solves all layers, sums their flows and restores the full state
func (o *SuperPosition) DoCalculation() (err error) {
	if err = o.Net.CheckTick(); err != nil {
		return
	}

	// solve the active layers; layers whose sole source is zero contribute nothing
	var tasks []func() error
	for _, layer := range o.Layers {
		if layer.dead || layer.Skip {
			continue
		}
		tasks = append(tasks, layer.Solve)
	}
	if workerPool != nil {
		err = workerPool.Run(tasks)
	} else {
		for _, task := range tasks {
			if err = task(); err != nil {
				break
			}
		}
	}
	if err != nil {
		return
	}
	for _, layer := range o.Layers {
		o.Warnings += layer.Warnings
	}

	// restore the subnet state: enforcers first, then the summed dissipator flows
	o.Net.ClearState()
	if err = o.it.DoCalculationOnEnforcerElements(); err != nil {
		return
	}
	for _, e := range o.Net.Elems {
		if !e.Kind().IsResistor() || e.Nnodes() != 2 {
			continue
		}
		total := 0.0
		for _, layer := range o.Layers {
			total += layer.LayerFlow(e)
		}
		if err = o.recover(SetThroughFlow(e, total, false)); err != nil {
			return
		}
	}

	// final propagation sweep
	if err = o.it.DoCalculation(); err != nil {
		return
	}
	o.Warnings += o.it.Warnings

	// otherwise undetermined node efforts take the per-layer average as pseudo-solution
	pinned := false
	for _, n := range o.Net.Nodes {
		if n.EffortUpdated() {
			continue
		}
		sum, cnt := 0.0, 0
		for _, layer := range o.Layers {
			if v, ok := layer.LayerEffort(n); ok {
				sum += v
				cnt++
			}
		}
		avg := 0.0
		if cnt > 0 {
			avg = sum / float64(cnt)
		}
		o.warn("node %d is floating; using mean layer effort %g as pseudo-solution", n.Id(), avg)
		if err = o.recover(n.SetEffort(avg, nil, false)); err != nil {
			return
		}
		pinned = true
	}
	if pinned {
		if err = o.it.DoCalculation(); err != nil {
			return
		}
	}

	// sanity: flow sums at every node within tolerance
	if res, vid := o.Net.FlowResidual(); res > o.Prm.Eps {
		o.warn("flow sum at node %d exceeds tolerance: |%g| > %g", vid, res, o.Prm.Eps)
	}
	return
}

// IsCalculationFinished tells whether all subnet elements completed their local values
func (o *SuperPosition) IsCalculationFinished() bool { return o.it.IsCalculationFinished() }

// FlowRelError returns the relative difference between two flows, for sanity checks
func FlowRelError(a, b float64) float64 {
	den := math.Max(math.Abs(a), math.Abs(b))
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}

// recover filters recoverable inconsistencies: the first written value wins
func (o *SuperPosition) recover(err error) error {
	if err != nil && ele.IsCalcErr(err) {
		o.warn("%v", err)
		return nil
	}
	return err
}

// warn logs and counts a recoverable inconsistency
func (o *SuperPosition) warn(msg string, prm ...interface{}) {
	o.Warnings++
	if o.Prm.ShowWarn {
		io.Pfyel("WARNING: "+msg+"\n", prm...)
	}
}
