// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
)

// NewTestPrm returns solver parameters with default values, for tests
func NewTestPrm() *inp.SolverData {
	var prm inp.SolverData
	prm.SetDefault()
	return &prm
}

// OhmCircuit holds the parts of the basic test circuit:
// origin — effort source — resistor — origin
type OhmCircuit struct {
	Nw         *ele.Network
	P0, P1, P2 *ele.Node
	OrgA       *ele.Origin
	Src        *ele.EffortSource
	Res        *ele.Dsp
	OrgB       *ele.Origin
}

// NewOhmCircuit builds the basic circuit with source effort v and resistance r
func NewOhmCircuit(prm *inp.SolverData, v, r float64) (o *OhmCircuit) {
	o = &OhmCircuit{Nw: ele.NewNetwork(prm)}
	o.P0 = o.Nw.NewNode("electrical")
	o.P1 = o.Nw.NewNode("electrical")
	o.P2 = o.Nw.NewNode("electrical")
	o.OrgA = ele.NewOrigin(0, prm, 0)
	o.Src = ele.NewEffortSource(1, prm, v)
	o.Res = ele.NewDsp(2, prm, r)
	o.OrgB = ele.NewOrigin(3, prm, 0)
	o.Nw.AddElement(o.OrgA)
	o.Nw.AddElement(o.Src)
	o.Nw.AddElement(o.Res)
	o.Nw.AddElement(o.OrgB)
	o.Nw.Connect(o.OrgA, o.P0)
	o.Nw.ConnectBetween(o.Src, o.P0, o.P1)
	o.Nw.ConnectBetween(o.Res, o.P1, o.P2)
	o.Nw.Connect(o.OrgB, o.P2)
	return
}

// TwoSeriesCircuit holds the parts of the two-resistors-with-origin circuit
type TwoSeriesCircuit struct {
	Nw                *ele.Network
	NodeX, Mid, NodeY *ele.Node
	Src               *ele.EffortSource
	Rx, Ry            *ele.Dsp
	Org               *ele.Origin
}

// NewTwoSeriesCircuit builds the loop: source across (nodeX, nodeY), resistorX from
// nodeX to mid, resistorY from nodeY to mid, origin with effort e0 on mid
func NewTwoSeriesCircuit(prm *inp.SolverData, v, rx, ry, e0 float64) (o *TwoSeriesCircuit) {
	o = &TwoSeriesCircuit{Nw: ele.NewNetwork(prm)}
	o.NodeX = o.Nw.NewNode("electrical")
	o.Mid = o.Nw.NewNode("electrical")
	o.NodeY = o.Nw.NewNode("electrical")
	o.Src = ele.NewEffortSource(0, prm, v)
	o.Rx = ele.NewDsp(1, prm, rx)
	o.Ry = ele.NewDsp(2, prm, ry)
	o.Org = ele.NewOrigin(3, prm, e0)
	o.Nw.AddElement(o.Src)
	o.Nw.AddElement(o.Rx)
	o.Nw.AddElement(o.Ry)
	o.Nw.AddElement(o.Org)
	o.Nw.ConnectBetween(o.Src, o.NodeX, o.NodeY)
	o.Nw.ConnectBetween(o.Rx, o.NodeX, o.Mid)
	o.Nw.ConnectBetween(o.Ry, o.NodeY, o.Mid)
	o.Nw.Connect(o.Org, o.Mid)
	return
}

// MaxKclResidual returns the largest flow-sum magnitude over all fully flowed nodes
func MaxKclResidual(nw *ele.Network) float64 {
	res, _ := nw.FlowResidual()
	return res
}
