// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements closed-form solutions of small reference circuits, used to
// check the network solvers
package ana

import "math"

// TwoSeries computes the response of a loop made of one effort source V, two resistors
// Rx and Ry in series, and a reference effort E0 on the node between the resistors:
//
//	J  = V / (Rx + Ry)     loop flow, circulating source → nodeY → mid → nodeX
//	Ex = E0 - J・Rx
//	Ey = E0 + J・Ry
type TwoSeries struct {
	V  float64 // source effort difference: Ey - Ex
	Rx float64 // resistance between nodeX and the reference node
	Ry float64 // resistance between nodeY and the reference node
	E0 float64 // reference effort
}

// Flow returns the loop flow
func (o *TwoSeries) Flow() float64 { return o.V / (o.Rx + o.Ry) }

// EffortX returns the effort at the node facing port 0 of the source
func (o *TwoSeries) EffortX() float64 { return o.E0 - o.Flow()*o.Rx }

// EffortY returns the effort at the node facing port 1 of the source
func (o *TwoSeries) EffortY() float64 { return o.E0 + o.Flow()*o.Ry }

// DeltaSource computes the response of a triangle of resistors with an effort source V
// across the X-Y edge and a reference effort E0 on the opposing corner Z. The corner
// potentials follow the divider through Ry (X-Z) and Rx (Y-Z):
//
//	Ex = E0 - V・Gx/(Gx+Gy)
//	Ey = Ex + V
type DeltaSource struct {
	V  float64 // source effort difference: Ey - Ex
	Rx float64 // edge nodeY-nodeZ
	Ry float64 // edge nodeX-nodeZ
	Rz float64 // edge nodeX-nodeY, parallel to the source
	E0 float64 // reference effort at nodeZ
}

// EffortX returns the potential at nodeX
func (o *DeltaSource) EffortX() float64 {
	gx, gy := 1.0/o.Rx, 1.0/o.Ry
	return o.E0 - o.V*gx/(gx+gy)
}

// EffortY returns the potential at nodeY
func (o *DeltaSource) EffortY() float64 { return o.EffortX() + o.V }

// CirculatingFlow returns the flow around the divider loop (Y → Z → X)
func (o *DeltaSource) CirculatingFlow() float64 {
	gx, gy := 1.0/o.Rx, 1.0/o.Ry
	return o.V * gx * gy / (gx + gy)
}

// ParallelFlow returns the flow through the edge parallel to the source (Y → X)
func (o *DeltaSource) ParallelFlow() float64 { return o.V / o.Rz }

// RCcharge computes the charge curve of a capacitance C behind a resistance R driven by
// a step source V applied at t=0:
//
//	E(t) = V・(1 - exp(-t/(R・C)))
type RCcharge struct {
	V float64 // step source value
	R float64 // series resistance
	C float64 // capacitance
}

// Tau returns the time constant R・C
func (o *RCcharge) Tau() float64 { return o.R * o.C }

// Effort returns the capacitance effort at time t
func (o *RCcharge) Effort(t float64) float64 {
	return o.V * (1.0 - math.Exp(-t/o.Tau()))
}

// Flow returns the charging flow at time t
func (o *RCcharge) Flow(t float64) float64 {
	return o.V / o.R * math.Exp(-t/o.Tau())
}

// StarEquivalent computes the polygon conductances equivalent to a star of branch
// conductances G, in admittance form
type StarEquivalent struct {
	G []float64 // branch conductances
}

// Gpair returns the polygon conductance joining the outer nodes of branches i and j
func (o *StarEquivalent) Gpair(i, j int) float64 {
	sum := 0.0
	for _, g := range o.G {
		sum += g
	}
	return o.G[i] * o.G[j] / sum
}
