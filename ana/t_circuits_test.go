// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_circ01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("circ01. two-series loop")

	ref := TwoSeries{V: 10, Rx: 100, Ry: 400, E0: 7}
	chk.Scalar(tst, "flow", 1e-15, ref.Flow(), 0.02)
	chk.Scalar(tst, "Ex", 1e-15, ref.EffortX(), 5)
	chk.Scalar(tst, "Ey", 1e-15, ref.EffortY(), 15)
}

func Test_circ02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("circ02. delta with source: circulation is conserved")

	ref := DeltaSource{V: 12, Rx: 200, Ry: 100, Rz: 600, E0: 5}
	chk.Scalar(tst, "Ey - Ex", 1e-15, ref.EffortY()-ref.EffortX(), 12)

	// flow into Z through Rx equals flow out of Z through Ry
	iin := (ref.EffortY() - ref.E0) / ref.Rx
	iout := (ref.E0 - ref.EffortX()) / ref.Ry
	chk.Scalar(tst, "circulation", 1e-15, iin, iout)
	chk.Scalar(tst, "circulation value", 1e-15, ref.CirculatingFlow(), iin)
}

func Test_circ03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("circ03. rc charge curve")

	ref := RCcharge{V: 100, R: 470e3, C: 5.6e-6}
	chk.Scalar(tst, "tau", 1e-12, ref.Tau(), 2.632)
	chk.Scalar(tst, "63 percent at tau", 1e-10, ref.Effort(ref.Tau()), 100*(1-math.Exp(-1)))
	chk.Scalar(tst, "initial flow", 1e-15, ref.Flow(0), 100/470e3)
	chk.Scalar(tst, "flows vanish at infinity", 1e-12, ref.Flow(100*ref.Tau()), 0)
}

func Test_circ04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("circ04. star equivalent polygon conductances")

	ref := StarEquivalent{G: []float64{2, 3, 5}}
	chk.Scalar(tst, "G01", 1e-15, ref.Gpair(0, 1), 0.6)
	chk.Scalar(tst, "G02", 1e-15, ref.Gpair(0, 2), 1.0)
	chk.Scalar(tst, "G12", 1e-15, ref.Gpair(1, 2), 1.5)
}
