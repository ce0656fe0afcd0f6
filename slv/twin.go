// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slv

import (
	"github.com/cpmech/enet/ele"
	"github.com/cpmech/enet/inp"
)

// MakeTwin returns an unconnected copy of e for use inside a derived network. Parameter
// values are re-copied each tick via CopyTwinValues; only the structure is fixed here.
func MakeTwin(e ele.Element, id int, prm *inp.SolverData) (twin ele.Element, err error) {
	switch t := e.(type) {
	case ele.Dissipator:
		d := ele.NewDsp(id, prm, 1)
		switch t.Kind() {
		case ele.KindOpen:
			d.SetOpenConnection()
		case ele.KindBridged:
			d.SetBridgedConnection()
		default:
			d.SetConductanceParameter(t.Conductance())
		}
		return d, nil
	case *ele.EffortSource:
		return ele.NewEffortSource(id, prm, t.Eval), nil
	case *ele.FlowSource:
		s := ele.NewFlowSource(id, prm, t.Fval)
		s.Xpd = t.Xpd
		return s, nil
	case *ele.Origin:
		return ele.NewOrigin(id, prm, t.Eref), nil
	case *ele.Capacitance:
		return ele.NewCapacitance(id, prm, t.Eb), nil
	}
	return nil, ele.ErrModel("element %d (kind %q) cannot be copied into a derived network", e.Id(), e.Kind())
}

// CopyTwinValues copies the per-tick parameter values of src into its twin dst
func CopyTwinValues(src, dst ele.Element) {
	switch s := src.(type) {
	case ele.Dissipator:
		d := dst.(ele.Dissipator)
		switch s.Kind() {
		case ele.KindOpen:
			d.SetOpenConnection()
		case ele.KindBridged:
			d.SetBridgedConnection()
		default:
			d.SetConductanceParameter(s.Conductance())
		}
	case *ele.EffortSource:
		dst.(*ele.EffortSource).Eval = s.Eval
	case *ele.FlowSource:
		dst.(*ele.FlowSource).Fval = s.Fval
	case *ele.Origin:
		dst.(*ele.Origin).Eref = s.Eref
	case *ele.Capacitance:
		dst.(*ele.Capacitance).Eb = s.Eb
	}
}

// ThroughFlow returns the port0→port1 flow of a two-port element, if its nodes know it
func ThroughFlow(e ele.Element) (i float64, known bool) {
	if e.Nnodes() != 2 {
		return 0, false
	}
	if e.Node(1).FlowUpdated(e) {
		return e.Node(1).Flow(e), true
	}
	if e.Node(0).FlowUpdated(e) {
		return -e.Node(0).Flow(e), true
	}
	return 0, false
}

// SetThroughFlow assigns the port0→port1 flow of a two-port element at both its nodes
func SetThroughFlow(e ele.Element, i float64, force bool) (err error) {
	err = e.Node(0).SetFlow(-i, e, force)
	if err != nil {
		return
	}
	return e.Node(1).SetFlow(i, e, force)
}
