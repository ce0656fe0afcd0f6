// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ele

import (
	"github.com/cpmech/enet/inp"

	"github.com/cpmech/gosl/chk"
)

// Kind defines the element kind
type Kind int

const (
	KindDissipator   Kind = iota // linear resistor with conductance G and resistance R=1/G
	KindOpen                     // infinite resistance; a present-but-inactive connection
	KindBridged                  // zero resistance (short)
	KindEffortSource             // imposes a fixed effort difference between its two ports
	KindFlowSource               // imposes a fixed flow through itself
	KindOrigin                   // reference with a fixed effort (ground)
	KindCapacitance              // external storage exposing an effort boundary this tick
)

// kindnames maps kinds to names used in .sim files
var kindnames = []string{"dissipator", "open", "bridged", "effortsource", "flowsource", "origin", "capacitance"}

// String returns the name of this kind
func (o Kind) String() string {
	if o < 0 || int(o) >= len(kindnames) {
		return "unknown"
	}
	return kindnames[o]
}

// KindByName returns the kind corresponding to name
func KindByName(name string) (Kind, error) {
	for i, n := range kindnames {
		if n == name {
			return Kind(i), nil
		}
	}
	return -1, ErrModel("unknown element kind %q", name)
}

// IsResistor tells whether k belongs to the resistor family. Open and bridged connections
// are structural resistors: R transitions through them by kind change, not by numerics.
func (o Kind) IsResistor() bool {
	return o == KindDissipator || o == KindOpen || o == KindBridged
}

// IsEnforcer tells whether elements of kind k impose effort or flow values on their nodes
func (o Kind) IsEnforcer() bool {
	return o == KindOrigin || o == KindCapacitance || o == KindEffortSource || o == KindFlowSource
}

// IsEffortForcing tells whether elements of kind k force the absolute effort of their nodes
func (o Kind) IsEffortForcing() bool {
	return o == KindOrigin || o == KindCapacitance
}

// Element defines what all network elements must implement
type Element interface {

	// information
	Id() int                     // returns the element id
	Kind() Kind                  // returns the element kind
	Nnodes() int                 // number of connected nodes
	Node(i int) *Node            // returns the i-th connected node, in port order
	RegisterNode(n *Node)        // appends a node; called by Network.Connect only
	CoupledElement() Element     // element coupled across a domain boundary; nil if none
	SetCoupledElement(e Element) // couples this element to one in another domain
	IsLinear() bool              // whether the local law is linear in effort and flow

	// called for each tick
	PrepareCalculation()                      // reset per-tick state and recompute parameters
	DoCalculation() (changed bool, err error) // attempt to complete local unknowns
	IsCalculationFinished() bool              // whether all local values are defined
}

// Dissipator defines the resistor subcontract
type Dissipator interface {
	Element
	SetResistanceParameter(r float64)  // sets R (and G=1/R); kind becomes dissipator
	SetConductanceParameter(g float64) // sets G (and R=1/G); kind becomes dissipator
	SetOpenConnection()                // kind becomes open
	SetBridgedConnection()             // kind becomes bridged
	Resistance() float64               // R; panics unless kind is dissipator
	Conductance() float64              // G; panics unless kind is dissipator
	SetExternalDeltaEffort(d float64)  // layer-local effort offset added to port 0
}

// FlowInjector defines elements that inject exogenous flow (e.g. expanding volumes).
// Their solved flows must not be transferred back from the electrical twin.
type FlowInjector interface {
	InjectsFlow() bool
}

// OnlyOtherNode returns the node of e other than 'from'. A navigation error is returned
// when e does not have exactly 2 nodes.
func OnlyOtherNode(e Element, from *Node) (*Node, error) {
	if e.Nnodes() != 2 {
		return nil, ErrNoFlowThrough("element %d has %d nodes; cannot pick the only other one", e.Id(), e.Nnodes())
	}
	if e.Node(0) == from {
		return e.Node(1), nil
	}
	if e.Node(1) == from {
		return e.Node(0), nil
	}
	return nil, ErrNoFlowThrough("element %d is not connected to node %d", e.Id(), from.Id())
}

// twoport holds the shared plumbing of two-port elements
type twoport struct {
	Eid  int
	Prm  *inp.SolverData
	Nods []*Node
	Coup Element
}

// Id returns the element id
func (o *twoport) Id() int { return o.Eid }

// Nnodes returns the number of connected nodes
func (o *twoport) Nnodes() int { return len(o.Nods) }

// Node returns the i-th connected node
func (o *twoport) Node(i int) *Node { return o.Nods[i] }

// RegisterNode appends a node to this element
func (o *twoport) RegisterNode(n *Node) {
	if len(o.Nods) >= 2 {
		chk.Panic("element %d: cannot register more than 2 nodes", o.Eid)
	}
	o.Nods = append(o.Nods, n)
}

// CoupledElement returns the element coupled across a domain boundary; nil if none
func (o *twoport) CoupledElement() Element { return o.Coup }

// SetCoupledElement couples this element to one in another domain
func (o *twoport) SetCoupledElement(e Element) { o.Coup = e }

// throughFlow returns the flow from port 0 to port 1 through the element, if known at
// either node
func (o *twoport) throughFlow(e Element) (i float64, known bool) {
	if len(o.Nods) != 2 {
		return 0, false
	}
	if o.Nods[1].FlowUpdated(e) {
		return o.Nods[1].Flow(e), true
	}
	if o.Nods[0].FlowUpdated(e) {
		return -o.Nods[0].Flow(e), true
	}
	return 0, false
}

// setThroughFlow assigns the port0→port1 flow at both nodes, with into-node signs
func (o *twoport) setThroughFlow(e Element, i float64, force bool) (err error) {
	err = o.Nods[0].SetFlow(-i, e, force)
	if err != nil {
		return
	}
	return o.Nods[1].SetFlow(i, e, force)
}

// completeByKCL sets the flow of e when it is the single missing one at either node, and
// mirrors it to the opposite node
func (o *twoport) completeByKCL(e Element) (changed bool, err error) {
	if _, known := o.throughFlow(e); known {
		// mirror a one-sided value to the other node
		i, _ := o.throughFlow(e)
		if !o.Nods[0].FlowUpdated(e) {
			err = o.Nods[0].SetFlow(-i, e, false)
			return true, err
		}
		if !o.Nods[1].FlowUpdated(e) {
			err = o.Nods[1].SetFlow(i, e, false)
			return true, err
		}
		return false, nil
	}
	for _, n := range o.Nods {
		if missing, val, ok := n.MissingFlow(); ok && missing == e {
			err = n.SetFlow(val, e, false)
			if err != nil {
				return true, err
			}
			var i float64
			if n == o.Nods[0] {
				i = -val
			} else {
				i = val
			}
			err = o.setThroughFlow(e, i, false)
			return true, err
		}
	}
	return false, nil
}

// finished tells whether both node efforts and both own flows are defined
func (o *twoport) finished(e Element) bool {
	if len(o.Nods) != 2 {
		return false
	}
	for _, n := range o.Nods {
		if !n.EffortUpdated() || !n.FlowUpdated(e) {
			return false
		}
	}
	return true
}

// allocators holds all available element allocators; kind name => allocator
var allocators = make(map[string]func(id int, prm *inp.SolverData, cell *inp.CellData) Element)

// New returns a new element from input data
func New(id int, prm *inp.SolverData, cell *inp.CellData) (e Element, err error) {
	allocator, ok := allocators[cell.Kind]
	if !ok {
		err = ErrModel("cannot find allocator for element {kind=%q, id=%d}", cell.Kind, cell.Id)
		return
	}
	e = allocator(id, prm, cell)
	if e == nil {
		err = ErrModel("element {kind=%q, id=%d} is not available", cell.Kind, cell.Id)
	}
	return
}
