// Copyright 2016 The Enet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ele implements the network primitives: nodes, elements and their local calculations
package ele

import "github.com/cpmech/gosl/io"

// failure kinds returned by the solver core
const (
	ErrkindModel       = iota // topology/configuration violation detected at setup or tick
	ErrkindCalculation        // numerical inconsistency beyond tolerance
	ErrkindNoFlow             // navigation failed because the traversed object has != 2 connections
)

// Error implements the error interface with a failure kind attached
type Error struct {
	Kind int    // one of Errkind...
	Msg  string // message
}

// Error returns the message
func (o *Error) Error() string { return o.Msg }

// ErrModel returns a new model error (topology/configuration violation)
func ErrModel(msg string, prm ...interface{}) error {
	return &Error{ErrkindModel, io.Sf(msg, prm...)}
}

// ErrCalc returns a new calculation error (numerical inconsistency)
func ErrCalc(msg string, prm ...interface{}) error {
	return &Error{ErrkindCalculation, io.Sf(msg, prm...)}
}

// ErrNoFlowThrough returns a new navigation error
func ErrNoFlowThrough(msg string, prm ...interface{}) error {
	return &Error{ErrkindNoFlow, io.Sf(msg, prm...)}
}

// KindOfErr returns the failure kind of err; -1 if err is not an *Error
func KindOfErr(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return -1
}

// IsCalcErr tells whether err is a recoverable numerical inconsistency
func IsCalcErr(err error) bool { return KindOfErr(err) == ErrkindCalculation }

// IsNoFlowThrough tells whether err comes from a failed navigation
func IsNoFlowThrough(err error) bool { return KindOfErr(err) == ErrkindNoFlow }
