package solver

import "errors"

var (
	// ErrInvalidComponent means a requested or inventory component does not
	// fit its type definition.
	ErrInvalidComponent = errors.New("solver: invalid component")

	// ErrUnknownNode means an inventory terminal is not in the alphabet.
	ErrUnknownNode = errors.New("solver: unknown physical node")

	// ErrEmptyCircuit means nothing was left to place after triage.
	ErrEmptyCircuit = errors.New("solver: nothing to place")

	// ErrContradiction means the wires join two symbols already fixed to
	// different physical nodes.
	ErrContradiction = errors.New("solver: contradictory wiring")

	// ErrAmbiguousInstrument is returned under PolicyFail when two
	// instrument terminals share a node group.
	ErrAmbiguousInstrument = errors.New("solver: instruments attached to the same node")

	// ErrNotRealizable means the search was exhausted.
	ErrNotRealizable = errors.New("solver: circuit cannot be realized with this inventory")

	// ErrNoSpareNode means a parked instrument needed a free node and none
	// was left.
	ErrNoSpareNode = errors.New("solver: no spare node left")
)
