/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import "jacobin/types"

// ConstructionState tracks whether an object's instance initializer has run
// to completion. `new` publishes a reference to the caller before <init>
// runs (spec §6: "a half-constructed instance is a legal, if fragile,
// reference"), so a reference escaping during construction is possible. The
// interpreter never blocks on this field, and nothing in this core sets it
// to Initialized, so objects keep State Allocated.
type ConstructionState byte

const (
	Allocated ConstructionState = iota
	Initialized
)

// Object is a single heap instance: its class, the flattened value of every
// instance field (including inherited ones) in declaration order, and
// whether its constructor has finished.
type Object struct {
	ClassID types.ClassID

	// Fields holds one Slot per instance field, ordered superclass-first
	// then declaration order within each class (spec §3: "instance_fields:
	// Slot[]; order matches the owning class's field declaration order").
	// Wide (Long/Double) fields occupy two consecutive entries, the second
	// holding a Tombstone, exactly as in a locals array.
	Fields []Slot

	State ConstructionState
}

func (o *Object) isHeapRef() {}

// NewObject allocates a zero-initialized instance with room for numFields
// value slots. Every entry starts as the appropriate type's default value
// (zero Kind corresponds to KindInt, so callers that need non-int defaults
// — e.g. all-reference fields — must fill them in, which is exactly what
// the class loader's field-layout step does during `new`).
func NewObject(classID types.ClassID, numFields int) *Object {
	return &Object{
		ClassID: classID,
		Fields:  make([]Slot, numFields),
		State:   Allocated,
	}
}

// GetField returns the slot at index, or the zero Slot and false if index is
// out of range.
func (o *Object) GetField(index int) (Slot, bool) {
	if index < 0 || index >= len(o.Fields) {
		return Slot{}, false
	}
	return o.Fields[index], true
}

// SetField stores v at index, reporting false (and doing nothing) if index
// is out of range.
func (o *Object) SetField(index int, v Slot) bool {
	if index < 0 || index >= len(o.Fields) {
		return false
	}
	o.Fields[index] = v
	return true
}
