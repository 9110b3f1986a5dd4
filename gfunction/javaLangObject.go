/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"jacobin/frame"
	"jacobin/object"
)

// loadLangObject registers java/lang/Object's natives. Every Java class's
// constructor chain bottoms out at Object.<init>, which does nothing beyond
// what `new` already did during allocation (spec §4.5 `new`/invokespecial).
func (r *Registry) loadLangObject() {
	r.register("java/lang/Object.<init>()V", 1, justReturn)
	r.register("java/lang/Object.registerNatives()V", 0, justReturn)
	r.register("java/lang/Object.hashCode()I", 1, objectHashCode)
	r.register("java/lang/Object.getClass()Ljava/lang/Class;", 1, objectGetClass)
}

// objectHashCode returns a stable-for-this-process identity hash derived
// from the receiver's pointer value, the same source of identity
// object.Array's own isHeapRef comparisons use implicitly via Go pointer
// equality.
func objectHashCode(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	recv := args[0]
	if recv.IsNull() {
		return object.IntSlot(0), nil
	}
	if o, ok := recv.Ref.(*object.Object); ok {
		return object.IntSlot(int32(uintptr(objectAddr(o)))), nil
	}
	return object.IntSlot(0), nil
}

// getClass is not yet backed by a live java/lang/Class model (spec §9 open
// question); it returns null rather than fabricating a fake reference so
// callers can tell the difference.
func objectGetClass(_ *frame.Thread, _ []object.Slot) (object.Slot, error) {
	return object.NullSlot(), nil
}
