/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"unsafe"

	"jacobin/object"
)

// objectAddr returns o's address as a uintptr, the same technique
// artipop-jacobin's instantiateClass uses to seed an object's identity hash
// from `unsafe.Pointer(&obj)`.
func objectAddr(o *object.Object) uintptr {
	return uintptr(unsafe.Pointer(o))
}
