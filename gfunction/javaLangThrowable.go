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

// loadLangThrowable registers the minimum of java/lang/Throwable's natives
// needed for `athrow` to have something to throw (spec §9: exception-table
// walking and real stack-trace capture are an extension point; these
// natives only satisfy the constructor chain so a throwable object is at
// least constructible).
func (r *Registry) loadLangThrowable() {
	r.register("java/lang/Throwable.<init>()V", 1, justReturn)
	r.register("java/lang/Throwable.<init>(Ljava/lang/String;)V", 2, justReturn)
	r.register("java/lang/Throwable.fillInStackTrace()Ljava/lang/Throwable;", 1, throwableFillInStackTrace)
}

func throwableFillInStackTrace(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	return args[0], nil
}
