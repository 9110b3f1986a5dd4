/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"time"

	"jacobin/frame"
	"jacobin/object"
	"jacobin/shutdown"
)

// loadLangSystem registers java/lang/System's natives used by the core's
// end-to-end scenarios: process exit and the two clocks.
func (r *Registry) loadLangSystem() {
	r.register("java/lang/System.registerNatives()V", 0, justReturn)
	r.register("java/lang/System.exit(I)V", 1, systemExit)
	r.register("java/lang/System.currentTimeMillis()J", 0, systemCurrentTimeMillis)
	r.register("java/lang/System.nanoTime()J", 0, systemNanoTime)
	r.register("java/lang/System.arraycopy(Ljava/lang/Object;ILjava/lang/Object;II)V", 5, systemArraycopy)
}

// systemExit maps straight onto the shared shutdown package so the
// interpreter, the class manager, and the CLI entry point all agree on exit
// codes (spec §6).
func systemExit(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	code := args[0].I32
	status := shutdown.OK
	if code != 0 {
		status = shutdown.APP_EXCEPTION
	}
	shutdown.Exit(status)
	return object.Slot{}, nil
}

func systemCurrentTimeMillis(_ *frame.Thread, _ []object.Slot) (object.Slot, error) {
	return object.LongSlot(time.Now().UnixMilli()), nil
}

func systemNanoTime(_ *frame.Thread, _ []object.Slot) (object.Slot, error) {
	return object.LongSlot(time.Now().UnixNano()), nil
}

// systemArraycopy copies length elements starting at srcPos in src to
// destPos in dst. Both arrays must share the exact same backing-slice kind;
// this core has no primitive-widening array copy (JVMS doesn't either).
func systemArraycopy(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	src, _ := args[0].Ref.(*object.Array)
	srcPos := args[1].I32
	dst, _ := args[2].Ref.(*object.Array)
	destPos := args[3].I32
	length := args[4].I32

	if src == nil || dst == nil {
		return object.Slot{}, errNullArraycopy
	}
	for i := int32(0); i < length; i++ {
		v, err := src.GetSlot(int(srcPos + i))
		if err != nil {
			return object.Slot{}, err
		}
		if err := dst.SetSlot(int(destPos+i), v); err != nil {
			return object.Slot{}, err
		}
	}
	return object.Slot{}, nil
}
