/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "jacobin/object"

// execReturn implements *return (spec §4.5 invocation protocol): pop the
// returning frame, and if a caller remains, pop the InvocationReturn marker
// that execInvoke* stashed on its operand stack before the call, push the
// result (if any) above it, and resume there. With no caller left, the
// thread is done. Grounded on
// original_source/runner/src/opcode/control.rs's vreturn/xreturn! macro,
// generalized from its four typed variants (Int/Long/Float/Double, with
// areturn left as a TODO there) to all five value-returning forms plus void.
func execReturn(c *execCtx) (Result, error) {
	var result object.Slot
	hasResult := c.opcode != RETURN
	if hasResult {
		v, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		result = v
	}

	c.th.PopFrame()
	caller := c.th.CurrentFrame()
	if caller == nil {
		return Result{Kind: Completed}, nil
	}

	n := len(caller.OperandStack)
	if n == 0 || caller.OperandStack[n-1].Kind != object.KindInvocationReturn {
		return Result{}, execErr(InvalidState, c, "caller frame missing its invocation-return marker")
	}
	marker := caller.Pop()
	if hasResult {
		caller.Push(result)
	}
	return Result{Kind: FrameChanged, N: int(marker.ResumePC())}, nil
}
