/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "jacobin/object"

// execIinc implements `iinc index, const`: add a sign-extended byte constant
// directly into a local int, without ever touching the operand stack.
// Grounded on original_source/vm/src/opcode/math.rs's iinc (the WIDE-prefixed
// form is handled separately by execWide, which reads both operands as 16-bit
// values and calls iincLocal directly).
func execIinc(c *execCtx) (Result, error) {
	idxB, ok1 := c.u1(1)
	constB, ok2 := c.s1(2)
	if !ok1 || !ok2 {
		return Result{}, execErr(InvalidState, c, "truncated iinc operands")
	}
	if err := iincLocal(c, int(idxB), int32(constB)); err != nil {
		return Result{}, err
	}
	return c.next(3)
}

func iincLocal(c *execCtx, index int, delta int32) error {
	v, ok := c.f.GetLocal(index)
	if !ok {
		return execErr(LocalIndexOutOfRange, c, "")
	}
	if v.Kind != object.KindInt {
		return execErr(TypeMismatch, c, "iinc target is not an int local")
	}
	v.I32 += delta
	c.f.SetLocal(index, v)
	return nil
}
