/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "jacobin/object"

// execWide implements the WIDE prefix (JVMS 4.10.2.2 / the "0xc4" case
// mod.rs leaves as a TODO): the next byte names the instruction actually
// being widened, and its index operand (and, for iinc, its constant) is
// read as 2 bytes instead of 1. load/store opcodes don't care about their
// declared numeric type beyond what's already tagged on the Slot, so one
// generic load/store path covers all ten of them; iinc and ret each need
// their own handling.
func execWide(c *execCtx) (Result, error) {
	real, ok := c.u1(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated wide prefix")
	}

	if real == IINC {
		idx, ok1 := c.u2(2)
		delta, ok2 := c.s2(4)
		if !ok1 || !ok2 {
			return Result{}, execErr(InvalidState, c, "truncated wide iinc operands")
		}
		if err := iincLocal(c, int(idx), int32(delta)); err != nil {
			return Result{}, err
		}
		return c.next(6)
	}

	if real == RET {
		idx, ok := c.u2(2)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated wide ret index")
		}
		return retToLocal(c, int(idx))
	}

	idx, ok := c.u2(2)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated wide load/store index")
	}

	switch real {
	case ILOAD, LLOAD, FLOAD, DLOAD, ALOAD:
		v, ok := c.f.GetLocal(int(idx))
		if !ok {
			return Result{}, execErr(LocalIndexOutOfRange, c, "")
		}
		c.f.Push(v)
		return c.next(4)
	case ISTORE, LSTORE, FSTORE, DSTORE, ASTORE:
		v, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if !c.f.SetLocal(int(idx), v) {
			return Result{}, execErr(LocalIndexOutOfRange, c, "")
		}
		if v.IsWide() {
			c.f.SetLocal(int(idx)+1, object.Tombstone())
		}
		return c.next(4)
	}
	return Result{}, execErr(UnimplementedOpcode, c, "wide prefix on an unsupported opcode")
}
