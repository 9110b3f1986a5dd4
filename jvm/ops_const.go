/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"jacobin/classloader"
	"jacobin/object"
)

// execConst handles the zero-operand "push a fixed constant" family
// (nop's siblings in original_source/vm/src/opcode/constant.rs).
func execConst(c *execCtx) (Result, error) {
	switch c.opcode {
	case ACONST_NULL:
		c.f.Push(object.NullSlot())
	case ICONST_M1:
		c.f.Push(object.IntSlot(-1))
	case ICONST_0:
		c.f.Push(object.IntSlot(0))
	case ICONST_1:
		c.f.Push(object.IntSlot(1))
	case ICONST_2:
		c.f.Push(object.IntSlot(2))
	case ICONST_3:
		c.f.Push(object.IntSlot(3))
	case ICONST_4:
		c.f.Push(object.IntSlot(4))
	case ICONST_5:
		c.f.Push(object.IntSlot(5))
	case LCONST_0:
		c.f.Push(object.LongSlot(0))
	case LCONST_1:
		c.f.Push(object.LongSlot(1))
	case FCONST_0:
		c.f.Push(object.FloatSlot(0))
	case FCONST_1:
		c.f.Push(object.FloatSlot(1))
	case FCONST_2:
		c.f.Push(object.FloatSlot(2))
	case DCONST_0:
		c.f.Push(object.DoubleSlot(0))
	case DCONST_1:
		c.f.Push(object.DoubleSlot(1))
	}
	return c.next(1)
}

// execPush handles bipush/sipush: push a sign-extended immediate int.
func execPush(c *execCtx) (Result, error) {
	switch c.opcode {
	case BIPUSH:
		v, ok := c.s1(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated bipush operand")
		}
		c.f.Push(object.IntSlot(int32(v)))
		return c.next(2)
	default: // SIPUSH
		v, ok := c.s2(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated sipush operand")
		}
		c.f.Push(object.IntSlot(int32(v)))
		return c.next(3)
	}
}

// execLdc loads a constant-pool entry onto the stack (int/float/String via
// ldc/ldc_w, long/double via ldc2_w). A CPString entry is left as its
// stringpool index boxed in an Int slot rather than eagerly materialized
// into a java/lang/String object, matching CPEntry.StringIdx's documented
// deferred-construction rationale.
func execLdc(c *execCtx) (Result, error) {
	var idx int
	var width int
	if c.opcode == LDC {
		b, ok := c.u1(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated ldc operand")
		}
		idx, width = int(b), 2
	} else {
		u, ok := c.u2(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated ldc_w/ldc2_w operand")
		}
		idx, width = int(u), 3
	}

	entry, ok := c.cls.ConstantPool.Get(idx)
	if !ok {
		return Result{}, execErr(ClassResolutionFailure, c, "ldc referenced an unresolved constant-pool entry")
	}
	switch entry.Kind {
	case classloader.CPInt:
		c.f.Push(object.IntSlot(entry.Int))
	case classloader.CPFloat:
		c.f.Push(object.FloatSlot(entry.Float))
	case classloader.CPLong:
		c.f.Push(object.LongSlot(entry.Long))
	case classloader.CPDouble:
		c.f.Push(object.DoubleSlot(entry.Double))
	case classloader.CPString:
		c.f.Push(object.IntSlot(int32(entry.StringIdx)))
	case classloader.CPClass, classloader.CPArrayClass:
		// Class literals (Foo.class) have no live java/lang/Class model yet
		// (spec §9); push null rather than fail the whole method.
		c.f.Push(object.NullSlot())
	default:
		return Result{}, execErr(TypeMismatch, c, "ldc target is not a loadable constant")
	}
	return c.next(width)
}
