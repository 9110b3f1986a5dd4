/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"math"

	"jacobin/object"
)

// execCompare implements lcmp/fcmpl/fcmpg/dcmpl/dcmpg, each pushing a
// three-valued -1/0/1 int. Grounded on
// original_source/vm/src/opcode/comparison.rs, with one correction: that
// source detects NaN by comparing a value against a NaN literal
// (`value1 == f32::NAN`), which is always false in both Rust and Go since
// NaN compares unequal to everything including itself -- so its fcmpl/dcmpl
// never actually take the "-1 on NaN" branch they document. This uses
// math.IsNaN instead, per the NaN-detection requirement.
func execCompare(c *execCtx) (Result, error) {
	b, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	a, err := c.pop()
	if err != nil {
		return Result{}, err
	}

	var result int32
	switch c.opcode {
	case LCMP:
		if a.Kind != object.KindLong || b.Kind != object.KindLong {
			return Result{}, execErr(TypeMismatch, c, "lcmp expects two longs")
		}
		result = threeWay(a.I64 > b.I64, a.I64 == b.I64)

	case FCMPL, FCMPG:
		if a.Kind != object.KindFloat || b.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "fcmp expects two floats")
		}
		if math.IsNaN(float64(a.F32)) || math.IsNaN(float64(b.F32)) {
			if c.opcode == FCMPL {
				result = -1
			} else {
				result = 1
			}
		} else {
			result = threeWay(a.F32 > b.F32, a.F32 == b.F32)
		}

	case DCMPL, DCMPG:
		if a.Kind != object.KindDouble || b.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "dcmp expects two doubles")
		}
		if math.IsNaN(a.F64) || math.IsNaN(b.F64) {
			if c.opcode == DCMPL {
				result = -1
			} else {
				result = 1
			}
		} else {
			result = threeWay(a.F64 > b.F64, a.F64 == b.F64)
		}
	}

	c.f.Push(object.IntSlot(result))
	return c.next(1)
}

func threeWay(greater, equal bool) int32 {
	if greater {
		return 1
	}
	if equal {
		return 0
	}
	return -1
}

// execIfx implements the single-operand `if<cond>` family: pop an int,
// compare it against zero, branch on success.
func execIfx(c *execCtx) (Result, error) {
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if v.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "if<cond> expects an int")
	}
	take, err := intCondTrue(c, c.opcode, v.I32, 0)
	if err != nil {
		return Result{}, err
	}
	return branchOrFallthrough(c, take)
}

// execIfICmp implements the two-operand `if_icmp<cond>` family.
func execIfICmp(c *execCtx) (Result, error) {
	b, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	a, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if a.Kind != object.KindInt || b.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "if_icmp<cond> expects two ints")
	}
	take, err := intCondTrue(c, c.opcode, a.I32, b.I32)
	if err != nil {
		return Result{}, err
	}
	return branchOrFallthrough(c, take)
}

// execIfACmp implements if_acmpeq/if_acmpne: reference identity comparison.
// Two null references are equal; an object/array reference is compared by
// the identity of the underlying heap pointer, matching
// comparison.rs's if_acmpx! std::ptr::eq check.
func execIfACmp(c *execCtx) (Result, error) {
	b, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	a, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	eq := refsEqual(a, b)
	take := eq
	if c.opcode == IF_ACMPNE {
		take = !eq
	}
	return branchOrFallthrough(c, take)
}

// execIfNull implements ifnull/ifnonnull.
func execIfNull(c *execCtx) (Result, error) {
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	isNull := v.IsNull()
	take := isNull
	if c.opcode == IFNONNULL {
		take = !isNull
	}
	return branchOrFallthrough(c, take)
}

func refsEqual(a, b object.Slot) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.IsNull() != b.IsNull() {
		return false
	}
	return a.Ref == b.Ref
}

func intCondTrue(c *execCtx, opcode byte, a, b int32) (bool, error) {
	switch opcode {
	case IFEQ, IF_ICMPEQ:
		return a == b, nil
	case IFNE, IF_ICMPNE:
		return a != b, nil
	case IFLT, IF_ICMPLT:
		return a < b, nil
	case IFGE, IF_ICMPGE:
		return a >= b, nil
	case IFGT, IF_ICMPGT:
		return a > b, nil
	case IFLE, IF_ICMPLE:
		return a <= b, nil
	}
	return false, execErr(InvalidState, c, "unreachable comparison opcode")
}

func branchOrFallthrough(c *execCtx, take bool) (Result, error) {
	if !take {
		return c.next(3)
	}
	off, ok := c.s2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated branch offset")
	}
	return Result{Kind: RelativeJump, N: int(off)}, nil
}
