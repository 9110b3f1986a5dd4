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

// execMath implements the arithmetic/logic family (spec §4.5 "Arithmetic").
// Grounded on original_source/vm/src/opcode/math.rs's xadd!/xsub!/.../xxor!
// macros, with three deliberate departures from that source:
//   - idiv/ldiv/irem/lrem trap on a zero divisor (the macros there have no
//     check at all); fdiv/ddiv/frem/drem never trap, IEEE-754 already gives
//     the right +-Inf/NaN.
//   - ishl/ishr/iushr/lshl/lshr/lushr push value SHIFTED BY the shift amount
//     (value1 << (value2 & mask)); the original's xshl!/xshr! swap the two
//     popped operands, shifting the shift-amount by the value instead.
//   - fneg/dneg just negate (Go's unary minus on a float already flips the
//     sign bit per IEEE-754: 0 <-> -0, +Inf <-> -Inf), instead of the
//     original's explicit case-by-case sign table.
func execMath(c *execCtx) (Result, error) {
	switch c.opcode {
	case IADD, ISUB, IMUL, IDIV, IREM, IAND, IOR, IXOR, ISHL, ISHR, IUSHR:
		b, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindInt || b.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "expected two int operands")
		}
		v, err := intBinOp(c, c.opcode, a.I32, b.I32)
		if err != nil {
			return Result{}, err
		}
		c.f.Push(object.IntSlot(v))

	case LADD, LSUB, LMUL, LDIV, LREM, LAND, LOR, LXOR, LSHL, LSHR, LUSHR:
		shiftFamily := c.opcode == LSHL || c.opcode == LSHR || c.opcode == LUSHR
		b, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindLong || (shiftFamily && b.Kind != object.KindInt) || (!shiftFamily && b.Kind != object.KindLong) {
			return Result{}, execErr(TypeMismatch, c, "expected long operands")
		}
		var shiftAmt int32
		if shiftFamily {
			shiftAmt = b.I32
		}
		v, err := longBinOp(c, c.opcode, a.I64, b.I64, shiftAmt)
		if err != nil {
			return Result{}, err
		}
		c.f.Push(object.LongSlot(v))

	case FADD, FSUB, FMUL, FDIV, FREM:
		b, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindFloat || b.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "expected two float operands")
		}
		c.f.Push(object.FloatSlot(floatBinOp(c.opcode, a.F32, b.F32)))

	case DADD, DSUB, DMUL, DDIV, DREM:
		b, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindDouble || b.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "expected two double operands")
		}
		c.f.Push(object.DoubleSlot(doubleBinOp(c.opcode, a.F64, b.F64)))

	case INEG:
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "expected int operand")
		}
		c.f.Push(object.IntSlot(-a.I32))

	case LNEG:
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindLong {
			return Result{}, execErr(TypeMismatch, c, "expected long operand")
		}
		c.f.Push(object.LongSlot(-a.I64))

	case FNEG:
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "expected float operand")
		}
		c.f.Push(object.FloatSlot(-a.F32))

	case DNEG:
		a, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if a.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "expected double operand")
		}
		c.f.Push(object.DoubleSlot(-a.F64))
	}
	return c.next(1)
}

func intBinOp(c *execCtx, opcode byte, a, b int32) (int32, error) {
	switch opcode {
	case IADD:
		return a + b, nil
	case ISUB:
		return a - b, nil
	case IMUL:
		return a * b, nil
	case IDIV:
		if b == 0 {
			return 0, execErr(DivideByZero, c, "idiv by zero")
		}
		return a / b, nil
	case IREM:
		if b == 0 {
			return 0, execErr(DivideByZero, c, "irem by zero")
		}
		return a % b, nil
	case IAND:
		return a & b, nil
	case IOR:
		return a | b, nil
	case IXOR:
		return a ^ b, nil
	case ISHL:
		return a << (uint32(b) & 0x1f), nil
	case ISHR:
		return a >> (uint32(b) & 0x1f), nil
	case IUSHR:
		return int32(uint32(a) >> (uint32(b) & 0x1f)), nil
	}
	return 0, execErr(InvalidState, c, "unreachable int op")
}

func longBinOp(c *execCtx, opcode byte, a, b int64, shiftAmt int32) (int64, error) {
	switch opcode {
	case LADD:
		return a + b, nil
	case LSUB:
		return a - b, nil
	case LMUL:
		return a * b, nil
	case LDIV:
		if b == 0 {
			return 0, execErr(DivideByZero, c, "ldiv by zero")
		}
		return a / b, nil
	case LREM:
		if b == 0 {
			return 0, execErr(DivideByZero, c, "lrem by zero")
		}
		return a % b, nil
	case LAND:
		return a & b, nil
	case LOR:
		return a | b, nil
	case LXOR:
		return a ^ b, nil
	case LSHL:
		return a << (uint32(shiftAmt) & 0x3f), nil
	case LSHR:
		return a >> (uint32(shiftAmt) & 0x3f), nil
	case LUSHR:
		return int64(uint64(a) >> (uint32(shiftAmt) & 0x3f)), nil
	}
	return 0, execErr(InvalidState, c, "unreachable long op")
}

func floatBinOp(opcode byte, a, b float32) float32 {
	switch opcode {
	case FADD:
		return a + b
	case FSUB:
		return a - b
	case FMUL:
		return a * b
	case FDIV:
		return a / b
	default: // FREM
		return float32(math.Mod(float64(a), float64(b)))
	}
}

func doubleBinOp(opcode byte, a, b float64) float64 {
	switch opcode {
	case DADD:
		return a + b
	case DSUB:
		return a - b
	case DMUL:
		return a * b
	case DDIV:
		return a / b
	default: // DREM
		return math.Mod(a, b)
	}
}
