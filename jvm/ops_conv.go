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

// execConvert implements the fifteen widening/narrowing numeric conversions
// (spec §4.5 "Conversion"). Grounded on
// original_source/runner/src/opcode/conversion.rs's x2y!/i2truncate! macros,
// except for the float/double -> int/long directions: Rust's `as` cast has
// saturated float-to-int semantics built in (NaN -> 0, out-of-range clamps
// to the target's min/max) since Rust 1.45, but Go's float-to-integer
// conversion is undefined for out-of-range values, so those six conversions
// are spelled out explicitly below rather than using a bare type conversion.
func execConvert(c *execCtx) (Result, error) {
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}

	switch c.opcode {
	case I2L:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2l expects int")
		}
		c.f.Push(object.LongSlot(int64(v.I32)))
	case I2F:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2f expects int")
		}
		c.f.Push(object.FloatSlot(float32(v.I32)))
	case I2D:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2d expects int")
		}
		c.f.Push(object.DoubleSlot(float64(v.I32)))

	case L2I:
		if v.Kind != object.KindLong {
			return Result{}, execErr(TypeMismatch, c, "l2i expects long")
		}
		c.f.Push(object.IntSlot(int32(v.I64)))
	case L2F:
		if v.Kind != object.KindLong {
			return Result{}, execErr(TypeMismatch, c, "l2f expects long")
		}
		c.f.Push(object.FloatSlot(float32(v.I64)))
	case L2D:
		if v.Kind != object.KindLong {
			return Result{}, execErr(TypeMismatch, c, "l2d expects long")
		}
		c.f.Push(object.DoubleSlot(float64(v.I64)))

	case F2I:
		if v.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "f2i expects float")
		}
		c.f.Push(object.IntSlot(saturateToInt32(float64(v.F32))))
	case F2L:
		if v.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "f2l expects float")
		}
		c.f.Push(object.LongSlot(saturateToInt64(float64(v.F32))))
	case F2D:
		if v.Kind != object.KindFloat {
			return Result{}, execErr(TypeMismatch, c, "f2d expects float")
		}
		c.f.Push(object.DoubleSlot(float64(v.F32)))

	case D2I:
		if v.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "d2i expects double")
		}
		c.f.Push(object.IntSlot(saturateToInt32(v.F64)))
	case D2L:
		if v.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "d2l expects double")
		}
		c.f.Push(object.LongSlot(saturateToInt64(v.F64)))
	case D2F:
		if v.Kind != object.KindDouble {
			return Result{}, execErr(TypeMismatch, c, "d2f expects double")
		}
		c.f.Push(object.FloatSlot(float32(v.F64)))

	case I2B:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2b expects int")
		}
		c.f.Push(object.IntSlot(int32(int8(v.I32))))
	case I2C:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2c expects int")
		}
		c.f.Push(object.IntSlot(int32(uint16(v.I32))))
	case I2S:
		if v.Kind != object.KindInt {
			return Result{}, execErr(TypeMismatch, c, "i2s expects int")
		}
		c.f.Push(object.IntSlot(int32(int16(v.I32))))
	}
	return c.next(1)
}

// saturateToInt32 implements JLS 5.1.3's float/double-to-int narrowing:
// NaN becomes 0, values at or below Int32 min/at or above max clamp to
// those bounds, everything else truncates toward zero.
func saturateToInt32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// saturateToInt64 is saturateToInt32's Int64 counterpart.
func saturateToInt64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}
