/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

// execStackOp implements pop/pop2/dup*/swap (spec §4.5 "Stack manipulation").
// Unlike original_source/vm/src/opcode/stack.rs, which counts a long/double
// as two words on the stack, this core's Frame already collapses a wide
// value to one operand-stack entry (frame.Frame's own documented
// invariant), so every "one or two categories" rule below reduces to
// counting entries rather than words, with IsWide() standing in for "is
// this entry category 2".
func execStackOp(c *execCtx) (Result, error) {
	s := c.f.OperandStack
	n := len(s)

	switch c.opcode {
	case POP:
		if n < 1 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		c.f.OperandStack = s[:n-1]

	case POP2:
		if n < 1 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		if s[n-1].IsWide() {
			c.f.OperandStack = s[:n-1]
		} else {
			if n < 2 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			c.f.OperandStack = s[:n-2]
		}

	case DUP:
		if n < 1 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		c.f.Push(s[n-1])

	case DUP_X1:
		if n < 2 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		v1, v2 := s[n-1], s[n-2]
		c.f.OperandStack = append(s[:n-2], v1, v2, v1)

	case DUP_X2:
		if n < 2 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		v1 := s[n-1]
		if s[n-2].IsWide() {
			v2 := s[n-2]
			c.f.OperandStack = append(s[:n-2], v1, v2, v1)
		} else {
			if n < 3 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			v2, v3 := s[n-2], s[n-3]
			c.f.OperandStack = append(s[:n-3], v1, v3, v2, v1)
		}

	case DUP2:
		if n < 1 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		if s[n-1].IsWide() {
			c.f.Push(s[n-1])
		} else {
			if n < 2 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			v1, v2 := s[n-1], s[n-2]
			c.f.OperandStack = append(s, v2, v1)
		}

	case DUP2_X1:
		if n < 2 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		if s[n-1].IsWide() {
			v1, v2 := s[n-1], s[n-2]
			c.f.OperandStack = append(s[:n-2], v1, v2, v1)
		} else {
			if n < 3 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			v1, v2, v3 := s[n-1], s[n-2], s[n-3]
			c.f.OperandStack = append(s[:n-3], v2, v1, v3, v2, v1)
		}

	case DUP2_X2:
		if n < 2 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		topWide := s[n-1].IsWide()
		if topWide && n >= 2 && s[n-2].IsWide() {
			// Form 4: cat2 / cat2.
			v1, v2 := s[n-1], s[n-2]
			c.f.OperandStack = append(s[:n-2], v1, v2, v1)
		} else if topWide {
			// Form 2: cat2 / cat1,cat1.
			if n < 3 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			v1, v2, v3 := s[n-1], s[n-2], s[n-3]
			c.f.OperandStack = append(s[:n-3], v1, v3, v2, v1)
		} else if n >= 3 && s[n-3].IsWide() {
			// Form 3: cat1,cat1 / cat2.
			v1, v2, v3 := s[n-1], s[n-2], s[n-3]
			c.f.OperandStack = append(s[:n-3], v2, v1, v3, v2, v1)
		} else {
			// Form 1: cat1,cat1 / cat1,cat1.
			if n < 4 {
				return Result{}, execErr(StackUnderflow, c, "")
			}
			v1, v2, v3, v4 := s[n-1], s[n-2], s[n-3], s[n-4]
			c.f.OperandStack = append(s[:n-4], v2, v1, v4, v3, v2, v1)
		}

	case SWAP:
		if n < 2 {
			return Result{}, execErr(StackUnderflow, c, "")
		}
		s[n-1], s[n-2] = s[n-2], s[n-1]
	}

	return c.next(1)
}
