/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "jacobin/object"

// execGoto implements the unconditional short branch.
func execGoto(c *execCtx) (Result, error) {
	off, ok := c.s2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated goto offset")
	}
	return Result{Kind: RelativeJump, N: int(off)}, nil
}

// execGotoW is goto's 4-byte-offset form.
func execGotoW(c *execCtx) (Result, error) {
	off, ok := c.s4(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated goto_w offset")
	}
	return Result{Kind: RelativeJump, N: int(off)}, nil
}

// execJsr implements jsr/jsr_w: push a ReturnAddress for the instruction
// immediately following this one, then branch. Grounded on
// original_source/runner/src/opcode/control.rs's jsr/jsr_w (the retained
// subroutine form some pre-J2SE-5 class files still compile to; the
// interpreter never emits one itself).
func execJsr(c *execCtx) (Result, error) {
	width := 3
	var off int32
	if c.opcode == JSR_W {
		width = 5
		v, ok := c.s4(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated jsr_w offset")
		}
		off = v
	} else {
		v, ok := c.s2(1)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated jsr offset")
		}
		off = int32(v)
	}
	c.f.Push(object.ReturnAddressSlot(uint32(c.f.PC + width)))
	return Result{Kind: RelativeJump, N: int(off)}, nil
}

// execRet implements ret: jump to the address stashed in a local by a prior
// jsr.
func execRet(c *execCtx) (Result, error) {
	idxB, ok := c.u1(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated ret index")
	}
	return retToLocal(c, int(idxB))
}

func retToLocal(c *execCtx, index int) (Result, error) {
	v, ok := c.f.GetLocal(index)
	if !ok {
		return Result{}, execErr(LocalIndexOutOfRange, c, "")
	}
	if v.Kind != object.KindReturnAddress {
		return Result{}, execErr(TypeMismatch, c, "ret target local is not a return address")
	}
	return Result{Kind: AbsoluteJump, N: int(v.ResumePC())}, nil
}

// switchDataStart returns the offset, relative to the opcode byte, of the
// first byte after tableswitch/lookupswitch's 0-3 bytes of alignment
// padding: the data always starts on a 4-byte boundary measured from the
// start of the method's code array (JVMS 4.10.2.2).
func switchDataStart(c *execCtx) int {
	pos := c.f.PC + 1
	pad := (4 - pos%4) % 4
	return 1 + pad
}

// execTableSwitch implements tableswitch: an int-indexed contiguous jump
// table with a default for anything outside [low, high].
func execTableSwitch(c *execCtx) (Result, error) {
	index, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if index.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "tableswitch expects an int index")
	}

	base := switchDataStart(c)
	def, ok1 := c.s4(base)
	low, ok2 := c.s4(base + 4)
	high, ok3 := c.s4(base + 8)
	if !ok1 || !ok2 || !ok3 || low > high {
		return Result{}, execErr(InvalidState, c, "truncated or malformed tableswitch")
	}

	if index.I32 < low || index.I32 > high {
		return Result{Kind: RelativeJump, N: int(def)}, nil
	}
	entryOff := base + 12 + 4*int(index.I32-low)
	target, ok := c.s4(entryOff)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated tableswitch jump table")
	}
	return Result{Kind: RelativeJump, N: int(target)}, nil
}

// execLookupSwitch implements lookupswitch: a sorted (key, offset) table
// searched for an exact match, falling back to a default.
func execLookupSwitch(c *execCtx) (Result, error) {
	key, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if key.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "lookupswitch expects an int key")
	}

	base := switchDataStart(c)
	def, ok1 := c.s4(base)
	npairs, ok2 := c.s4(base + 4)
	if !ok1 || !ok2 || npairs < 0 {
		return Result{}, execErr(InvalidState, c, "truncated or malformed lookupswitch")
	}

	pairsStart := base + 8
	lo, hi := 0, int(npairs)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		k, ok := c.s4(pairsStart + 8*mid)
		if !ok {
			return Result{}, execErr(InvalidState, c, "truncated lookupswitch table")
		}
		switch {
		case key.I32 == k:
			off, ok := c.s4(pairsStart + 8*mid + 4)
			if !ok {
				return Result{}, execErr(InvalidState, c, "truncated lookupswitch table")
			}
			return Result{Kind: RelativeJump, N: int(off)}, nil
		case k < key.I32:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return Result{Kind: RelativeJump, N: int(def)}, nil
}
