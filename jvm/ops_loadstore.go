/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import "jacobin/object"

func execLoad(c *execCtx) (Result, error) {
	var idx int
	width := 1
	switch c.opcode {
	case ILOAD, LLOAD, FLOAD, DLOAD, ALOAD:
		b, got := c.u1(1)
		if !got {
			return Result{}, execErr(InvalidState, c, "truncated load index operand")
		}
		idx, width = int(b), 2
	case ILOAD_0, LLOAD_0, FLOAD_0, DLOAD_0, ALOAD_0:
		idx = 0
	case ILOAD_1, LLOAD_1, FLOAD_1, DLOAD_1, ALOAD_1:
		idx = 1
	case ILOAD_2, LLOAD_2, FLOAD_2, DLOAD_2, ALOAD_2:
		idx = 2
	case ILOAD_3, LLOAD_3, FLOAD_3, DLOAD_3, ALOAD_3:
		idx = 3
	}
	v, ok := c.f.GetLocal(idx)
	if !ok {
		return Result{}, execErr(LocalIndexOutOfRange, c, "")
	}
	c.f.Push(v)
	return c.next(width)
}

func execStore(c *execCtx) (Result, error) {
	var idx int
	width := 1
	switch c.opcode {
	case ISTORE, LSTORE, FSTORE, DSTORE, ASTORE:
		b, got := c.u1(1)
		if !got {
			return Result{}, execErr(InvalidState, c, "truncated store index operand")
		}
		idx, width = int(b), 2
	case ISTORE_0, LSTORE_0, FSTORE_0, DSTORE_0, ASTORE_0:
		idx = 0
	case ISTORE_1, LSTORE_1, FSTORE_1, DSTORE_1, ASTORE_1:
		idx = 1
	case ISTORE_2, LSTORE_2, FSTORE_2, DSTORE_2, ASTORE_2:
		idx = 2
	case ISTORE_3, LSTORE_3, FSTORE_3, DSTORE_3, ASTORE_3:
		idx = 3
	}
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if !c.f.SetLocal(idx, v) {
		return Result{}, execErr(LocalIndexOutOfRange, c, "")
	}
	if v.IsWide() {
		c.f.SetLocal(idx+1, object.Tombstone())
	}
	return c.next(width)
}

// execArrayLoad implements the `*aload` family: pop index then arrayref,
// bounds- and null-check, push the element.
func execArrayLoad(c *execCtx) (Result, error) {
	index, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	arrRef, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if arrRef.IsNull() {
		return Result{}, execErr(NullDereference, c, "array load on a null reference")
	}
	arr, ok := arrRef.Ref.(*object.Array)
	if !ok {
		return Result{}, execErr(TypeMismatch, c, "expected an array reference")
	}
	v, err := arr.GetSlot(int(index.I32))
	if err != nil {
		return Result{}, execErrCause(ArrayIndexOutOfBounds, c, "", err)
	}
	c.f.Push(v)
	return c.next(1)
}

// execArrayStore implements the `*astore` family: pop value, index, arrayref.
func execArrayStore(c *execCtx) (Result, error) {
	value, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	index, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	arrRef, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if arrRef.IsNull() {
		return Result{}, execErr(NullDereference, c, "array store on a null reference")
	}
	arr, ok := arrRef.Ref.(*object.Array)
	if !ok {
		return Result{}, execErr(TypeMismatch, c, "expected an array reference")
	}
	if err := arr.SetSlot(int(index.I32), value); err != nil {
		return Result{}, execErrCause(ArrayIndexOutOfBounds, c, "", err)
	}
	return c.next(1)
}
