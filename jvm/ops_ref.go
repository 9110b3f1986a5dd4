/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"fmt"

	"jacobin/classloader"
	"jacobin/descriptor"
	"jacobin/object"
)

// resolveFieldRef dereferences a CPFieldRef at idx, force-loading its owner
// to Done (spec §3: "getstatic/putstatic trigger class initialization of the
// owning class if not yet Done") before walking the superclass chain for the
// declaring Field record.
func resolveFieldRef(c *execCtx, idx int) (*classloader.Field, error) {
	entry, ok := c.cls.ConstantPool.Get(idx)
	if !ok || entry.Kind != classloader.CPFieldRef {
		return nil, execErr(ClassResolutionFailure, c, "constant-pool entry is not a field reference")
	}
	if err := c.vm.Manager.RequestLoad(entry.Owner); err != nil {
		return nil, execErrCause(ClassResolutionFailure, c, "", err)
	}
	_, f, err := c.vm.Manager.ResolveField(entry.Owner, entry.Name)
	if err != nil {
		return nil, execErrCause(ClassResolutionFailure, c, "field resolution failed", err)
	}
	return f, nil
}

// execGetStatic implements getstatic: force-init the owner, push its current
// static value.
func execGetStatic(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated getstatic index")
	}
	f, err := resolveFieldRef(c, int(idx))
	if err != nil {
		return Result{}, err
	}
	c.f.Push(f.CurrentValue)
	return c.next(3)
}

// execPutStatic implements putstatic. Writability of a final static outside
// <clinit> is a verifier-level concern the spec leaves to this core's
// bytecode-trust model (no verifier is specified), so it is not re-checked
// here.
func execPutStatic(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated putstatic index")
	}
	f, err := resolveFieldRef(c, int(idx))
	if err != nil {
		return Result{}, err
	}
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	f.CurrentValue = v
	return c.next(3)
}

// execGetField implements getfield: pop objectref, read the field at its
// flattened offset.
func execGetField(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated getfield index")
	}
	f, err := resolveFieldRef(c, int(idx))
	if err != nil {
		return Result{}, err
	}
	objRef, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	obj, err := asObject(c, objRef, "getfield")
	if err != nil {
		return Result{}, err
	}
	v, ok := obj.GetField(f.Index)
	if !ok {
		return Result{}, execErr(InvalidState, c, "field index out of range for this object")
	}
	c.f.Push(v)
	return c.next(3)
}

// execPutField implements putfield: pop value, objectref; store at the
// field's flattened offset.
func execPutField(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated putfield index")
	}
	f, err := resolveFieldRef(c, int(idx))
	if err != nil {
		return Result{}, err
	}
	v, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	objRef, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	obj, err := asObject(c, objRef, "putfield")
	if err != nil {
		return Result{}, err
	}
	if !obj.SetField(f.Index, v) {
		return Result{}, execErr(InvalidState, c, "field index out of range for this object")
	}
	return c.next(3)
}

func asObject(c *execCtx, s object.Slot, context string) (*object.Object, error) {
	if s.IsNull() {
		return nil, execErr(NullDereference, c, context+" on a null reference")
	}
	obj, ok := s.Ref.(*object.Object)
	if !ok {
		return nil, execErr(TypeMismatch, c, context+" expects an object reference")
	}
	return obj, nil
}

// execNew implements `new`: resolve the CPClass entry, force-init the
// target, allocate via Manager.NewInstance (spec §4.5: "allocate, fields at
// JVMS defaults, push the reference -- <init> is a separate, explicit
// invokespecial").
func execNew(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated new index")
	}
	entry, ok := c.cls.ConstantPool.Get(int(idx))
	if !ok || entry.Kind != classloader.CPClass {
		return Result{}, execErr(ClassResolutionFailure, c, "new target is not a class reference")
	}
	if err := c.vm.Manager.RequestLoad(entry.ClassID); err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "", err)
	}
	obj, err := c.vm.Manager.NewInstance(entry.ClassID)
	if err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "new failed to allocate", err)
	}
	c.f.Push(object.ObjectRefSlot(obj))
	return c.next(3)
}

// atypeToElemKind maps newarray's 1-byte primitive type code (JVMS Table
// 6.5.newarray-A: 4..11) to this core's ElemKind.
func atypeToElemKind(atype byte) (object.ElemKind, bool) {
	switch atype {
	case atBoolean:
		return object.ElemBoolean, true
	case atChar:
		return object.ElemChar, true
	case atFloat:
		return object.ElemFloat, true
	case atDouble:
		return object.ElemDouble, true
	case atByte:
		return object.ElemByte, true
	case atShort:
		return object.ElemShort, true
	case atInt:
		return object.ElemInt, true
	case atLong:
		return object.ElemLong, true
	}
	return 0, false
}

// execNewArray implements newarray: a single-dimension primitive array.
func execNewArray(c *execCtx) (Result, error) {
	atype, ok := c.u1(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated newarray atype")
	}
	kind, ok := atypeToElemKind(atype)
	if !ok {
		return Result{}, execErr(InvalidState, c, "unrecognized newarray atype")
	}
	n, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if n.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "newarray expects an int length")
	}
	if n.I32 < 0 {
		return Result{}, execErr(ArrayIndexOutOfBounds, c, "negative array size")
	}
	c.f.Push(object.ArrayRefSlot(object.NewPrimitiveArray(kind, int(n.I32))))
	return c.next(2)
}

// execANewArray implements anewarray: a single-dimension object-reference
// array whose element type is a resolved class/array constant-pool entry.
func execANewArray(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated anewarray index")
	}
	n, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if n.Kind != object.KindInt {
		return Result{}, execErr(TypeMismatch, c, "anewarray expects an int length")
	}
	if n.I32 < 0 {
		return Result{}, execErr(ArrayIndexOutOfBounds, c, "negative array size")
	}

	entry, ok := c.cls.ConstantPool.Get(int(idx))
	if !ok {
		return Result{}, execErr(ClassResolutionFailure, c, "anewarray target is unresolved")
	}
	switch entry.Kind {
	case classloader.CPClass:
		c.f.Push(object.ArrayRefSlot(object.NewObjectArray(entry.ClassID, int(n.I32))))
	case classloader.CPArrayClass:
		c.f.Push(object.ArrayRefSlot(object.NewArrayOfArrays(entry.ArrayType, int(n.I32))))
	default:
		return Result{}, execErr(ClassResolutionFailure, c, "anewarray target is not a class/array reference")
	}
	return c.next(3)
}

// execMultiANewArray implements multianewarray: allocate dimensions outer to
// inner, popping one int count per declared dimension. Only the outermost
// array is given a live backing slice per dimension level; sub-arrays are
// allocated recursively and installed into their parent's Refs.
func execMultiANewArray(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated multianewarray index")
	}
	dims, ok := c.u1(3)
	if !ok || dims == 0 {
		return Result{}, execErr(InvalidState, c, "truncated multianewarray dimension count")
	}

	entry, ok := c.cls.ConstantPool.Get(int(idx))
	if !ok || entry.Kind != classloader.CPArrayClass {
		return Result{}, execErr(ClassResolutionFailure, c, "multianewarray target is not an array reference")
	}

	counts := make([]int32, dims)
	for i := int(dims) - 1; i >= 0; i-- {
		n, err := c.pop()
		if err != nil {
			return Result{}, err
		}
		if n.Kind != object.KindInt || n.I32 < 0 {
			return Result{}, execErr(ArrayIndexOutOfBounds, c, "negative or non-int multianewarray dimension")
		}
		counts[i] = n.I32
	}

	arr, err := buildMultiArray(*entry.ArrayType.Elem, counts)
	if err != nil {
		return Result{}, execErrCause(InvalidState, c, "multianewarray", err)
	}
	c.f.Push(object.ArrayRefSlot(arr))
	return c.next(4)
}

// buildMultiArray recursively allocates one array level per remaining
// dimension count; elemType is the element type of the array being built at
// this level (so for a 3-deep `[[[I`, the top call's elemType is `[[I`).
func buildMultiArray(elemType descriptor.FieldType, counts []int32) (*object.Array, error) {
	n := int(counts[0])
	if len(counts) == 1 {
		return allocLeafArray(elemType, n)
	}
	arr := object.NewArrayOfArrays(&elemType, n)
	innerType := *elemType.Elem
	for i := 0; i < n; i++ {
		sub, err := buildMultiArray(innerType, counts[1:])
		if err != nil {
			return nil, err
		}
		arr.Refs[i] = sub
	}
	return arr, nil
}

func allocLeafArray(elemType descriptor.FieldType, n int) (*object.Array, error) {
	if elemType.Kind == descriptor.KindArray {
		return object.NewArrayOfArrays(&elemType, n), nil
	}
	if elemType.Kind == descriptor.KindObject {
		return object.NewObjectArray(0, n), nil
	}
	kind, ok := primitiveElemKind(elemType.Primitive)
	if !ok {
		return nil, fmt.Errorf("multianewarray: unrecognized primitive element type %q", elemType.Primitive)
	}
	return object.NewPrimitiveArray(kind, n), nil
}

func primitiveElemKind(p byte) (object.ElemKind, bool) {
	switch p {
	case 'Z':
		return object.ElemBoolean, true
	case 'B':
		return object.ElemByte, true
	case 'C':
		return object.ElemChar, true
	case 'S':
		return object.ElemShort, true
	case 'I':
		return object.ElemInt, true
	case 'J':
		return object.ElemLong, true
	case 'F':
		return object.ElemFloat, true
	case 'D':
		return object.ElemDouble, true
	}
	return 0, false
}

// execArrayLength implements arraylength, trapping on a null reference
// (spec §6 edge case 5).
func execArrayLength(c *execCtx) (Result, error) {
	ref, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if ref.IsNull() {
		return Result{}, execErr(NullDereference, c, "arraylength on a null reference")
	}
	arr, ok := ref.Ref.(*object.Array)
	if !ok {
		return Result{}, execErr(TypeMismatch, c, "arraylength expects an array reference")
	}
	c.f.Push(object.IntSlot(int32(arr.Length)))
	return c.next(1)
}

// execAthrow implements athrow. This core has no exception-table walk (spec
// §9 extension point), so a thrown reference simply faults the thread: the
// VM dispatch loop surfaces it to the caller of ExecuteMethod/RunMain as a
// Go error carrying the thrown object, rather than searching any handler.
func execAthrow(c *execCtx) (Result, error) {
	ref, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if ref.IsNull() {
		return Result{}, execErr(NullDereference, c, "athrow with a null reference")
	}
	return Result{}, &ThrownError{Value: ref}
}

// execCheckCast implements checkcast: verify, trap with ClassCastFailure on
// mismatch, leave the reference on the stack unchanged otherwise.
func execCheckCast(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated checkcast index")
	}
	ref := c.f.Peek()
	if ref.IsNull() {
		return c.next(3) // null is assignable to every reference type
	}
	target, ok := c.cls.ConstantPool.Get(int(idx))
	if !ok || target.Kind != classloader.CPClass {
		return Result{}, execErr(ClassResolutionFailure, c, "checkcast target is not a class reference")
	}
	obj, ok := ref.Ref.(*object.Object)
	if !ok {
		return c.next(3) // array/other reference kinds: no class hierarchy to check here
	}
	if !c.vm.Manager.IsAssignable(obj.ClassID, target.ClassID) {
		return Result{}, execErr(ClassCastFailure, c, "")
	}
	return c.next(3)
}

// execInstanceOf implements instanceof: pop a reference, push 1/0.
func execInstanceOf(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated instanceof index")
	}
	ref, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if ref.IsNull() {
		c.f.Push(object.IntSlot(0))
		return c.next(3)
	}
	target, ok := c.cls.ConstantPool.Get(int(idx))
	if !ok || target.Kind != classloader.CPClass {
		return Result{}, execErr(ClassResolutionFailure, c, "instanceof target is not a class reference")
	}
	obj, ok := ref.Ref.(*object.Object)
	if !ok {
		c.f.Push(object.IntSlot(0))
		return c.next(3)
	}
	if c.vm.Manager.IsAssignable(obj.ClassID, target.ClassID) {
		c.f.Push(object.IntSlot(1))
	} else {
		c.f.Push(object.IntSlot(0))
	}
	return c.next(3)
}

// execMonitor implements monitorenter/monitorexit. This core is
// single-threaded at the interpreter level (spec §5), so both are a
// null-check-and-discard: there is no other thread that could contend for
// the lock.
func execMonitor(c *execCtx) (Result, error) {
	ref, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	if ref.IsNull() {
		return Result{}, execErr(NullDereference, c, "monitor op on a null reference")
	}
	return c.next(1)
}
