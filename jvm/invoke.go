/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"jacobin/classloader"
	"jacobin/descriptor"
	"jacobin/object"
	"jacobin/types"
)

// popArgs pops len(desc.Params) values off the operand stack and returns
// them in left-to-right declaration order. The stack holds them with the
// last parameter on top, so a naive in-order pop would reverse them --
// this is the bug original_source/vm/src/opcode/reference.rs's invoke* has
// (it pops into a Vec and then assigns straight into locals starting at 0,
// which only happens to work for a single-parameter method).
func popArgs(c *execCtx, desc descriptor.MethodType) ([]object.Slot, error) {
	n := len(desc.Params)
	args := make([]object.Slot, n)
	for i := n - 1; i >= 0; i-- {
		v, err := c.pop()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// resolveMethodRefEntry dereferences a CPMethodRef/CPInterfaceMethodRef at
// idx and parses its descriptor string.
func resolveMethodRefEntry(c *execCtx, idx int, allowInterface bool) (classloader.CPEntry, descriptor.MethodType, error) {
	entry, ok := c.cls.ConstantPool.Get(idx)
	if !ok {
		return classloader.CPEntry{}, descriptor.MethodType{}, execErr(ClassResolutionFailure, c, "unresolved constant-pool entry")
	}
	if entry.Kind != classloader.CPMethodRef && (!allowInterface || entry.Kind != classloader.CPInterfaceMethodRef) {
		return classloader.CPEntry{}, descriptor.MethodType{}, execErr(ClassResolutionFailure, c, "entry is not a method reference")
	}
	desc, err := descriptor.ParseMethodDescriptor(entry.Descriptor)
	if err != nil {
		return classloader.CPEntry{}, descriptor.MethodType{}, execErrCause(ClassResolutionFailure, c, "malformed method descriptor", err)
	}
	return entry, desc, nil
}

// dispatchInvoke resolves classID/methodIndex's target and transfers
// control the way every invoke* opcode does (spec §4.5 invocation
// protocol): push an InvocationReturn marker holding the resume pc on the
// *current* frame's operand stack, then push the callee frame with args
// seeded into its locals (instructions doc'd on jvm.VM.pushFrame).
// fallthroughWidth is this invoke instruction's own byte length.
func dispatchInvoke(c *execCtx, classID types.ClassID, methodIndex int, args []object.Slot, fallthroughWidth int) (Result, error) {
	cls, ok := c.vm.Manager.Get(classID)
	if !ok {
		return Result{}, execErr(ClassResolutionFailure, c, "invoke target class not loaded")
	}
	meth := &cls.Methods[methodIndex]

	if meth.IsNative() || meth.Code == nil {
		result, err := c.vm.callNative(c.th, cls, meth, args)
		if err != nil {
			return Result{}, err
		}
		if meth.Descriptor.Return != nil {
			c.f.Push(result)
		}
		return c.next(fallthroughWidth)
	}

	c.f.Push(object.InvocationReturnSlot(uint32(c.f.PC + fallthroughWidth)))
	c.vm.pushFrame(c.th, classID, methodIndex, args)
	return Result{Kind: FrameChanged, N: 0}, nil
}

// execInvokeStatic implements invokestatic: no receiver, args only.
func execInvokeStatic(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated invokestatic index")
	}
	entry, desc, err := resolveMethodRefEntry(c, int(idx), false)
	if err != nil {
		return Result{}, err
	}
	if err := c.vm.Manager.RequestLoad(entry.Owner); err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "", err)
	}
	args, err := popArgs(c, desc)
	if err != nil {
		return Result{}, err
	}
	targetClass, methodIndex, err := c.vm.Manager.ResolveMethod(c.cls.ID, entry.Owner, entry.Name, desc, false)
	if err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "invokestatic method resolution failed", err)
	}
	return dispatchInvoke(c, targetClass, methodIndex, args, 3)
}

// execInvokeSpecial implements invokespecial: statically-bound dispatch
// against the constant-pool-named owner (constructors, private methods,
// and `super.foo()`), receiver popped below the arguments.
func execInvokeSpecial(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated invokespecial index")
	}
	entry, desc, err := resolveMethodRefEntry(c, int(idx), false)
	if err != nil {
		return Result{}, err
	}
	if err := c.vm.Manager.RequestLoad(entry.Owner); err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "", err)
	}
	args, err := popArgs(c, desc)
	if err != nil {
		return Result{}, err
	}
	recvSlot, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	recv, err := asObject(c, recvSlot, "invokespecial")
	if err != nil {
		return Result{}, err
	}
	targetClass, methodIndex, err := c.vm.Manager.ResolveMethod(c.cls.ID, entry.Owner, entry.Name, desc, true)
	if err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "invokespecial method resolution failed", err)
	}
	full := append([]object.Slot{object.ObjectRefSlot(recv)}, args...)
	return dispatchInvoke(c, targetClass, methodIndex, full, 3)
}

// execInvokeVirtual implements invokevirtual: dispatched against the
// receiver's actual runtime class, not the constant pool's static owner.
func execInvokeVirtual(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated invokevirtual index")
	}
	entry, desc, err := resolveMethodRefEntry(c, int(idx), false)
	if err != nil {
		return Result{}, err
	}
	args, err := popArgs(c, desc)
	if err != nil {
		return Result{}, err
	}
	recvSlot, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	recv, err := asObject(c, recvSlot, "invokevirtual")
	if err != nil {
		return Result{}, err
	}
	targetClass, methodIndex, err := c.vm.Manager.ResolveMethod(c.cls.ID, recv.ClassID, entry.Name, desc, false)
	if err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "invokevirtual method resolution failed", err)
	}
	full := append([]object.Slot{object.ObjectRefSlot(recv)}, args...)
	return dispatchInvoke(c, targetClass, methodIndex, full, 3)
}

// execInvokeInterface implements invokeinterface: same dynamic dispatch as
// invokevirtual, but the constant-pool entry is a CPInterfaceMethodRef and
// the instruction carries two extra historical bytes (count, 0) after the
// index, per JVMS 6.5.invokeinterface.
func execInvokeInterface(c *execCtx) (Result, error) {
	idx, ok := c.u2(1)
	if !ok {
		return Result{}, execErr(InvalidState, c, "truncated invokeinterface index")
	}
	entry, desc, err := resolveMethodRefEntry(c, int(idx), true)
	if err != nil {
		return Result{}, err
	}
	args, err := popArgs(c, desc)
	if err != nil {
		return Result{}, err
	}
	recvSlot, err := c.pop()
	if err != nil {
		return Result{}, err
	}
	recv, err := asObject(c, recvSlot, "invokeinterface")
	if err != nil {
		return Result{}, err
	}
	targetClass, methodIndex, err := c.vm.Manager.ResolveMethod(c.cls.ID, recv.ClassID, entry.Name, desc, false)
	if err != nil {
		return Result{}, execErrCause(ClassResolutionFailure, c, "invokeinterface method resolution failed", err)
	}
	full := append([]object.Slot{object.ObjectRefSlot(recv)}, args...)
	return dispatchInvoke(c, targetClass, methodIndex, full, 5)
}
