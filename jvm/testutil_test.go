/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"encoding/binary"
	"testing"

	"jacobin/classfile"
	"jacobin/classloader"
	"jacobin/classpath"
	"jacobin/descriptor"
	"jacobin/frame"
	"jacobin/object"
)

// builder assembles class-file byte streams for tests, mirrored from
// classloader's own unexported test builder (classloader/manager_test.go)
// since it isn't exported across package boundaries.
type builder struct{ buf []byte }

func (b *builder) u1(v byte)    { b.buf = append(b.buf, v) }
func (b *builder) u2(v uint16)  { b.buf = binary.BigEndian.AppendUint16(b.buf, v) }
func (b *builder) u4(v uint32)  { b.buf = binary.BigEndian.AppendUint32(b.buf, v) }
func (b *builder) raw(v []byte) { b.buf = append(b.buf, v...) }

func (b *builder) utf8Entry(s string) {
	b.u1(classfile.TagUTF8)
	b.u2(uint16(len(s)))
	b.raw([]byte(s))
}

func (b *builder) classEntry(nameIdx uint16) {
	b.u1(classfile.TagClass)
	b.u2(nameIdx)
}

func (b *builder) stringEntry(utf8Idx uint16) {
	b.u1(classfile.TagString)
	b.u2(utf8Idx)
}

func (b *builder) nameAndTypeEntry(nameIdx, descIdx uint16) {
	b.u1(classfile.TagNameAndType)
	b.u2(nameIdx)
	b.u2(descIdx)
}

func (b *builder) fieldrefEntry(classIdx, natIdx uint16) {
	b.u1(classfile.TagFieldref)
	b.u2(classIdx)
	b.u2(natIdx)
}

func (b *builder) methodrefEntry(classIdx, natIdx uint16) {
	b.u1(classfile.TagMethodref)
	b.u2(classIdx)
	b.u2(natIdx)
}

// longEntry writes a CONSTANT_Long_info, which -- per JVMS 4.4.5 -- occupies
// two consecutive constant-pool indices (the second a phantom tombstone the
// decoder accounts for automatically).
func (b *builder) longEntry(v int64) {
	b.u1(classfile.TagLong)
	b.u4(uint32(uint64(v) >> 32))
	b.u4(uint32(uint64(v)))
}

// mapReader is an in-memory classpath.Reader over a name->bytes map.
type mapReader map[string][]byte

func (r mapReader) ReadClass(name string) ([]byte, error) {
	b, ok := r[name]
	if !ok {
		return nil, classpath.ErrNotFound
	}
	return b, nil
}

// objectClassBytes builds a minimal java/lang/Object: no super, no fields,
// one trivial `<init>()V` (just `return`) so test classes further down the
// hierarchy have something for their own `<init>`'s invokespecial to chain
// to.
func objectClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(6) // CP count (5 entries + 1)
	b.utf8Entry("java/lang/Object") // #1
	b.classEntry(1)                 // #2
	b.utf8Entry("<init>")           // #3
	b.utf8Entry("()V")              // #4
	b.utf8Entry("Code")             // #5

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2)
	b.u2(0)
	b.u2(0)
	b.u2(0) // fields

	b.u2(1) // methods
	b.u2(classfile.AccPublic)
	b.u2(3)
	b.u2(4)
	b.u2(1)
	b.u2(5)
	code := codeBytes(1, 1, []byte{RETURN})
	b.u4(uint32(len(code)))
	b.raw(code)

	b.u2(0)
	return b.buf
}

// codeBytes packages raw bytecode plus max_stack/max_locals into a Code
// attribute body (caller supplies the attribute's own name-index header).
func codeBytes(maxStack, maxLocals uint16, code []byte) []byte {
	c := &builder{}
	c.u2(maxStack)
	c.u2(maxLocals)
	c.u4(uint32(len(code)))
	c.raw(code)
	c.u2(0) // exception table
	c.u2(0) // attributes
	return c.buf
}

// newTestVM wires a Manager over reader and its VM, the combination every
// test in this package drives its scenario class through.
func newTestVM(reader mapReader) *VM {
	mgr := classloader.NewManager(reader)
	return NewVM(mgr)
}

// mustRun loads mainClass, resolves the named method by its descriptor
// string, and runs it to completion on a fresh thread, failing the test on
// any error along the way. It returns the method's result slot (zero value
// for a void method) and the thread, so callers can also inspect Fault.
func mustRun(t *testing.T, vm *VM, mainClass, methodName, methodDesc string, args []object.Slot) (object.Slot, *frame.Thread) {
	t.Helper()
	classID, err := vm.Manager.Load(mainClass)
	if err != nil {
		t.Fatalf("Load(%s): %v", mainClass, err)
	}
	cls, ok := vm.Manager.Get(classID)
	if !ok {
		t.Fatalf("%s did not reach a runnable state", mainClass)
	}
	desc, err := descriptor.ParseMethodDescriptor(methodDesc)
	if err != nil {
		t.Fatalf("parsing descriptor %q: %v", methodDesc, err)
	}
	idx, _, found := cls.FindMethod(methodName, desc)
	if !found {
		t.Fatalf("%s has no method %s%s", mainClass, methodName, methodDesc)
	}

	th := vm.Threads.NewThread()
	result, err := vm.invokeAndRun(th, classID, idx, args)
	if err != nil {
		t.Fatalf("running %s.%s%s: %v", mainClass, methodName, methodDesc, err)
	}
	return result, th
}

// runExpectFault is mustRun's counterpart for scenarios that are expected to
// fault (e.g. a null dereference): it returns the thread's Fault instead of
// treating a non-nil error as a test failure.
func runExpectFault(t *testing.T, vm *VM, mainClass, methodName, methodDesc string, args []object.Slot) error {
	t.Helper()
	classID, err := vm.Manager.Load(mainClass)
	if err != nil {
		t.Fatalf("Load(%s): %v", mainClass, err)
	}
	cls, ok := vm.Manager.Get(classID)
	if !ok {
		t.Fatalf("%s did not reach a runnable state", mainClass)
	}
	desc, err := descriptor.ParseMethodDescriptor(methodDesc)
	if err != nil {
		t.Fatalf("parsing descriptor %q: %v", methodDesc, err)
	}
	idx, _, found := cls.FindMethod(methodName, desc)
	if !found {
		t.Fatalf("%s has no method %s%s", mainClass, methodName, methodDesc)
	}

	th := vm.Threads.NewThread()
	_, err = vm.invokeAndRun(th, classID, idx, args)
	if err == nil {
		t.Fatalf("expected %s.%s%s to fault, it completed normally", mainClass, methodName, methodDesc)
	}
	return err
}
