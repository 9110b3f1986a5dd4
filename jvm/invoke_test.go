/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"testing"

	"jacobin/classfile"
	"jacobin/object"
)

// baseClassBytes builds `class Base extends java/lang/Object` with
// `<init>()V` (chains to Object's) and `greet()I` returning 1.
func baseClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(12) // CP count (11 entries + 1)
	b.utf8Entry("Base")             // #1
	b.classEntry(1)                 // #2
	b.utf8Entry("java/lang/Object") // #3
	b.classEntry(3)                 // #4
	b.utf8Entry("<init>")           // #5
	b.utf8Entry("()V")              // #6
	b.nameAndTypeEntry(5, 6)         // #7
	b.methodrefEntry(4, 7)          // #8 Object.<init>()V
	b.utf8Entry("greet")            // #9
	b.utf8Entry("()I")              // #10
	b.utf8Entry("Code")             // #11

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> Base
	b.u2(4) // super -> Object
	b.u2(0)
	b.u2(0) // fields

	b.u2(2) // methods

	b.u2(classfile.AccPublic)
	b.u2(5)
	b.u2(6)
	b.u2(1)
	b.u2(11)
	initCode := codeBytes(1, 1, []byte{ALOAD_0, INVOKESPECIAL, 0, 8, RETURN})
	b.u4(uint32(len(initCode)))
	b.raw(initCode)

	b.u2(classfile.AccPublic)
	b.u2(9)
	b.u2(10)
	b.u2(1)
	b.u2(11)
	greetCode := codeBytes(1, 1, []byte{ICONST_1, IRETURN})
	b.u4(uint32(len(greetCode)))
	b.raw(greetCode)

	b.u2(0)
	return b.buf
}

// childClassBytes builds `class Child extends Base` overriding `greet()I`
// to return 2, plus a static `run()I` that allocates a Child, constructs
// it, and calls greet() through a constant-pool reference statically typed
// as Base -- invokevirtual must dispatch on the receiver's actual runtime
// class, not that static owner.
func childClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(16) // CP count (15 entries + 1)
	b.utf8Entry("Child")     // #1
	b.classEntry(1)          // #2
	b.utf8Entry("Base")      // #3
	b.classEntry(3)          // #4
	b.utf8Entry("<init>")    // #5
	b.utf8Entry("()V")       // #6
	b.nameAndTypeEntry(5, 6) // #7
	b.methodrefEntry(4, 7)   // #8 Base.<init>()V
	b.utf8Entry("greet")     // #9
	b.utf8Entry("()I")       // #10
	b.utf8Entry("Code")      // #11
	b.utf8Entry("run")       // #12
	b.nameAndTypeEntry(9, 10) // #13 greet()I
	b.methodrefEntry(4, 13)  // #14 Base.greet()I (static entry, dynamic dispatch)
	b.methodrefEntry(2, 7)   // #15 Child.<init>()V

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> Child
	b.u2(4) // super -> Base
	b.u2(0)
	b.u2(0) // fields

	b.u2(3) // methods

	b.u2(classfile.AccPublic)
	b.u2(5)
	b.u2(6)
	b.u2(1)
	b.u2(11)
	initCode := codeBytes(1, 1, []byte{ALOAD_0, INVOKESPECIAL, 0, 8, RETURN})
	b.u4(uint32(len(initCode)))
	b.raw(initCode)

	b.u2(classfile.AccPublic)
	b.u2(9)
	b.u2(10)
	b.u2(1)
	b.u2(11)
	greetCode := codeBytes(1, 1, []byte{ICONST_2, IRETURN})
	b.u4(uint32(len(greetCode)))
	b.raw(greetCode)

	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(12)
	b.u2(10)
	b.u2(1)
	b.u2(11)
	runCode := codeBytes(2, 0, []byte{
		NEW, 0, 2,
		DUP,
		INVOKESPECIAL, 0, 15,
		INVOKEVIRTUAL, 0, 14,
		IRETURN,
	})
	b.u4(uint32(len(runCode)))
	b.raw(runCode)

	b.u2(0)
	return b.buf
}

func TestVirtualDispatchOverride(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"Base":              baseClassBytes(),
		"Child":             childClassBytes(),
	})

	result, th := mustRun(t, vm, "Child", "run", "()I", nil)
	if th.Fault != nil {
		t.Fatalf("unexpected fault: %v", th.Fault)
	}
	if result.Kind != object.KindInt || result.I32 != 2 {
		t.Fatalf("got %+v, want int 2 (Child's override, not Base's)", result)
	}
}
