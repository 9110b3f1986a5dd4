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

// counterClassBytes builds `class Counter extends java/lang/Object` with a
// static int field `value`, a `<clinit>` that sets it to 42, and a static
// `get()I` that reads it back -- exercising getstatic/putstatic's class-
// initialization trigger (spec §4.3/§4.5: a static field access on a class
// not yet Done must drive it there first).
func counterClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(14) // CP count (13 entries + 1)
	b.utf8Entry("Counter")           // #1
	b.classEntry(1)                  // #2 -> Counter
	b.utf8Entry("java/lang/Object")  // #3
	b.classEntry(3)                  // #4 -> Object
	b.utf8Entry("value")             // #5
	b.utf8Entry("I")                 // #6
	b.nameAndTypeEntry(5, 6)          // #7
	b.fieldrefEntry(2, 7)             // #8 Counter.value:I
	b.utf8Entry("<clinit>")          // #9
	b.utf8Entry("()V")               // #10
	b.utf8Entry("Code")              // #11
	b.utf8Entry("get")               // #12
	b.utf8Entry("()I")               // #13

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> Counter
	b.u2(4) // super -> Object
	b.u2(0) // interfaces

	// fields: static int value
	b.u2(1)
	b.u2(classfile.AccStatic)
	b.u2(5)
	b.u2(6)
	b.u2(0)

	// methods: <clinit> and get()
	b.u2(2)

	b.u2(classfile.AccStatic)
	b.u2(9)
	b.u2(10)
	b.u2(1)
	b.u2(11)
	clinitCode := codeBytes(1, 0, []byte{BIPUSH, 42, PUTSTATIC, 0, 8, RETURN})
	b.u4(uint32(len(clinitCode)))
	b.raw(clinitCode)

	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(12)
	b.u2(13)
	b.u2(1)
	b.u2(11)
	getCode := codeBytes(1, 0, []byte{GETSTATIC, 0, 8, IRETURN})
	b.u4(uint32(len(getCode)))
	b.raw(getCode)

	b.u2(0)
	return b.buf
}

func TestStaticFieldThroughClinit(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"Counter":          counterClassBytes(),
	})

	result, th := mustRun(t, vm, "Counter", "get", "()I", nil)
	if th.Fault != nil {
		t.Fatalf("unexpected fault: %v", th.Fault)
	}
	if result.Kind != object.KindInt || result.I32 != 42 {
		t.Fatalf("got %+v, want int 42 (clinit must have run before get() observed value)", result)
	}
}
