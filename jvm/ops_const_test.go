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
	"jacobin/stringpool"
)

// ldcClassBytes builds `class Lit extends java/lang/Object` with a single
// static method `constIdx()I`: ldc "hello, jacobin" (a CONSTANT_String);
// ireturn. A CPString constant resolves to an int-valued slot (the
// stringpool index), not a heap object -- this is the representation every
// println/print String native downstream relies on (gfunction.stringOf).
func ldcClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(10) // CP count (9 entries + 1)
	b.utf8Entry("Lit")              // #1
	b.classEntry(1)                 // #2
	b.utf8Entry("java/lang/Object") // #3
	b.classEntry(3)                 // #4
	b.utf8Entry("hello, jacobin")   // #5
	b.stringEntry(5)                // #6
	b.utf8Entry("constIdx")         // #7
	b.utf8Entry("()I")              // #8
	b.utf8Entry("Code")             // #9

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> Lit
	b.u2(4) // super -> Object
	b.u2(0)
	b.u2(0) // fields

	b.u2(1) // methods
	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(7)
	b.u2(8)
	b.u2(1)
	b.u2(9)
	code := codeBytes(1, 0, []byte{LDC, 6, IRETURN})
	b.u4(uint32(len(code)))
	b.raw(code)

	b.u2(0)
	return b.buf
}

func TestLdcStringIsPoolIndex(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"Lit":               ldcClassBytes(),
	})

	result, th := mustRun(t, vm, "Lit", "constIdx", "()I", nil)
	if th.Fault != nil {
		t.Fatalf("unexpected fault: %v", th.Fault)
	}
	if result.Kind != object.KindInt {
		t.Fatalf("ldc of a CPString produced Kind %v, want KindInt (the boxed stringpool index)", result.Kind)
	}
	if got := stringpool.GetString(uint32(result.I32)); got != "hello, jacobin" {
		t.Fatalf("stringpool.GetString(%d) = %q, want %q", result.I32, got, "hello, jacobin")
	}
}
