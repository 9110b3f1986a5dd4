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

// longMathClassBytes builds `class LongMath` with a static `compute()J`
// that stores two long constants into locals 0 and 2 -- each a wide value
// occupying two consecutive local-variable cells -- and adds them back,
// exercising the locals-array wide-slot/Tombstone bookkeeping distinct from
// the single-logical-slot width a Long has on the operand stack.
func longMathClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(12) // CP count (11 entries + 1; the two Longs each eat 2 slots)
	b.utf8Entry("LongMath")          // #1
	b.classEntry(1)                  // #2
	b.utf8Entry("java/lang/Object")  // #3
	b.classEntry(3)                  // #4
	b.utf8Entry("compute")           // #5
	b.utf8Entry("()J")               // #6
	b.utf8Entry("Code")              // #7
	b.longEntry(100000000000)        // #8 (and phantom #9)
	b.longEntry(23)                  // #10 (and phantom #11)

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2)
	b.u2(4)
	b.u2(0)
	b.u2(0)

	b.u2(1)
	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(5)
	b.u2(6)
	b.u2(1)
	b.u2(7)
	code := codeBytes(4, 4, []byte{
		LDC2_W, 0, 8,
		LSTORE_0,
		LDC2_W, 0, 10,
		LSTORE_2,
		LLOAD_0,
		LLOAD_2,
		LADD,
		LRETURN,
	})
	b.u4(uint32(len(code)))
	b.raw(code)

	b.u2(0)
	return b.buf
}

func TestLongWideLocals(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"LongMath":         longMathClassBytes(),
	})

	result, th := mustRun(t, vm, "LongMath", "compute", "()J", nil)
	if th.Fault != nil {
		t.Fatalf("unexpected fault: %v", th.Fault)
	}
	if result.Kind != object.KindLong || result.I64 != 100000000023 {
		t.Fatalf("got %+v, want long 100000000023", result)
	}
}
