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

// calcClassBytes builds `class Calc extends java/lang/Object` with a single
// static method `compute()I`: iconst_2 iconst_3 iadd ireturn.
func calcClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(8) // CP count (7 entries + 1)
	b.utf8Entry("Calc")
	b.u1(classfile.TagClass)
	b.u2(1)
	b.utf8Entry("java/lang/Object")
	b.u1(classfile.TagClass)
	b.u2(3)
	b.utf8Entry("compute")
	b.utf8Entry("()I")
	b.utf8Entry("Code")

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2)
	b.u2(4)
	b.u2(0)
	b.u2(0) // fields

	b.u2(1) // methods
	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(5)
	b.u2(6)
	b.u2(1)
	b.u2(7)
	code := codeBytes(2, 0, []byte{ICONST_2, ICONST_3, IADD, IRETURN})
	b.u4(uint32(len(code)))
	b.raw(code)

	b.u2(0)
	return b.buf
}

func TestArithmeticSmoke(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"Calc":              calcClassBytes(),
	})

	result, th := mustRun(t, vm, "Calc", "compute", "()I", nil)
	if th.Fault != nil {
		t.Fatalf("unexpected fault: %v", th.Fault)
	}
	if result.Kind != object.KindInt || result.I32 != 5 {
		t.Fatalf("got %+v, want int 5", result)
	}
}

// switchClassBytes builds `class Switcher` with a static method
// `classify(I)I` that runs a lookupswitch over its argument: 10->100,
// 20->200, default->-1.
func switchClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(8) // CP count (7 entries + 1)
	b.utf8Entry("Switcher")
	b.u1(classfile.TagClass)
	b.u2(1)
	b.utf8Entry("java/lang/Object")
	b.u1(classfile.TagClass)
	b.u2(3)
	b.utf8Entry("classify")
	b.utf8Entry("(I)I")
	b.utf8Entry("Code")

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

	// lookupswitch sits at pc=1 (right after iload_0's one byte), so its
	// data must start 4-byte-aligned from the method's own code start: pc=1
	// needs 2 bytes of padding before the default/npairs/pairs table
	// (switchDataStart's formula: pad = (4 - (pc+1)%4)%4 = (4-2%4)%4 = 2).
	be4 := func(v int32) []byte {
		return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
	const switchPC = 1
	// Layout (absolute code indices): 0 iload_0, 1 lookupswitch, 2-3 pad,
	// 4-7 default, 8-11 npairs, 12-19 pair0 (key,off), 20-27 pair1
	// (key,off), 28-30 case10 body, 31-34 case20 body, 35-36 default body.
	case10 := int32(28 - switchPC)
	case20 := int32(31 - switchPC)
	defOff := int32(35 - switchPC)

	code := []byte{ILOAD_0, LOOKUPSWITCH, 0, 0}
	code = append(code, be4(defOff)...)
	code = append(code, be4(2)...) // npairs
	code = append(code, be4(10)...)
	code = append(code, be4(case10)...)
	code = append(code, be4(20)...)
	code = append(code, be4(case20)...)
	code = append(code, BIPUSH, 100, IRETURN)
	code = append(code, SIPUSH, 0, 200, IRETURN)
	code = append(code, ICONST_M1, IRETURN)

	codeAttr := codeBytes(2, 1, code)
	b.u4(uint32(len(codeAttr)))
	b.raw(codeAttr)

	b.u2(0)
	return b.buf
}

func TestLookupSwitch(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"Switcher":         switchClassBytes(),
	})

	cases := []struct {
		in, want int32
	}{
		{10, 100},
		{20, 200},
		{7, -1},
	}
	for _, c := range cases {
		result, th := mustRun(t, vm, "Switcher", "classify", "(I)I", []object.Slot{object.IntSlot(c.in)})
		if th.Fault != nil {
			t.Fatalf("classify(%d): unexpected fault %v", c.in, th.Fault)
		}
		if result.I32 != c.want {
			t.Errorf("classify(%d) = %d, want %d", c.in, result.I32, c.want)
		}
	}
}
