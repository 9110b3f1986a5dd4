/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jvm

import (
	"errors"
	"testing"

	"jacobin/classfile"
)

// nullTrapClassBytes builds `class NullTrap` with a static `run()I` that
// pushes a null reference and takes its arraylength -- spec §4.5's explicit
// null-dereference edge case for arraylength.
func nullTrapClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	b.u2(8) // CP count (7 entries + 1)
	b.utf8Entry("NullTrap")          // #1
	b.classEntry(1)                  // #2
	b.utf8Entry("java/lang/Object")  // #3
	b.classEntry(3)                  // #4
	b.utf8Entry("run")               // #5
	b.utf8Entry("()I")               // #6
	b.utf8Entry("Code")              // #7

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
	code := codeBytes(1, 0, []byte{ACONST_NULL, ARRAYLENGTH, IRETURN})
	b.u4(uint32(len(code)))
	b.raw(code)

	b.u2(0)
	return b.buf
}

func TestArrayLengthOnNullTraps(t *testing.T) {
	vm := newTestVM(mapReader{
		"java/lang/Object": objectClassBytes(),
		"NullTrap":         nullTrapClassBytes(),
	})

	err := runExpectFault(t, vm, "NullTrap", "run", "()I", nil)
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("got %v (%T), want an *ExecError", err, err)
	}
	if execErr.Kind != NullDereference {
		t.Fatalf("got ExecError kind %v, want %v", execErr.Kind, NullDereference)
	}
}
