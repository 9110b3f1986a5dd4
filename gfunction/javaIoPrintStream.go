/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"fmt"
	"os"

	"jacobin/frame"
	"jacobin/object"
	"jacobin/stringpool"
)

// loadIoPrintStream registers the System.out/System.err print family used by
// the core's end-to-end scenarios (spec §8's println smoke test). The core
// has no live PrintStream object model of its own; these natives write
// straight to the host process's stdout, which is the only observable
// behavior a println call has.
func (r *Registry) loadIoPrintStream() {
	r.register("java/io/PrintStream.println()V", 1, func(_ *frame.Thread, _ []object.Slot) (object.Slot, error) {
		fmt.Fprintln(os.Stdout)
		return object.Slot{}, nil
	})
	r.register("java/io/PrintStream.println(I)V", 2, printlnInt)
	r.register("java/io/PrintStream.println(J)V", 2, printlnLong)
	r.register("java/io/PrintStream.println(Z)V", 2, printlnBool)
	r.register("java/io/PrintStream.println(Ljava/lang/String;)V", 2, printlnString)
	r.register("java/io/PrintStream.print(I)V", 2, printInt)
	r.register("java/io/PrintStream.print(Ljava/lang/String;)V", 2, printString)
}

func printlnInt(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprintln(os.Stdout, args[1].I32)
	return object.Slot{}, nil
}

func printlnLong(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprintln(os.Stdout, args[1].I64)
	return object.Slot{}, nil
}

func printlnBool(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprintln(os.Stdout, args[1].I32 != 0)
	return object.Slot{}, nil
}

func printlnString(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprintln(os.Stdout, stringOf(args[1]))
	return object.Slot{}, nil
}

func printInt(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprint(os.Stdout, args[1].I32)
	return object.Slot{}, nil
}

func printString(_ *frame.Thread, args []object.Slot) (object.Slot, error) {
	fmt.Fprint(os.Stdout, stringOf(args[1]))
	return object.Slot{}, nil
}

// stringOf renders a java/lang/String reference slot as a Go string. The
// core has no live java/lang/String object model (spec §9): `ldc` of a
// CPString leaves the value as its stringpool index boxed in a KindInt slot
// rather than a heap reference (jvm.execLdc), so that's the representation
// every println/print String native actually receives. A real heap object
// is handled too, for the day a caller builds one by hand, on the same
// field-0-holds-the-pool-index convention. A null reference prints as the
// literal "null", matching java.io.PrintStream's own documented behavior.
func stringOf(s object.Slot) string {
	if s.IsNull() {
		return "null"
	}
	if s.Kind == object.KindInt {
		return stringpool.GetString(uint32(s.I32))
	}
	if o, ok := s.Ref.(*object.Object); ok && len(o.Fields) > 0 && o.Fields[0].Kind == object.KindInt {
		return stringpool.GetString(uint32(o.Fields[0].I32))
	}
	return ""
}
