/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"io"
	"os"
	"testing"

	"jacobin/object"
	"jacobin/stringpool"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = orig
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}

// TestPrintlnStringUsesPoolContents pins down the representation jvm.execLdc
// actually produces for a CPString constant -- its stringpool index boxed in
// a KindInt slot, not a heap object -- and checks println/print resolve it
// back to the literal's text instead of silently printing nothing.
func TestPrintlnStringUsesPoolContents(t *testing.T) {
	idx := stringpool.Intern("hello, jacobin")
	arg := object.IntSlot(int32(idx))

	out := captureStdout(t, func() {
		if _, err := printlnString(nil, []object.Slot{{}, arg}); err != nil {
			t.Fatalf("printlnString: %v", err)
		}
	})
	if want := "hello, jacobin\n"; out != want {
		t.Fatalf("printlnString wrote %q, want %q", out, want)
	}

	out = captureStdout(t, func() {
		if _, err := printString(nil, []object.Slot{{}, arg}); err != nil {
			t.Fatalf("printString: %v", err)
		}
	})
	if want := "hello, jacobin"; out != want {
		t.Fatalf("printString wrote %q, want %q", out, want)
	}
}

// TestPrintlnStringNull checks the documented null fallback still holds once
// stringOf also has to recognize the boxed-index representation.
func TestPrintlnStringNull(t *testing.T) {
	out := captureStdout(t, func() {
		if _, err := printlnString(nil, []object.Slot{{}, object.NullSlot()}); err != nil {
			t.Fatalf("printlnString: %v", err)
		}
	})
	if want := "null\n"; out != want {
		t.Fatalf("printlnString wrote %q, want %q", out, want)
	}
}
