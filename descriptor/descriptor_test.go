/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package descriptor

import "testing"

func TestParseFieldDescriptorPrimitives(t *testing.T) {
	for _, letter := range []byte{'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z'} {
		ft, err := ParseFieldDescriptor(string(letter))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", letter, err)
		}
		if ft.Kind != KindPrimitive || ft.Primitive != letter {
			t.Errorf("got %+v, want primitive %q", ft, letter)
		}
		if ft.String() != string(letter) {
			t.Errorf("round-trip mismatch: got %q, want %q", ft.String(), letter)
		}
	}
}

func TestParseFieldDescriptorObject(t *testing.T) {
	ft, err := ParseFieldDescriptor("Ljava/lang/String;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft.Kind != KindObject || ft.ClassName != "java/lang/String" {
		t.Errorf("got %+v", ft)
	}
	if ft.String() != "Ljava/lang/String;" {
		t.Errorf("round-trip mismatch: got %q", ft.String())
	}
}

func TestParseFieldDescriptorNestedArray(t *testing.T) {
	ft, err := ParseFieldDescriptor("[[I")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft.Kind != KindArray || ft.Dimensions() != 2 {
		t.Errorf("got %+v, want a 2-dimensional array", ft)
	}
	if ft.String() != "[[I" {
		t.Errorf("round-trip mismatch: got %q", ft.String())
	}
}

func TestParseFieldDescriptorRejectsTrailingGarbage(t *testing.T) {
	cases := []string{"IJ", "Ljava/lang/String;X", "[", "L;", "Lfoo.bar;", ""}
	for _, c := range cases {
		if _, err := ParseFieldDescriptor(c); err == nil {
			t.Errorf("ParseFieldDescriptor(%q) expected an error, got none", c)
		}
	}
}

func TestParseMethodDescriptorRoundTrip(t *testing.T) {
	cases := []string{
		"()V",
		"(I)I",
		"(Ljava/lang/String;I)Z",
		"([Ljava/lang/String;)V",
		"(JD)Ljava/lang/Object;",
	}
	for _, c := range cases {
		mt, err := ParseMethodDescriptor(c)
		if err != nil {
			t.Fatalf("ParseMethodDescriptor(%q): unexpected error: %v", c, err)
		}
		if got := mt.String(); got != c {
			t.Errorf("round-trip mismatch: got %q, want %q", got, c)
		}
	}
}

func TestParseMethodDescriptorRejectsBadInput(t *testing.T) {
	cases := []string{"", "V", "(I)", "(I)VV", "(X)V", "(I)I "}
	for _, c := range cases {
		if _, err := ParseMethodDescriptor(c); err == nil {
			t.Errorf("ParseMethodDescriptor(%q) expected an error, got none", c)
		}
	}
}

func TestMethodTypeEqualIsStructural(t *testing.T) {
	a, _ := ParseMethodDescriptor("(I)Ljava/lang/String;")
	b, _ := ParseMethodDescriptor("(I)Ljava/lang/String;")
	c, _ := ParseMethodDescriptor("(J)Ljava/lang/String;")
	if !a.Equal(b) {
		t.Errorf("expected structurally identical descriptors to be Equal")
	}
	if a.Equal(c) {
		t.Errorf("expected differing descriptors to not be Equal")
	}
}

func TestParseBinaryClassName(t *testing.T) {
	if _, err := ParseBinaryClassName("java/lang/Object"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseBinaryClassName("java.lang.Object"); err == nil {
		t.Errorf("expected error for dotted name")
	}
	if _, err := ParseBinaryClassName(""); err == nil {
		t.Errorf("expected error for empty name")
	}
	got, err := ParseBinaryClassName("[Ljava/lang/String;")
	if err != nil {
		t.Fatalf("unexpected error for array class name: %v", err)
	}
	if got != "[Ljava/lang/String;" {
		t.Errorf("got %q", got)
	}
}
