/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"encoding/binary"
	"testing"

	"jacobin/classfile"
)

// builder assembles class-file byte streams for tests, mirroring the one in
// package classfile's own test suite.
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

// mapReader is an in-memory classpath.Reader backed by a name->bytes map,
// used so these tests don't need real .class fixtures on disk.
type mapReader map[string][]byte

func (r mapReader) ReadClass(name string) ([]byte, error) {
	b, ok := r[name]
	if !ok {
		return nil, classNotFound(name, nil)
	}
	return b, nil
}

// objectClassBytes builds a minimal java/lang/Object: no super, no fields,
// no methods.
func objectClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)
	b.u2(3) // CP count
	b.utf8Entry("java/lang/Object") // #1
	b.u1(classfile.TagClass)
	b.u2(1) // #2 -> #1
	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> #2
	b.u2(0) // super: none
	b.u2(0) // interfaces
	b.u2(0) // fields
	b.u2(0) // methods
	b.u2(0) // attributes
	return b.buf
}

// fooClassBytes builds `class Foo extends java/lang/Object` with one
// static method `answer()I` (iconst_2, iconst_3, iadd, ireturn) and one
// static final int field K=42 (ConstantValue).
func fooClassBytes() []byte {
	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)

	// CP: #1 Foo, #2 Class->Foo, #3 java/lang/Object, #4 Class->Object,
	// #5 "answer", #6 "()I", #7 "Code", #8 "K", #9 "I", #10 "ConstantValue",
	// #11 Integer(42)
	b.u2(12)
	b.utf8Entry("Foo")
	b.u1(classfile.TagClass)
	b.u2(1)
	b.utf8Entry("java/lang/Object")
	b.u1(classfile.TagClass)
	b.u2(3)
	b.utf8Entry("answer")
	b.utf8Entry("()I")
	b.utf8Entry("Code")
	b.utf8Entry("K")
	b.utf8Entry("I")
	b.utf8Entry("ConstantValue")
	b.u1(classfile.TagInteger)
	b.u4(42)

	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> Foo
	b.u2(4) // super -> Object
	b.u2(0) // interfaces

	// fields: one static final int K = 42
	b.u2(1)
	b.u2(classfile.AccStatic | classfile.AccFinal)
	b.u2(8) // name "K"
	b.u2(9) // descriptor "I"
	b.u2(1) // 1 attribute
	b.u2(10) // name -> "ConstantValue"
	cvAttr := &builder{}
	cvAttr.u2(11) // -> Integer(42)
	b.u4(uint32(len(cvAttr.buf)))
	b.raw(cvAttr.buf)

	// methods: one static `answer()I`
	b.u2(1)
	b.u2(classfile.AccPublic | classfile.AccStatic)
	b.u2(5) // name "answer"
	b.u2(6) // descriptor "()I"
	b.u2(1) // 1 attribute
	b.u2(7) // name -> "Code"
	code := []byte{0x05, 0x06, 0x60, 0xAC} // iconst_2 iconst_3 iadd ireturn
	codeAttr := &builder{}
	codeAttr.u2(2) // max_stack
	codeAttr.u2(0) // max_locals
	codeAttr.u4(uint32(len(code)))
	codeAttr.raw(code)
	codeAttr.u2(0) // exception table
	codeAttr.u2(0) // attributes
	b.u4(uint32(len(codeAttr.buf)))
	b.raw(codeAttr.buf)

	b.u2(0) // class attributes
	return b.buf
}

func TestLoadSimpleHierarchy(t *testing.T) {
	reader := mapReader{
		"java/lang/Object": objectClassBytes(),
		"Foo":              fooClassBytes(),
	}
	m := NewManager(reader)

	fooID, err := m.Load("Foo")
	if err != nil {
		t.Fatalf("Load(Foo) failed: %v", err)
	}

	foo, ok := m.Get(fooID)
	if !ok {
		t.Fatal("expected Foo to be present after Load")
	}
	if foo.State != Done {
		t.Errorf("got state %v, want Done", foo.State)
	}

	objID, ok := m.IDOf("java/lang/Object")
	if !ok {
		t.Fatal("expected java/lang/Object to have an assigned id")
	}
	if foo.SuperID != objID {
		t.Errorf("got Foo.SuperID %d, want %d (java/lang/Object)", foo.SuperID, objID)
	}

	obj, ok := m.Get(objID)
	if !ok || obj.State != Done {
		t.Fatal("expected java/lang/Object to also reach Done")
	}

	if len(foo.Methods) != 1 || foo.Methods[0].Name != "answer" {
		t.Fatalf("expected Foo to have one method `answer`, got %+v", foo.Methods)
	}
	if foo.Methods[0].Code == nil || len(foo.Methods[0].Code.Code) != 4 {
		t.Errorf("expected answer()'s Code to carry 4 bytes of bytecode")
	}

	if len(foo.Fields) != 1 || foo.Fields[0].Name != "K" {
		t.Fatalf("expected Foo to have one field `K`, got %+v", foo.Fields)
	}
	if foo.Fields[0].CurrentValue.I32 != 42 {
		t.Errorf("got K's ConstantValue %d, want 42", foo.Fields[0].CurrentValue.I32)
	}
}

func TestLoadUnknownClassFails(t *testing.T) {
	m := NewManager(mapReader{})
	if _, err := m.Load("DoesNotExist"); err == nil {
		t.Fatal("expected an error loading a class absent from the class path")
	}
}

func TestLoadCircularSuperclassFails(t *testing.T) {
	a := &builder{}
	a.u4(classfile.Magic)
	a.u2(0)
	a.u2(61)
	a.u2(4)
	a.utf8Entry("A")
	a.u1(classfile.TagClass)
	a.u2(1)
	a.utf8Entry("B")
	a.u1(classfile.TagClass)
	a.u2(3)
	a.u2(classfile.AccPublic | classfile.AccSuper)
	a.u2(2) // this -> A
	a.u2(4) // super -> B
	a.u2(0)
	a.u2(0)
	a.u2(0)
	a.u2(0)

	b := &builder{}
	b.u4(classfile.Magic)
	b.u2(0)
	b.u2(61)
	b.u2(4)
	b.utf8Entry("B")
	b.u1(classfile.TagClass)
	b.u2(1)
	b.utf8Entry("A")
	b.u1(classfile.TagClass)
	b.u2(3)
	b.u2(classfile.AccPublic | classfile.AccSuper)
	b.u2(2) // this -> B
	b.u2(4) // super -> A
	b.u2(0)
	b.u2(0)
	b.u2(0)
	b.u2(0)

	reader := mapReader{"A": a.buf, "B": b.buf}
	m := NewManager(reader)
	if _, err := m.Load("A"); err == nil {
		t.Fatal("expected a circular-dependency error for A extends B extends A")
	}
}
