/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classfile

import (
	"encoding/binary"
	"testing"
)

// builder assembles a minimal, well-formed class file byte by byte, so
// tests don't need a real .class fixture on disk.
type builder struct {
	buf []byte
}

func (b *builder) u1(v byte)    { b.buf = append(b.buf, v) }
func (b *builder) u2(v uint16)  { b.buf = binary.BigEndian.AppendUint16(b.buf, v) }
func (b *builder) u4(v uint32)  { b.buf = binary.BigEndian.AppendUint32(b.buf, v) }
func (b *builder) raw(v []byte) { b.buf = append(b.buf, v...) }

func (b *builder) utf8Entry(s string) {
	b.u1(TagUTF8)
	enc := encodeModifiedUTF8(s)
	b.u2(uint16(len(enc)))
	b.raw(enc)
}

// minimalClassFile builds: public class Foo extends java/lang/Object, no
// fields/methods/interfaces/attributes, with a 4-entry constant pool
// (#1 Utf8 "Foo", #2 Class -> #1, #3 Utf8 "java/lang/Object", #4 Class -> #3).
func minimalClassFile(t *testing.T) []byte {
	t.Helper()
	b := &builder{}
	b.u4(Magic)
	b.u2(0)  // minor
	b.u2(61) // major

	// constant pool: count = 5 (4 real entries)
	b.u2(5)
	b.utf8Entry("Foo")            // #1
	b.u1(TagClass); b.u2(1)       // #2 -> Foo
	b.utf8Entry("java/lang/Object") // #3
	b.u1(TagClass); b.u2(3)       // #4 -> java/lang/Object

	b.u2(AccPublic | AccSuper) // access flags
	b.u2(2)                    // this_class -> #2 (Foo)
	b.u2(4)                    // super_class -> #4 (Object)
	b.u2(0)                    // interfaces count
	b.u2(0)                    // fields count
	b.u2(0)                    // methods count
	b.u2(0)                    // attributes count
	return b.buf
}

func TestDecodeMinimalClassFile(t *testing.T) {
	cf, err := Decode(minimalClassFile(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cf.ThisClassName() != "Foo" {
		t.Errorf("got this-class %q, want Foo", cf.ThisClassName())
	}
	if cf.SuperClassName() != "java/lang/Object" {
		t.Errorf("got super-class %q, want java/lang/Object", cf.SuperClassName())
	}
	if !cf.AccessFlagIsPublic() {
		t.Errorf("expected public access flag set")
	}
}

// AccessFlagIsPublic is a tiny test-only convenience so the assertion above
// reads naturally; defined here rather than on ClassFile to keep the public
// API focused on what classloader actually needs.
func (c *ClassFile) AccessFlagIsPublic() bool {
	return c.AccessFlags&AccPublic != 0
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := minimalClassFile(t)
	raw[0] = 0x00
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected an error for bad magic number")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode([]byte{0xCA, 0xFE}); err == nil {
		t.Fatal("expected an error for a short buffer")
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	b := &builder{}
	b.u4(Magic)
	b.u2(0)
	b.u2(61)
	b.u2(2) // one entry
	b.u1(200)
	b.u2(0)
	if _, err := Decode(b.buf); err == nil {
		t.Fatal("expected an error for an unknown constant pool tag")
	}
}

func TestLongAndDoubleInsertTombstone(t *testing.T) {
	b := &builder{}
	b.u4(Magic)
	b.u2(0)
	b.u2(61)
	// count = 4: #1 Long (occupies 1 and 2), #3 a UTF8 entry
	b.u2(4)
	b.u1(TagLong)
	b.u4(0)
	b.u4(42)
	b.utf8Entry("after-long")
	b.u2(AccPublic)
	b.u2(0) // this_class left dangling (0) is fine, decode doesn't resolve it eagerly
	b.u2(0)
	b.u2(0)
	b.u2(0)
	b.u2(0)
	b.u2(0)

	cf, err := Decode(b.buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cf.ConstantPool.Get(2).(Tombstone); !ok {
		t.Errorf("expected tombstone at index 2 after Long entry, got %#v", cf.ConstantPool.Get(2))
	}
	if cf.ConstantPool.UTF8(3) != "after-long" {
		t.Errorf("expected index 3 to be reachable after the tombstone, got %q", cf.ConstantPool.UTF8(3))
	}
}

func TestModifiedUTF8RoundTrip(t *testing.T) {
	cases := []string{"", "hello", "java/lang/Object", "a\x00b", "emoji:\U0001F600"}
	for _, s := range cases {
		enc := encodeModifiedUTF8(s)
		dec, err := decodeModifiedUTF8(enc)
		if err != nil {
			t.Fatalf("decodeModifiedUTF8(%q) failed: %v", s, err)
		}
		if dec != s {
			t.Errorf("round trip mismatch: got %q, want %q", dec, s)
		}
	}
}

func TestDecodeCodeAttribute(t *testing.T) {
	b := &builder{}
	b.u4(Magic)
	b.u2(0)
	b.u2(61)

	// CP: #1 "Code", #2 "Foo", #3 Class->Foo, #4 "java/lang/Object", #5 Class->Object
	b.u2(6)
	b.utf8Entry("Code")
	b.utf8Entry("Foo")
	b.u1(TagClass); b.u2(2)
	b.utf8Entry("java/lang/Object")
	b.u1(TagClass); b.u2(4)

	b.u2(AccPublic | AccSuper)
	b.u2(3) // this -> Foo
	b.u2(5) // super -> Object
	b.u2(0) // interfaces
	b.u2(0) // fields

	// one method with a Code attribute: iconst_2 iconst_3 iadd ireturn
	b.u2(1)
	b.u2(AccPublic | AccStatic)
	b.u2(2) // name index reused (not validated by decoder)
	b.u2(2) // descriptor index reused
	b.u2(1) // 1 attribute
	b.u2(1) // name index -> "Code"
	code := []byte{0x05, 0x06, 0x60, 0xAC} // iconst_2 iconst_3 iadd ireturn
	codeAttr := &builder{}
	codeAttr.u2(2) // max_stack
	codeAttr.u2(0) // max_locals
	codeAttr.u4(uint32(len(code)))
	codeAttr.raw(code)
	codeAttr.u2(0) // exception table count
	codeAttr.u2(0) // attributes count
	b.u4(uint32(len(codeAttr.buf)))
	b.raw(codeAttr.buf)

	b.u2(0) // class attributes

	cf, err := Decode(b.buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := cf.Methods[0]
	if m.Code == nil {
		t.Fatal("expected a parsed Code attribute")
	}
	if m.Code.MaxStack != 2 {
		t.Errorf("got max_stack %d, want 2", m.Code.MaxStack)
	}
	if len(m.Code.Code) != 4 {
		t.Errorf("got code length %d, want 4", len(m.Code.Code))
	}
}
