/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classfile is the Decoder component (spec §4.1): it turns a raw
// class-file byte buffer into a structural tree with no knowledge of any
// other loaded class. It never touches the classpath, the class table, or
// any other class -- that's classloader's job.
package classfile

// Magic is the fixed four-byte header every class file begins with.
const Magic uint32 = 0xCAFEBABE

// Constant-pool entry tags, fixed by the class-file format.
const (
	TagUTF8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Class access-flag bits (JVMS 4.1 Table 4.1-B).
const (
	AccPublic     = 0x0001
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// Field/method access-flag bits (JVMS 4.5 / 4.6).
const (
	AccPrivate      = 0x0002
	AccProtected    = 0x0004
	AccStatic       = 0x0008
	AccVolatile     = 0x0040
	AccTransient    = 0x0080
	AccVarargs      = 0x0080
	AccNative       = 0x0100
	AccStrict       = 0x0800
	AccBridge       = 0x0040
	AccSynchronized = 0x0020
)

// ConstantPoolEntry is implemented by every concrete constant-pool payload
// type below. Tag identifies which one, so callers can type-switch without
// reflection.
type ConstantPoolEntry interface {
	Tag() byte
}

// Tombstone occupies the slot immediately following a Long or Double entry
// (spec §3: "Widening constants occupy two raw constant-pool indices; the
// second is a tombstone that is never dereferenced"). It also fills index 0,
// which the class-file format never assigns.
type Tombstone struct{}

func (Tombstone) Tag() byte { return 0 }

type ConstantUTF8 struct{ Value string }

func (ConstantUTF8) Tag() byte { return TagUTF8 }

type ConstantInteger struct{ Value int32 }

func (ConstantInteger) Tag() byte { return TagInteger }

type ConstantFloat struct{ Value float32 }

func (ConstantFloat) Tag() byte { return TagFloat }

type ConstantLong struct{ Value int64 }

func (ConstantLong) Tag() byte { return TagLong }

type ConstantDouble struct{ Value float64 }

func (ConstantDouble) Tag() byte { return TagDouble }

type ConstantClass struct{ NameIndex uint16 }

func (ConstantClass) Tag() byte { return TagClass }

type ConstantString struct{ StringIndex uint16 }

func (ConstantString) Tag() byte { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantFieldref) Tag() byte { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantMethodref) Tag() byte { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantInterfaceMethodref) Tag() byte { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (ConstantNameAndType) Tag() byte { return TagNameAndType }

type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (ConstantMethodHandle) Tag() byte { return TagMethodHandle }

type ConstantMethodType struct{ DescriptorIndex uint16 }

func (ConstantMethodType) Tag() byte { return TagMethodType }

type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (ConstantDynamic) Tag() byte { return TagDynamic }

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (ConstantInvokeDynamic) Tag() byte { return TagInvokeDynamic }

type ConstantModule struct{ NameIndex uint16 }

func (ConstantModule) Tag() byte { return TagModule }

type ConstantPackage struct{ NameIndex uint16 }

func (ConstantPackage) Tag() byte { return TagPackage }

// ConstantPool is the raw, 1-indexed constant pool as decoded from the class
// file. Index 0 and the tombstone slot after each Long/Double are both
// Tombstone{}.
type ConstantPool struct {
	Entries []ConstantPoolEntry // Entries[0] is always Tombstone{}
}

// Get returns the entry at idx, or a Tombstone if idx is out of range --
// callers that need a hard error should use classloader's runtime pool
// instead, which validates indices against the structure of linked classes.
func (cp *ConstantPool) Get(idx uint16) ConstantPoolEntry {
	if int(idx) >= len(cp.Entries) {
		return Tombstone{}
	}
	return cp.Entries[idx]
}

// UTF8 resolves idx to its string payload, or "" if it isn't a UTF8 entry.
func (cp *ConstantPool) UTF8(idx uint16) string {
	if u, ok := cp.Get(idx).(ConstantUTF8); ok {
		return u.Value
	}
	return ""
}

// ClassName resolves a Class entry at idx to its binary name.
func (cp *ConstantPool) ClassName(idx uint16) string {
	if c, ok := cp.Get(idx).(ConstantClass); ok {
		return cp.UTF8(c.NameIndex)
	}
	return ""
}

// FieldInfo is one entry of the field list.
type FieldInfo struct {
	AccessFlags    uint16
	NameIndex      uint16
	DescriptorIndex uint16
	Attributes     []AttributeInfo
}

// MethodInfo is one entry of the method list.
type MethodInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
	Code            *CodeAttribute // nil for native/abstract methods
}

// ExceptionTableEntry is one row of a Code attribute's exception table.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // 0 means "catches everything" (finally)
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// CodeAttribute is the parsed form of a method's Code attribute.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	LineNumbers    []LineNumberEntry // from LineNumberTable, if present
	Attributes     []AttributeInfo   // nested attributes (StackMapTable, etc.)
}

// BootstrapMethod is one entry of the BootstrapMethods attribute.
type BootstrapMethod struct {
	MethodRefIndex uint16
	Arguments      []uint16
}

// AttributeInfo is a generic, name-tagged attribute. Attributes this decoder
// doesn't give structured treatment to (StackMapTable, InnerClasses,
// Signature, NestHost, NestMembers, PermittedSubclasses, Record,
// EnclosingMethod, and anything unrecognized) are kept as raw bytes and
// skipped using their declared length, per spec §4.1.
type AttributeInfo struct {
	NameIndex uint16
	Name      string
	Raw       []byte
}

// ClassFile is the Decoder's output: a structural tree with no cross-class
// knowledge and no validation beyond what's needed to produce well-formed
// indices (format checking proper -- e.g. "does this Fieldref point at a
// Fieldref target" -- is the ClassManager's job during linking).
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  uint16
	ThisClass    uint16 // CP index of a ConstantClass
	SuperClass   uint16 // 0 for java/lang/Object
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo

	SourceFile      string // from a SourceFile attribute, if present
	Deprecated      bool
	Synthetic       bool
	BootstrapMethods []BootstrapMethod
}

// ThisClassName returns the binary name this class file declares itself as.
func (c *ClassFile) ThisClassName() string {
	return c.ConstantPool.ClassName(c.ThisClass)
}

// SuperClassName returns the binary name of the superclass, or "" for
// java/lang/Object (SuperClass == 0).
func (c *ClassFile) SuperClassName() string {
	if c.SuperClass == 0 {
		return ""
	}
	return c.ConstantPool.ClassName(c.SuperClass)
}

// InterfaceNames returns the binary names of the directly-implemented
// interfaces, in declaration order.
func (c *ClassFile) InterfaceNames() []string {
	names := make([]string, len(c.Interfaces))
	for i, idx := range c.Interfaces {
		names[i] = c.ConstantPool.ClassName(idx)
	}
	return names
}
