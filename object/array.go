/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"fmt"

	"jacobin/descriptor"
	"jacobin/types"
)

// ElemKind discriminates which of Array's backing slices is live. Arrays are
// a discriminated union over the eight primitive element types plus two
// reference kinds (spec §3), rather than a single []Slot, so that a byte[]
// of a million elements costs a million bytes and not a million 40-byte
// Slot structs.
type ElemKind byte

const (
	ElemBoolean ElemKind = iota
	ElemByte
	ElemChar
	ElemShort
	ElemInt
	ElemLong
	ElemFloat
	ElemDouble
	ElemObject
	ElemArray
)

func (k ElemKind) String() string {
	switch k {
	case ElemBoolean:
		return "boolean"
	case ElemByte:
		return "byte"
	case ElemChar:
		return "char"
	case ElemShort:
		return "short"
	case ElemInt:
		return "int"
	case ElemLong:
		return "long"
	case ElemFloat:
		return "float"
	case ElemDouble:
		return "double"
	case ElemObject:
		return "object"
	case ElemArray:
		return "array"
	default:
		return "unknown"
	}
}

// Array is a single fixed-length Java array instance. Exactly one backing
// slice is populated, chosen by ElemKind; the rest are left nil. Length is
// kept as its own field (rather than relying on len() of whichever slice is
// live) so Get/Set have one bounds check to perform regardless of kind.
type Array struct {
	ElemKind ElemKind
	Length   int

	Booleans []bool
	Bytes    []types.JavaByte
	Chars    []types.JavaChar
	Shorts   []int16
	Ints     []int32
	Longs    []int64
	Floats   []float32
	Doubles  []float64

	// Refs backs both ElemObject (object[]-like arrays) and ElemArray
	// (arrays of arrays); nil entries are null references.
	Refs []HeapRef

	// ElemClassID is valid iff ElemKind == ElemObject: every object-reference
	// array carries the class id of its declared element type, so a store
	// can be checked against it (spec §6 array-store-type-check edge case).
	ElemClassID types.ClassID

	// ElemType is valid iff ElemKind == ElemArray: a sub-array array carries
	// the full descriptor of its element array type (e.g. "[[I"'s elements
	// are "[I"), since one ElemKind alone can't distinguish an int[][] from
	// a String[][].
	ElemType *descriptor.FieldType
}

func (a *Array) isHeapRef() {}

// NewPrimitiveArray allocates a zero-initialized array of a primitive
// element kind. It panics if kind is ElemObject or ElemArray; use
// NewObjectArray or NewArrayOfArrays for those.
func NewPrimitiveArray(kind ElemKind, length int) *Array {
	a := &Array{ElemKind: kind, Length: length}
	switch kind {
	case ElemBoolean:
		a.Booleans = make([]bool, length)
	case ElemByte:
		a.Bytes = make([]types.JavaByte, length)
	case ElemChar:
		a.Chars = make([]types.JavaChar, length)
	case ElemShort:
		a.Shorts = make([]int16, length)
	case ElemInt:
		a.Ints = make([]int32, length)
	case ElemLong:
		a.Longs = make([]int64, length)
	case ElemFloat:
		a.Floats = make([]float32, length)
	case ElemDouble:
		a.Doubles = make([]float64, length)
	default:
		panic(fmt.Sprintf("object.NewPrimitiveArray: not a primitive kind: %v", kind))
	}
	return a
}

// NewObjectArray allocates a zero-initialized (all-null) array whose
// elements are references to instances of elemClassID.
func NewObjectArray(elemClassID types.ClassID, length int) *Array {
	return &Array{
		ElemKind:    ElemObject,
		Length:      length,
		Refs:        make([]HeapRef, length),
		ElemClassID: elemClassID,
	}
}

// NewArrayOfArrays allocates a zero-initialized (all-null) array whose
// elements are themselves arrays of elemType.
func NewArrayOfArrays(elemType *descriptor.FieldType, length int) *Array {
	return &Array{
		ElemKind: ElemArray,
		Length:   length,
		Refs:     make([]HeapRef, length),
		ElemType: elemType,
	}
}

// boundsError formats the out-of-bounds errors every accessor below returns.
func boundsError(index, length int) error {
	return fmt.Errorf("array index out of bounds: index %d, length %d", index, length)
}

// GetSlot reads element index as a Slot, regardless of the array's backing
// kind, for use by the interpreter's `*aload` family.
func (a *Array) GetSlot(index int) (Slot, error) {
	if index < 0 || index >= a.Length {
		return Slot{}, boundsError(index, a.Length)
	}
	switch a.ElemKind {
	case ElemBoolean:
		v := int32(0)
		if a.Booleans[index] {
			v = 1
		}
		return IntSlot(v), nil
	case ElemByte:
		return IntSlot(int32(a.Bytes[index])), nil
	case ElemChar:
		return IntSlot(int32(a.Chars[index])), nil
	case ElemShort:
		return IntSlot(int32(a.Shorts[index])), nil
	case ElemInt:
		return IntSlot(a.Ints[index]), nil
	case ElemLong:
		return LongSlot(a.Longs[index]), nil
	case ElemFloat:
		return FloatSlot(a.Floats[index]), nil
	case ElemDouble:
		return DoubleSlot(a.Doubles[index]), nil
	case ElemObject, ElemArray:
		ref := a.Refs[index]
		if ref == nil {
			return NullSlot(), nil
		}
		if a.ElemKind == ElemObject {
			return Slot{Kind: KindObjectRef, Ref: ref}, nil
		}
		return Slot{Kind: KindArrayRef, Ref: ref}, nil
	default:
		return Slot{}, fmt.Errorf("array has unknown element kind %v", a.ElemKind)
	}
}

// SetSlot stores v into element index, for use by the interpreter's
// `*astore` family. It does not re-validate v's runtime type against the
// array's declared element type beyond what the Kind switch enforces; full
// array-store checking against ElemClassID is the caller's responsibility.
func (a *Array) SetSlot(index int, v Slot) error {
	if index < 0 || index >= a.Length {
		return boundsError(index, a.Length)
	}
	switch a.ElemKind {
	case ElemBoolean:
		a.Booleans[index] = v.I32 != 0
	case ElemByte:
		a.Bytes[index] = types.JavaByte(v.I32)
	case ElemChar:
		a.Chars[index] = types.JavaChar(v.I32)
	case ElemShort:
		a.Shorts[index] = int16(v.I32)
	case ElemInt:
		a.Ints[index] = v.I32
	case ElemLong:
		a.Longs[index] = v.I64
	case ElemFloat:
		a.Floats[index] = v.F32
	case ElemDouble:
		a.Doubles[index] = v.F64
	case ElemObject, ElemArray:
		if v.IsNull() {
			a.Refs[index] = nil
		} else {
			a.Refs[index] = v.Ref
		}
	default:
		return fmt.Errorf("array has unknown element kind %v", a.ElemKind)
	}
	return nil
}
