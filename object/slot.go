/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package object holds the JVM's runtime value and heap-cell model: Slot (the
// tagged value that lives on an operand stack, in a locals array, or inside a
// heap object/array), Object, Array, and Field. None of these types import
// package classloader; they refer to classes only through types.ClassID, so
// the dependency runs one way (classloader -> object), never back.
package object

// Kind discriminates the variant a Slot currently holds. Modeled as a tagged
// struct rather than interface{} (spec §3: "a tagged union, not interface{},
// so a missed case is a compile error"): every call site that only handles
// some kinds can exhaustively switch on Kind and the compiler/vet will flag
// a fallthrough gap instead of silently boxing the wrong type.
type Kind byte

const (
	KindInt Kind = iota
	KindLong
	KindFloat
	KindDouble
	KindObjectRef
	KindArrayRef
	KindNullRef
	KindReturnAddress
	KindInvocationReturn
	KindTombstone
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindObjectRef:
		return "object-ref"
	case KindArrayRef:
		return "array-ref"
	case KindNullRef:
		return "null-ref"
	case KindReturnAddress:
		return "return-address"
	case KindInvocationReturn:
		return "invocation-return"
	case KindTombstone:
		return "tombstone"
	default:
		return "unknown"
	}
}

// HeapRef is implemented by the two heap-cell types a reference Slot can
// point at. It exists so Slot can carry a single typed field for both kinds
// instead of two separate (and usually nil) pointer fields.
type HeapRef interface {
	isHeapRef()
}

// Slot is the single value type that flows through locals arrays, operand
// stacks, and object/array storage cells (spec §3). Long and Double values
// are "wide": they occupy two consecutive slots/cells, the second of which
// holds a KindTombstone placeholder so index arithmetic over a locals array
// stays uniform regardless of which values are wide.
type Slot struct {
	Kind Kind

	I32 int32   // KindInt
	I64 int64   // KindLong, KindReturnAddress, KindInvocationReturn (frame pc to resume at)
	F32 float32 // KindFloat
	F64 float64 // KindDouble

	Ref HeapRef // KindObjectRef, KindArrayRef (nil means this reference is actually null)
}

// Size reports how many consecutive slots/cells this value occupies: 2 for
// Long and Double, 1 for everything else, including Tombstone (the
// tombstone itself is the second half of a wide value's footprint).
func (s Slot) Size() int {
	if s.Kind == KindLong || s.Kind == KindDouble {
		return 2
	}
	return 1
}

// IsWide reports whether s is the first half of a two-slot Long/Double value.
func (s Slot) IsWide() bool {
	return s.Kind == KindLong || s.Kind == KindDouble
}

// IsNull reports whether s is a reference slot (object or array) whose
// referent is null, or the dedicated null-reference kind produced by
// `aconst_null`.
func (s Slot) IsNull() bool {
	if s.Kind == KindNullRef {
		return true
	}
	if (s.Kind == KindObjectRef || s.Kind == KindArrayRef) && s.Ref == nil {
		return true
	}
	return false
}

// Tombstone returns the placeholder occupying the second cell of a wide
// value's footprint.
func Tombstone() Slot { return Slot{Kind: KindTombstone} }

// IntSlot builds an int-valued slot (`iconst`/`bipush`/et al. category).
func IntSlot(v int32) Slot { return Slot{Kind: KindInt, I32: v} }

// LongSlot builds a Long-valued slot. Callers must follow it with Tombstone()
// when storing into a locals array; on the operand stack it is one entry.
func LongSlot(v int64) Slot { return Slot{Kind: KindLong, I64: v} }

// FloatSlot builds a Float-valued slot.
func FloatSlot(v float32) Slot { return Slot{Kind: KindFloat, F32: v} }

// DoubleSlot builds a Double-valued slot. Callers must follow it with
// Tombstone() when storing into a locals array; on the operand stack it is
// one entry.
func DoubleSlot(v float64) Slot { return Slot{Kind: KindDouble, F64: v} }

// NullSlot is the value `aconst_null` pushes.
func NullSlot() Slot { return Slot{Kind: KindNullRef} }

// ObjectRefSlot wraps a live object pointer as a reference slot.
func ObjectRefSlot(o *Object) Slot {
	if o == nil {
		return NullSlot()
	}
	return Slot{Kind: KindObjectRef, Ref: o}
}

// ArrayRefSlot wraps a live array pointer as a reference slot.
func ArrayRefSlot(a *Array) Slot {
	if a == nil {
		return NullSlot()
	}
	return Slot{Kind: KindArrayRef, Ref: a}
}

// ReturnAddressSlot builds the value a `jsr` pushes: the bytecode offset to
// resume at once the subroutine's `ret` runs. Retained for class files
// compiled against pre-J2SE-5 semantics; the interpreter itself never emits
// one on its own account.
func ReturnAddressSlot(pc uint32) Slot { return Slot{Kind: KindReturnAddress, I64: int64(pc)} }

// InvocationReturnSlot builds the marker `invoke*` pushes onto the
// *invoker's* operand stack immediately before transferring control to the
// callee (spec §4.5 invocation protocol / §3 Slot: "InvocationReturn(u32) is
// internal plumbing -- return PC pushed by the invoker"). It carries only
// the PC to resume at; `*return` pops it back off the invoker's stack, push
// the callee's result above it (if non-void), and jumps there.
func InvocationReturnSlot(resumePC uint32) Slot {
	return Slot{Kind: KindInvocationReturn, I64: int64(resumePC)}
}

// ResumePC extracts the stashed PC from a ReturnAddress or InvocationReturn
// slot. It panics if s is neither kind; callers only call it right after
// checking s.Kind.
func (s Slot) ResumePC() uint32 {
	if s.Kind != KindReturnAddress && s.Kind != KindInvocationReturn {
		panic("object: ResumePC called on a slot that is not a return address")
	}
	return uint32(s.I64)
}
