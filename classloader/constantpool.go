/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"jacobin/descriptor"
	"jacobin/types"
)

// CPEntryKind discriminates the runtime constant-pool entry variants named
// in spec §3, mirroring original_source/vm/src/constant_pool.rs's
// ConstantPoolEntry enum re-expressed as a tagged struct (the idiom this
// repository uses throughout in place of interface{} unions).
type CPEntryKind byte

const (
	CPInt CPEntryKind = iota
	CPLong
	CPFloat
	CPDouble
	CPString
	CPClass
	CPArrayClass
	CPFieldRef
	CPMethodRef
	CPInterfaceMethodRef
	CPMethodHandle
	CPMethodType
)

// CPEntry is one dense entry of a runtime constant pool. Only the fields
// relevant to Kind are populated; the rest are zero.
type CPEntry struct {
	Kind CPEntryKind

	Int    int32
	Long   int64
	Float  float32
	Double float64

	// StringIdx is valid iff Kind == CPString: the stringpool index of the
	// interned constant. Building an actual java/lang/String heap object
	// eagerly here would require java/lang/String to already be Done, which
	// is circular for java/lang/String's own constant pool; `ldc` pushes
	// this index as an int slot and no java/lang/String object is built.
	StringIdx uint32

	// ClassID is valid iff Kind == CPClass: the resolved class id of the
	// named class.
	ClassID types.ClassID

	// ArrayType is valid iff Kind == CPArrayClass: the parsed array type
	// named by the reference (e.g. `[I`, `[Ljava/lang/String;`).
	ArrayType *descriptor.FieldType

	// Owner/Name/Descriptor are valid iff Kind is one of CPFieldRef,
	// CPMethodRef, CPInterfaceMethodRef: {owner_id, name, descriptor} per
	// spec §3.
	Owner      types.ClassID
	Name       string
	Descriptor string

	// MHKind/MHTarget are valid iff Kind == CPMethodHandle: the reference
	// kind (JVMS 4.4.8 Table 5.1) and the raw constant-pool index of its
	// target, kept unresolved per spec §4.3/§9 ("MethodHandle/MethodType
	// runtime semantics ... specified only to the constant-pool shape").
	MHKind   uint8
	MHTarget uint16
}

// RuntimeConstantPool is the dense, linked form of a class's constant pool:
// an array of entries plus an index_map from the 1-based raw class-file
// index (with the tombstone gaps after Long/Double) to a dense position
// (spec §3/§4.4). It always preserves the ability to dereference by raw
// index, since bytecode immediates name constants by raw index for the
// lifetime of the method.
type RuntimeConstantPool struct {
	Entries  []CPEntry
	IndexMap []int // IndexMap[rawIndex] -> position in Entries; IndexMap[0] is unused
}

// noEntry marks a raw index that maps to nothing dereferenceable: index 0
// (never assigned by the class-file format) or the tombstone gap after a
// Long/Double raw entry.
const noEntry = -1

// NewRuntimeConstantPool returns an empty pool with index 0 reserved, as the
// class-file format never assigns it.
func NewRuntimeConstantPool() *RuntimeConstantPool {
	return &RuntimeConstantPool{IndexMap: []int{noEntry}}
}

// append records entry as the next dense entry and maps the just-consumed
// raw index onto it.
func (cp *RuntimeConstantPool) append(entry CPEntry) {
	cp.Entries = append(cp.Entries, entry)
	cp.IndexMap = append(cp.IndexMap, len(cp.Entries)-1)
}

// appendTombstoneMapping maps a raw index to nothing dereferenceable --
// used for the gap after a Long/Double raw entry.
func (cp *RuntimeConstantPool) appendTombstoneMapping() {
	cp.IndexMap = append(cp.IndexMap, noEntry)
}

// Get dereferences a raw (class-file) constant-pool index, returning false
// if it is out of range or names a tombstone gap.
func (cp *RuntimeConstantPool) Get(rawIndex int) (CPEntry, bool) {
	if rawIndex <= 0 || rawIndex >= len(cp.IndexMap) {
		return CPEntry{}, false
	}
	pos := cp.IndexMap[rawIndex]
	if pos < 0 || pos >= len(cp.Entries) {
		return CPEntry{}, false
	}
	return cp.Entries[pos], true
}
