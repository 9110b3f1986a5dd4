/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classloader is the ClassManager component (spec §4.3): it drives
// the load -> resolve -> link -> initialize state machine, owns the class
// table, and assigns class identifiers. It is grounded on
// original_source/vm/src/class_manager.rs (the work-list algorithm) and
// class.rs (the Class/Field/Method runtime records), re-expressed with a
// Manager struct owning the class table instead of package-level globals so
// a process can run more than one VM instance.
package classloader

import (
	"jacobin/classfile"
	"jacobin/descriptor"
	"jacobin/object"
	"jacobin/types"
)

// State is a class's position in the forward-only load/link/init lifecycle
// (spec §3 Lifecycle / §4.3 Algorithm). Failed is reachable from every
// other state and is terminal.
type State byte

const (
	Unknown State = iota
	Resolved
	Linking
	Loaded
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "Unknown"
	case Resolved:
		return "Resolved"
	case Linking:
		return "Linking"
	case Loaded:
		return "Loaded"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "?"
	}
}

// InitState tracks `<clinit>` execution, kept distinct from the coarser
// load/link State because a class can sit in State == Done for its entire
// remaining lifetime while InitState only matters during the one
// NotYet -> InProgress -> Done|Failed transition (spec §4.4).
type InitState byte

const (
	NotYetInitialized InitState = iota
	InProgress
	InitDone
	InitFailed
)

// Field is the runtime record for one declared field (spec §3). Static
// fields hold their live value in CurrentValue; instance fields only use
// CurrentValue as the default value copied into every new instance's
// Fields slice at the matching Index.
type Field struct {
	Name       string
	Descriptor descriptor.FieldType
	Flags      uint16

	// Index is the flat offset into every instance's Object.Fields slice,
	// superclass fields first (spec §3). It is -1 for static fields, which
	// instead keep their live value in CurrentValue on this record.
	Index        int
	CurrentValue object.Slot
}

func (f *Field) IsStatic() bool { return f.Flags&classfile.AccStatic != 0 }
func (f *Field) IsFinal() bool  { return f.Flags&classfile.AccFinal != 0 }

// Method is the runtime record for one declared method (spec §3). Code is
// nil for native and abstract methods.
type Method struct {
	Name       string
	Descriptor descriptor.MethodType
	Flags      uint16
	Code       *classfile.CodeAttribute
}

func (m *Method) IsStatic() bool       { return m.Flags&classfile.AccStatic != 0 }
func (m *Method) IsNative() bool       { return m.Flags&classfile.AccNative != 0 }
func (m *Method) IsAbstract() bool     { return m.Flags&classfile.AccAbstract != 0 }
func (m *Method) IsPrivate() bool      { return m.Flags&classfile.AccPrivate != 0 }
func (m *Method) IsFinal() bool        { return m.Flags&classfile.AccFinal != 0 }

// Class is the fully-linked runtime form of a class (spec §3). The field
// and method slices are immutable after linking except for the
// CurrentValue of static Field entries.
type Class struct {
	ID         types.ClassID
	BinaryName string
	Flags      uint16
	SuperID    types.ClassID // types.InvalidClassID for java/lang/Object
	SuperName  string
	InterfaceIDs []types.ClassID

	ConstantPool *RuntimeConstantPool
	Fields       []Field
	Methods      []Method

	State     State
	InitState InitState

	// NumInstanceFields is the flattened instance-field count across this
	// class and every superclass, i.e. the size every Object of this class
	// allocates for its Fields slice (superclass fields first).
	NumInstanceFields int
}

func (c *Class) IsInterface() bool { return c.Flags&classfile.AccInterface != 0 }
func (c *Class) IsAbstract() bool  { return c.Flags&classfile.AccAbstract != 0 }

// FindMethod returns the index and record of the first declared method
// matching name+descriptor, searching this class only (not its ancestors).
func (c *Class) FindMethod(name string, desc descriptor.MethodType) (int, *Method, bool) {
	for i := range c.Methods {
		m := &c.Methods[i]
		if m.Name == name && m.Descriptor.Equal(desc) {
			return i, m, true
		}
	}
	return -1, nil, false
}

// FindField returns the index and record of the first declared field
// matching name, searching this class only.
func (c *Class) FindField(name string) (int, *Field, bool) {
	for i := range c.Fields {
		f := &c.Fields[i]
		if f.Name == name {
			return i, f, true
		}
	}
	return -1, nil, false
}
