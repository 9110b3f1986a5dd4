/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package types holds scalar typedefs and sentinel constants shared across
// every other package, mirroring jacobin/types: small enough that giving it
// its own package avoids import cycles between classloader, object, and jvm.
package types

// JavaByte represents a single element of a Java byte array. It is a
// distinct type from Go's byte so that conversions to/from Java byte[] are
// always explicit at call sites.
type JavaByte int8

// JavaChar represents a single UTF-16 code unit, as stored in a Java char[].
type JavaChar uint16

// Field/method descriptor leading-letter constants (JVMS 4.3.2).
const (
	Byte    = "B"
	Char    = "C"
	Double  = "D"
	Float   = "F"
	Int     = "I"
	Long    = "J"
	Short   = "S"
	Boolean = "Z"
	Ref     = "L"
	Array   = "["
	Void    = "V"
)

// RefArray is the prefix for an array-of-reference-type descriptor, e.g. "[L".
const RefArray = "[L"

// InvalidStringIndex marks an absent/invalid index into the string pool.
const InvalidStringIndex = uint32(0xFFFFFFFF)

// ObjectPoolStringIndex is the string-pool index pre-interned for
// "java/lang/Object" during pool initialization.
const ObjectPoolStringIndex = uint32(1)

// StringPoolStringIndex is the string-pool index pre-interned for
// "java/lang/String".
const StringPoolStringIndex = uint32(2)

// ByteArray is the descriptor for a Java byte[].
const ByteArray = "[B"

// ClassID is the dense, process-unique integer the ClassManager assigns to a
// class on first sight of its name (spec §3). It lives here, rather than in
// package classloader, so that object and jvm can both refer to it without
// importing classloader (which itself depends on object).
type ClassID int32

// InvalidClassID marks the absence of a class id, e.g. the element class id
// of the String[] that RunMain passes to main.
const InvalidClassID ClassID = -1

// IsPrimitive reports whether a one-letter field-descriptor code names a
// primitive type (as opposed to "L" or "[").
func IsPrimitive(code string) bool {
	switch code {
	case Byte, Char, Double, Float, Int, Long, Short, Boolean:
		return true
	default:
		return false
	}
}
