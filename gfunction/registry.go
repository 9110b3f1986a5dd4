/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gfunction is the native-method registry (spec §4.5's "native
// methods are an extension point"): a table from a method's fully-qualified
// signature to a Go function that implements it directly, bypassing the
// bytecode interpreter entirely. Grounded on
// artipop-jacobin/src/gfunction's MethodSignatures/GMeth pattern -- the key
// format ("class/name.method(descriptor)") and the per-class Load_X()
// registration functions are kept, but GFunction's signature is re-expressed
// over *frame.Thread and []object.Slot instead of []interface{}, matching
// this repository's tagged-struct-over-interface{} idiom.
package gfunction

import (
	"jacobin/frame"
	"jacobin/object"
)

// NativeFunc implements one native method. args holds exactly ParamSlots
// popped operands, in left-to-right declared order (the receiver, for an
// instance method, is args[0]); the return Slot is ignored by the caller for
// a void method.
type NativeFunc func(th *frame.Thread, args []object.Slot) (object.Slot, error)

// GMeth pairs a native implementation with the number of operand-stack
// slots the invocation protocol must pop to build its argument list (spec
// §4.5: wide arguments count as one slot each here, matching every other
// ParamSlots-style count in this codebase's invocation machinery).
type GMeth struct {
	ParamSlots int
	GFunction  NativeFunc
}

// Registry is the live method-signature table for one VM instance.
type Registry struct {
	methods map[string]GMeth
}

// NewRegistry builds a Registry with every native this core ships wired in.
func NewRegistry() *Registry {
	r := &Registry{methods: make(map[string]GMeth)}
	r.loadLangObject()
	r.loadLangSystem()
	r.loadIoPrintStream()
	r.loadLangThrowable()
	return r
}

// Lookup returns the native registered under key ("owner/binary/Name.method(desc)").
func (r *Registry) Lookup(key string) (GMeth, bool) {
	m, ok := r.methods[key]
	return m, ok
}

// register is the per-file helper every loadX function calls.
func (r *Registry) register(key string, paramSlots int, fn NativeFunc) {
	r.methods[key] = GMeth{ParamSlots: paramSlots, GFunction: fn}
}

// justReturn is wired to natives whose entire contract is "do nothing"
// (registerNatives-style JNI bootstrap hooks).
func justReturn(_ *frame.Thread, _ []object.Slot) (object.Slot, error) {
	return object.Slot{}, nil
}
