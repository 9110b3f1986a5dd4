/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package frame holds the interpreter's per-thread activation-frame stack
// (spec §4.5): Frame (locals + operand stack + pc for one method
// invocation) and Thread (an ordered frame stack plus the
// Ready -> Running -> Completed|Faulted FSA). Grounded on
// original_source/vm/src/thread.rs's Thread/Frame pair, except that here pc
// lives on the Frame itself rather than a single Thread-wide field, matching
// spec §4.5's literal data model ("Frame: { class_id, method_index, pc,
// locals, operand_stack }") so a FrameChanged result never has to save and
// restore a shared counter across frame switches.
package frame

import (
	"jacobin/object"
	"jacobin/types"
)

// Frame is one method activation: the owning class+method, the current
// bytecode offset, and its exclusively-owned locals and operand stack
// (spec §3 Lifecycle: "owns its operand stack and local-variable array
// exclusively").
type Frame struct {
	ClassID      types.ClassID
	MethodIndex  int
	PC           int
	Locals       []object.Slot
	OperandStack []object.Slot
}

// NewFrame allocates a frame with maxLocals local-variable cells, all
// initialized to Tombstone (spec §3: "instance-field... the field order
// matches"; for locals, an un-stored cell has no meaningful value until an
// argument or a store opcode populates it), and an empty operand stack.
func NewFrame(classID types.ClassID, methodIndex int, maxLocals int) *Frame {
	locals := make([]object.Slot, maxLocals)
	for i := range locals {
		locals[i] = object.Tombstone()
	}
	return &Frame{
		ClassID:     classID,
		MethodIndex: methodIndex,
		Locals:      locals,
	}
}

// Push appends v to the top of the operand stack.
func (f *Frame) Push(v object.Slot) {
	f.OperandStack = append(f.OperandStack, v)
}

// Pop removes and returns the top of the operand stack. It panics on an
// empty stack; the interpreter is expected to have validated stack depth
// against max_stack before calling opcodes that pop (spec §3 invariant).
func (f *Frame) Pop() object.Slot {
	n := len(f.OperandStack)
	v := f.OperandStack[n-1]
	f.OperandStack = f.OperandStack[:n-1]
	return v
}

// Peek returns the top of the operand stack without removing it.
func (f *Frame) Peek() object.Slot {
	return f.OperandStack[len(f.OperandStack)-1]
}

// Depth reports the current operand-stack depth, counting a wide value as
// one logical slot (spec §3: "on the operand stack they occupy one logical
// slot but report size 2" refers to local-variable footprint, not stack
// depth -- max_stack is defined over logical slot count).
func (f *Frame) Depth() int { return len(f.OperandStack) }

// GetLocal returns the slot at index, or false if index is out of range.
func (f *Frame) GetLocal(index int) (object.Slot, bool) {
	if index < 0 || index >= len(f.Locals) {
		return object.Slot{}, false
	}
	return f.Locals[index], true
}

// SetLocal stores v at index. For a wide value (Long/Double), the caller
// must also write a Tombstone at index+1; SetLocal itself only ever writes
// the single cell asked for, matching the interpreter's store opcodes which
// issue the Tombstone write as a distinct, explicit step (spec §3: "A
// Long/Double value in local variables is always followed by a Tombstone").
func (f *Frame) SetLocal(index int, v object.Slot) bool {
	if index < 0 || index >= len(f.Locals) {
		return false
	}
	f.Locals[index] = v
	return true
}
