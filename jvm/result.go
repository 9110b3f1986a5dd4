/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package jvm is the Interpreter (spec §4.5): opcode decoding and dispatch
// over a Thread's frame stack, driven by a VM that wires together a
// classloader.Manager, a frame.ThreadManager, and the gfunction native
// registry. Grounded on original_source/vm/src/opcode/*.rs (the per-family
// opcode implementations and their InstructionSuccess/InstructionError
// result shape) and on artipop-jacobin's jvm package naming (run/instantiate
// style), re-expressed around this repository's tagged-struct Slot/Frame
// model instead of Rust enums.
package jvm

// ResultKind is the five-way outcome every opcode handler reports, matching
// original_source/vm/src/opcode/mod.rs's InstructionSuccess exactly (spec
// §4.5: "every opcode returns one of {Next, RelativeJump, AbsoluteJump,
// FrameChanged, Completed}").
type ResultKind byte

const (
	// Next advances pc by N bytes -- the width of the instruction just
	// executed, including its opcode byte and any immediate operands.
	Next ResultKind = iota

	// RelativeJump adds the signed N to pc, measured from the start of the
	// branching instruction (JVMS branch-offset convention).
	RelativeJump

	// AbsoluteJump sets pc to N outright (used by `ret`, whose target is a
	// saved pc; tableswitch/lookupswitch offsets are relative to the
	// instruction's own start and are returned as RelativeJump).
	AbsoluteJump

	// FrameChanged reports that the opcode itself pushed or popped a frame
	// (invoke* or *return); N is the pc the now-current frame should resume
	// at. The dispatch loop must not also add N to the old frame's pc.
	FrameChanged

	// Completed reports that the last frame on the thread's stack was just
	// popped by a *return with no invoker left to resume -- the thread is
	// done.
	Completed
)

// Result is the value every opcode handler returns.
type Result struct {
	Kind ResultKind
	N    int
}
