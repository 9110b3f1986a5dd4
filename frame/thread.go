/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frame

import "sync"

// State is a thread's position in the small FSA described in spec §4.5:
// "Ready -> Running -> (Completed | Faulted)".
type State byte

const (
	Ready State = iota
	Running
	Completed
	Faulted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Faulted:
		return "Faulted"
	default:
		return "?"
	}
}

// Thread owns an ordered stack of activation frames and the one FSA field
// that tracks whether the interpreter's dispatch loop is still driving it
// (spec §4.5, §5: "the specified core is single-threaded cooperative at the
// interpreter level -- one dispatch loop drives one frame stack to
// completion"). The jvm package's dispatch loop is what actually advances
// State; Thread itself only exposes the stack operations and records the
// final Fault, if any.
type Thread struct {
	ID    int
	State State
	stack []*Frame
	Fault error
}

// NewThread returns a Ready thread with an empty frame stack.
func NewThread(id int) *Thread {
	return &Thread{ID: id, State: Ready}
}

// PushFrame makes f the new top frame.
func (t *Thread) PushFrame(f *Frame) { t.stack = append(t.stack, f) }

// PopFrame removes and returns the top frame, or nil if the stack is empty.
func (t *Thread) PopFrame() *Frame {
	n := len(t.stack)
	if n == 0 {
		return nil
	}
	f := t.stack[n-1]
	t.stack = t.stack[:n-1]
	return f
}

// CurrentFrame returns the top frame, or nil if the stack is empty (an
// empty stack after Running means the thread has Completed).
func (t *Thread) CurrentFrame() *Frame {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// Depth reports how many frames are currently on the stack.
func (t *Thread) Depth() int { return len(t.stack) }

// Frames returns the stack bottom-to-top, for diagnostic tooling (the TUI
// inspector's frame view). Callers must not mutate the returned slice.
func (t *Thread) Frames() []*Frame { return t.stack }

// Reset clears the frame stack and returns the thread to Ready, for reuse
// as the "fresh transient thread" the ClassManager spins up to run a
// class's `<clinit>` (spec §4.3).
func (t *Thread) Reset() {
	t.stack = t.stack[:0]
	t.State = Ready
	t.Fault = nil
}

// ThreadManager is the extension point spec §5 describes for additional
// interpreter threads ("the spec permits a single interpreter thread;
// primitives for additional threads are an extension"). The core itself
// only ever asks for one thread at a time (the main thread, and one fresh
// transient thread per `<clinit>`); ThreadManager exists so a host adding
// real concurrency has a single place to register and look threads up by
// id rather than threading a slice through every call site.
//
// Registration is guarded by a mutex because cmd/jacobin/inspect registers
// and drives a thread on one goroutine while polling All() for its TUI
// render loop on another -- the one place in this core where two goroutines
// genuinely touch the same state concurrently.
type ThreadManager struct {
	mu      sync.Mutex
	threads []*Thread
	nextID  int
}

// NewThreadManager returns an empty manager.
func NewThreadManager() *ThreadManager {
	return &ThreadManager{}
}

// NewThread allocates and registers a fresh thread.
func (tm *ThreadManager) NewThread() *Thread {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	t := NewThread(tm.nextID)
	tm.nextID++
	tm.threads = append(tm.threads, t)
	return t
}

// Get returns the thread registered under id, if any.
func (tm *ThreadManager) Get(id int) (*Thread, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, t := range tm.threads {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// All returns every registered thread, for use by diagnostic tooling (the
// TUI inspector's thread view).
func (tm *ThreadManager) All() []*Thread {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	out := make([]*Thread, len(tm.threads))
	copy(out, tm.threads)
	return out
}
