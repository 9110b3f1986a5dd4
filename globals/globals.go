/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals bundles the process-wide, read-mostly configuration a VM
// instance needs: the classpath, the class-file version it targets, trace
// switches, and a function-pointer hook that lets deeply-nested code
// (the interpreter, mid-opcode) raise a VM exception without every
// intervening package importing a "throw" package and risking an import
// cycle. Per spec §9 ("mutable global state... lives on the VM, not in
// statics"), this struct is meant to be instantiated once per VM, not used
// as a package-level singleton in new code -- GetGlobalRef exists only for
// a caller that genuinely wants the older singleton-style access.
package globals

import "sync"

// MaxSupportedMajorVersion is the class-file major version this core
// targets (Java SE 17 == 61). classfile.Decode does not check a file's
// version against it.
const MaxSupportedMajorVersion = 61

// Globals is the process-wide configuration record.
type Globals struct {
	// JavaHome is unused by the core directly; kept for parity with the
	// classpath-enumerator collaborator, which may consult it to locate the
	// platform's own class library.
	JavaHome string

	// Classpath is the ordered list of roots the classpath reader searches.
	Classpath []string

	// MaxJavaVersionRaw records the class-file major version limit; the
	// decoder does not enforce it.
	MaxJavaVersionRaw int

	// TraceClass records the --trace-class switch; no class-loader code
	// reads it, so it produces no output.
	TraceClass bool

	// TraceInst records the --trace-inst switch; the interpreter does not
	// read it, so it produces no output.
	TraceInst bool

	// FuncThrowException is a hook for code that cannot itself return an
	// error up a deep call stack. The default implementation does nothing,
	// and no code in this core calls the hook.
	FuncThrowException func(excClassName, msg string)
}

var (
	once sync.Once
	ref  *Globals
)

// GetGlobalRef returns the process-wide Globals, constructing it with
// defaults on first use.
func GetGlobalRef() *Globals {
	once.Do(func() {
		ref = &Globals{
			MaxJavaVersionRaw:  MaxSupportedMajorVersion,
			FuncThrowException: func(string, string) {},
		}
	})
	return ref
}

// InitGlobals resets the process-wide Globals to fresh defaults; the `run`
// command calls it at startup so it does not inherit stale state.
func InitGlobals(javaHome string) *Globals {
	ref = &Globals{
		JavaHome:           javaHome,
		MaxJavaVersionRaw:  MaxSupportedMajorVersion,
		FuncThrowException: func(string, string) {},
	}
	return ref
}
