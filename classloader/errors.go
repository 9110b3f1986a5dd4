/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "fmt"

// LinkageErrorKind distinguishes the linkage-error shapes named in spec §7:
// class-not-found, unresolved super, circular required dependency, missing
// constant-pool referent, and a failed malformed-class decode/descriptor
// parse bubbled up from the Decoder or Descriptors components.
type LinkageErrorKind byte

const (
	ClassNotFound LinkageErrorKind = iota
	CircularDependency
	MalformedClass
	DescriptorError
	DanglingConstantPoolReference
	InitializationError
)

func (k LinkageErrorKind) String() string {
	switch k {
	case ClassNotFound:
		return "class not found"
	case CircularDependency:
		return "circular required dependency"
	case MalformedClass:
		return "malformed class"
	case DescriptorError:
		return "descriptor error"
	case DanglingConstantPoolReference:
		return "dangling constant pool reference"
	case InitializationError:
		return "initialization error"
	default:
		return "linkage error"
	}
}

// LinkageError is returned by Manager.Load and friends for every failure
// mode the load/link/initialize algorithm can hit.
type LinkageError struct {
	Kind      LinkageErrorKind
	ClassName string
	Cause     error
}

func (e *LinkageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.ClassName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.ClassName)
}

func (e *LinkageError) Unwrap() error { return e.Cause }

func classNotFound(name string, cause error) error {
	return &LinkageError{Kind: ClassNotFound, ClassName: name, Cause: cause}
}

func circularDependency(name string) error {
	return &LinkageError{Kind: CircularDependency, ClassName: name}
}

func malformedClass(name string, cause error) error {
	return &LinkageError{Kind: MalformedClass, ClassName: name, Cause: cause}
}

func descriptorError(name string, cause error) error {
	return &LinkageError{Kind: DescriptorError, ClassName: name, Cause: cause}
}

func danglingReference(name string, cause error) error {
	return &LinkageError{Kind: DanglingConstantPoolReference, ClassName: name, Cause: cause}
}

func initializationError(name string, cause error) error {
	return &LinkageError{Kind: InitializationError, ClassName: name, Cause: cause}
}
