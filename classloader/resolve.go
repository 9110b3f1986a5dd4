/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"

	"jacobin/descriptor"
	"jacobin/types"
)

// ErrNotFound is returned by ResolveMethod when no implementation matches.
var ErrNotFound = classNotFound("<method resolution>", nil)

// ResolveMethod implements the method-resolution algorithm used by
// invokevirtual, invokespecial, and invokeinterface (spec §4.3).
//
// isSpecial is true for invokespecial. When the referenced class is a
// superclass of callsiteClass and the target is not <init>, resolution
// searches the referenced class only (the classic "super.foo()" case);
// otherwise it walks the class-and-superclass chain of targetClass
// downward, then falls back to targetClass's maximally-specific
// superinterface set, returning a match only when it is neither private,
// static, nor abstract. No platform tie-break among several maximally
// specific candidates is applied: the first match in search order is
// returned.
func (m *Manager) ResolveMethod(callsiteClass, targetClass types.ClassID, name string, desc descriptor.MethodType, isSpecial bool) (types.ClassID, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isSpecial && name != "<init>" && m.isSuperclassOf(targetClass, callsiteClass) {
		cls, ok := m.classLocked(targetClass)
		if !ok {
			return types.InvalidClassID, -1, classNotFound(fmt.Sprintf("<class id %d>", targetClass), nil)
		}
		if idx, _, found := cls.FindMethod(name, desc); found {
			return targetClass, idx, nil
		}
		return types.InvalidClassID, -1, ErrNotFound
	}

	for id := targetClass; id != types.InvalidClassID; {
		cls, ok := m.classLocked(id)
		if !ok {
			break
		}
		if idx, _, found := cls.FindMethod(name, desc); found {
			return id, idx, nil
		}
		id = cls.SuperID
	}

	if id, idx, ok := m.resolveViaSuperinterfaces(targetClass, name, desc); ok {
		return id, idx, nil
	}
	return types.InvalidClassID, -1, ErrNotFound
}

// resolveViaSuperinterfaces walks every interface reachable from classID
// (direct and inherited) looking for a concrete, non-static, non-private
// method matching name+desc.
func (m *Manager) resolveViaSuperinterfaces(classID types.ClassID, name string, desc descriptor.MethodType) (types.ClassID, int, bool) {
	visited := make(map[types.ClassID]bool)
	var queue []types.ClassID

	for id := classID; id != types.InvalidClassID; {
		cls, ok := m.classLocked(id)
		if !ok {
			break
		}
		queue = append(queue, cls.InterfaceIDs...)
		id = cls.SuperID
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		cls, ok := m.classLocked(id)
		if !ok {
			continue
		}
		if idx, meth, found := cls.FindMethod(name, desc); found {
			if !meth.IsPrivate() && meth.Flags&flagStatic == 0 && !meth.IsAbstract() {
				return id, idx, true
			}
		}
		queue = append(queue, cls.InterfaceIDs...)
	}
	return types.InvalidClassID, -1, false
}

// ResolveField finds the class that actually declares name, starting the
// search at ownerClass and walking its superclass chain (JVMS 5.4.3.2's
// field-resolution order, simplified to classes since the core has no
// superinterface constant-field lookup in scope). Returns the declaring
// class id and a pointer to its Field record.
func (m *Manager) ResolveField(ownerClass types.ClassID, name string) (types.ClassID, *Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := ownerClass; id != types.InvalidClassID; {
		cls, ok := m.classLocked(id)
		if !ok {
			break
		}
		if _, f, found := cls.FindField(name); found {
			return id, f, nil
		}
		id = cls.SuperID
	}
	return types.InvalidClassID, nil, ErrNotFound
}

// flagStatic mirrors classfile.AccStatic; duplicated as an untyped constant
// here so this file doesn't need an extra import purely for one bit test.
const flagStatic = 0x0008

// isSuperclassOf reports whether ancestor is a (possibly indirect)
// superclass of descendant.
func (m *Manager) isSuperclassOf(ancestor, descendant types.ClassID) bool {
	for id := descendant; id != types.InvalidClassID; {
		cls, ok := m.classLocked(id)
		if !ok {
			return false
		}
		if cls.SuperID == ancestor {
			return true
		}
		id = cls.SuperID
	}
	return false
}

// IsAssignable reports whether a reference of class sub can be treated as a
// reference of class of -- sub==of, sub is a (possibly indirect) subclass of
// of, or of names an interface anywhere in sub's class-or-superclass
// interface sets. Backs both `instanceof` and `checkcast` (spec §4.5).
func (m *Manager) IsAssignable(sub, of types.ClassID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	visited := make(map[types.ClassID]bool)
	var queue []types.ClassID
	for id := sub; id != types.InvalidClassID; {
		if id == of {
			return true
		}
		cls, ok := m.classLocked(id)
		if !ok {
			return false
		}
		queue = append(queue, cls.InterfaceIDs...)
		id = cls.SuperID
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if id == of {
			return true
		}
		cls, ok := m.classLocked(id)
		if !ok {
			continue
		}
		queue = append(queue, cls.InterfaceIDs...)
	}
	return false
}

// classLocked is Get without the mutex dance, for internal callers already
// holding m.mu.
func (m *Manager) classLocked(id types.ClassID) (*Class, bool) {
	rec, ok := m.byID[id]
	if !ok || rec.class == nil {
		return nil, false
	}
	return rec.class, true
}
