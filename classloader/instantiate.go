/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"

	"jacobin/object"
	"jacobin/types"
)

// NewInstance allocates a new instance of classID and lays out every
// instance field's JVMS default value at its flattened Object.Fields offset,
// walking the class's superclass chain the way `new` requires (spec §4.5
// `new`: "allocate, fields at JVMS defaults, push the reference -- <init> is
// a separate, explicit invokespecial"). Grounded on
// artipop-jacobin/src/jvm/instantiate.go's instantiateClass, re-expressed
// over the flat Fields/Index layout instead of an appended []Field slice.
func (m *Manager) NewInstance(classID types.ClassID) (*object.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cls, ok := m.classLocked(classID)
	if !ok {
		return nil, classNotFound(fmt.Sprintf("<class id %d>", classID), nil)
	}
	if cls.IsAbstract() || cls.IsInterface() {
		return nil, classNotFound(cls.BinaryName, fmt.Errorf("cannot instantiate an abstract class or interface"))
	}

	obj := object.NewObject(classID, cls.NumInstanceFields)
	for id := classID; id != types.InvalidClassID; {
		c, ok := m.classLocked(id)
		if !ok {
			break
		}
		for _, f := range c.Fields {
			if f.Index < 0 {
				continue // static
			}
			obj.SetField(f.Index, f.CurrentValue)
			if f.CurrentValue.IsWide() {
				obj.SetField(f.Index+1, object.Tombstone())
			}
		}
		id = c.SuperID
	}
	return obj, nil
}
