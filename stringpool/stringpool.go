/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package stringpool interns strings (class names, field/method names and
// descriptors, string-constant payloads) behind a dense uint32 index, so the
// runtime constant pool and object fields can carry a cheap integer instead
// of repeating the same class-name string on every field, method, and heap
// cell that references it.
package stringpool

import (
	"sync"

	"jacobin/types"
)

var (
	mu      sync.RWMutex
	strings []string
	index   map[string]uint32
)

func init() {
	reset()
}

func reset() {
	strings = make([]string, 0, 256)
	index = make(map[string]uint32)
	// Index 0 is reserved (left empty) so the two fixed-index classes the
	// core refers to by constant land at types.ObjectPoolStringIndex (1) and
	// types.StringPoolStringIndex (2), not 0 and 1.
	mustIntern("")
	mustIntern("java/lang/Object")
	mustIntern("java/lang/String")
}

func mustIntern(s string) uint32 {
	strings = append(strings, s)
	idx := uint32(len(strings) - 1)
	index[s] = idx
	return idx
}

// Reset clears the pool back to its initial three entries (the reserved ""
// at index 0 plus the two pre-interned class names). Exposed for
// tests that need a clean pool between VM instances.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reset()
}

// Intern returns the dense index for s, assigning a new one on first sight.
func Intern(s string) uint32 {
	mu.Lock()
	defer mu.Unlock()
	if idx, ok := index[s]; ok {
		return idx
	}
	return mustIntern(s)
}

// GetStringPointer returns a pointer to the interned string at idx, or nil
// if idx is out of range. A pointer (rather than a copy) lets callers avoid
// an allocation on the hot path.
func GetStringPointer(idx uint32) *string {
	mu.RLock()
	defer mu.RUnlock()
	if idx == types.InvalidStringIndex || int(idx) >= len(strings) {
		return nil
	}
	return &strings[idx]
}

// GetString is GetStringPointer dereferenced, returning "" if idx is invalid.
func GetString(idx uint32) string {
	p := GetStringPointer(idx)
	if p == nil {
		return ""
	}
	return *p
}

// GetStringPoolSize returns the number of interned strings.
func GetStringPoolSize() uint32 {
	mu.RLock()
	defer mu.RUnlock()
	return uint32(len(strings))
}
