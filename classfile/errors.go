/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classfile

import "fmt"

// DecodeError is returned for every class-format problem the decoder finds:
// bad magic, a short buffer, an unknown constant-pool tag, a bad string
// encoding, or an attribute whose declared length runs past the buffer.
type DecodeError struct {
	Reason string
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("class format error: %s (at offset %d)", e.Reason, e.Offset)
}

func decodeErrorf(offset int, format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Offset: offset}
}
