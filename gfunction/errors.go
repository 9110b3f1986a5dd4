/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import "errors"

var errNullArraycopy = errors.New("gfunction: arraycopy called with a null src or dst array")
