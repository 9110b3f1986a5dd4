/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Command jacobin is the CLI front end over the jvm/classloader core: a
// `run` subcommand that loads and executes a class on a real interpreter
// thread, and an `inspect` subcommand that drives the same load under a
// bubbletea TUI.
package main

func main() {
	Execute()
}
