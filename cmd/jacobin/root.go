/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jacobin",
	Short: "A Java virtual machine core",
	Long:  `jacobin decodes, links, and interprets JVM class files.`,
}

// Execute runs the command tree, exiting non-zero on a Cobra-level error
// (flag parsing, unknown subcommand) or on an error a subcommand returns.
// `run` maps its own failures to shutdown.ExitStatus codes itself; `inspect`
// returns its error here, which exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
