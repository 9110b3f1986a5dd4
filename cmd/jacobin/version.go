/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jacobin/globals"
)

// version is overridden at build time via -ldflags, mirroring the teacher's
// own goreleaser-set var.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jacobin version %s (max class-file version %d)\n", version, globals.MaxSupportedMajorVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
