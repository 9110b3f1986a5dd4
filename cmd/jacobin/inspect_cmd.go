/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jacobin/cmd/jacobin/inspect"
)

var (
	inspectClasspath []string
	inspectUseMmap   bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <mainClass>",
	Short: "Run a class under a live TUI dashboard of the class table and thread state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := inspect.Start(inspect.Config{
			Classpath: inspectClasspath,
			MainClass: args[0],
			UseMmap:   inspectUseMmap,
		})
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringSliceVarP(&inspectClasspath, "classpath", "c", []string{"."}, "classpath roots, searched in order")
	inspectCmd.Flags().BoolVar(&inspectUseMmap, "mmap", false, "read class files via mmap instead of buffered I/O")
}
