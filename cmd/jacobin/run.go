/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jacobin/classloader"
	"jacobin/classpath"
	"jacobin/globals"
	"jacobin/jvm"
	"jacobin/shutdown"
	"jacobin/trace"
)

var (
	runClasspath  []string
	runUseMmap    bool
	runTraceClass bool
	runTraceInst  bool
)

var runCmd = &cobra.Command{
	Use:   "run <mainClass>",
	Short: "Load and execute a class's public static void main(String[])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mainClass := args[0]

		g := globals.InitGlobals("")
		g.Classpath = runClasspath
		g.TraceClass = runTraceClass
		g.TraceInst = runTraceInst
		if runTraceInst {
			trace.SetLevel(trace.FINE)
		}

		var reader classpath.Reader
		if runUseMmap {
			reader = classpath.NewMmapFileReader(runClasspath)
		} else {
			reader = classpath.NewDirReader(runClasspath)
		}

		mgr := classloader.NewManager(reader)
		vm := jvm.NewVM(mgr)

		th, err := vm.RunMain(mainClass, args[1:])
		if err != nil {
			status := statusFor(err)
			fmt.Println(err)
			shutdown.Exit(status)
			return nil
		}
		if th.Fault != nil {
			fmt.Println(th.Fault)
			shutdown.Exit(statusFor(th.Fault))
			return nil
		}

		shutdown.Exit(shutdown.OK)
		return nil
	},
}

// statusFor maps a failure from RunMain to the exit code that best
// describes it to a caller scripting around this binary.
func statusFor(err error) shutdown.ExitStatus {
	var mainErr *jvm.MainNotFoundError
	if errors.As(err, &mainErr) {
		return shutdown.MAIN_METHOD_NOT_FOUND
	}

	var linkErr *classloader.LinkageError
	if errors.As(err, &linkErr) {
		if linkErr.Kind == classloader.ClassNotFound {
			return shutdown.CLASS_NOT_FOUND
		}
		return shutdown.APP_EXCEPTION
	}

	var execErr *jvm.ExecError
	if errors.As(err, &execErr) {
		return shutdown.JVM_EXCEPTION
	}

	var thrown *jvm.ThrownError
	if errors.As(err, &thrown) {
		return shutdown.JVM_EXCEPTION
	}

	return shutdown.APP_EXCEPTION
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runClasspath, "classpath", "c", []string{"."}, "classpath roots, searched in order")
	runCmd.Flags().BoolVar(&runUseMmap, "mmap", false, "read class files via mmap instead of buffered I/O")
	runCmd.Flags().BoolVar(&runTraceClass, "trace-class", false, "set the class-loader trace switch (produces no output in this build)")
	runCmd.Flags().BoolVar(&runTraceInst, "trace-inst", false, "set the instruction trace switch (produces no output in this build)")
}
