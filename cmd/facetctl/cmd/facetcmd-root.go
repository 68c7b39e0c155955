// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "facetctl",
		Short:        "Run component rendering scenarios",
		Long:         `facetctl mounts component trees described in yaml scenario files, applies their steps and checks the rendered output`,
		SilenceUsage: true,
	}
)

var FacetVersion = "0.0.0"
var BuildTime = "0"

var WrappedStdout io.Writer = os.Stdout
var WrappedStderr io.Writer = os.Stderr
var ExitCode int

func WriteStderr(fmtStr string, args ...interface{}) {
	WrappedStderr.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func WriteStdout(fmtStr string, args ...interface{}) {
	WrappedStdout.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func Execute() {
	defer func() {
		r := recover()
		if r != nil {
			WriteStderr("[panic] %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
		os.Exit(ExitCode)
	}()
	err := rootCmd.Execute()
	if err != nil {
		ExitCode = 1
	}
}
