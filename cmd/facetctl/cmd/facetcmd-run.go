// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wavetermdev/facetengine/pkg/fconfig"
	"github.com/wavetermdev/facetengine/pkg/scenario"
)

var (
	runConfigFile string
	runEnvFile    string
	runMinify     bool
	runJson       bool
	runWatch      bool
	runVerbose    bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] scenario.yaml...",
	Short: "Run scenario files and report the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRunCmd,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigFile, "config", "c", "", "engine options file (yaml)")
	runCmd.Flags().StringVar(&runEnvFile, "env", "", "load FACET_* variables from a .env file")
	runCmd.Flags().BoolVarP(&runMinify, "minify", "m", false, "minify reported output")
	runCmd.Flags().BoolVar(&runJson, "json", false, "print reports as json")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "rerun scenarios when their files change")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log every step")
	rootCmd.AddCommand(runCmd)
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	opts, err := fconfig.Load(runConfigFile, runEnvFile)
	if err != nil {
		return err
	}
	runner := &scenario.Runner{Options: opts, Minify: runMinify, Verbose: runVerbose}
	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelFn()
	failed := 0
	for _, fileName := range args {
		ok, err := runScenarioFile(ctx, runner, fileName)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}
	if runWatch {
		return watchScenarios(ctx, runner, args)
	}
	if failed > 0 {
		ExitCode = 1
		WriteStderr("%d of %d scenario(s) failed\n", failed, len(args))
	}
	return nil
}

// runScenarioFile returns false when the scenario could not be loaded or did not pass
func runScenarioFile(ctx context.Context, runner *scenario.Runner, fileName string) (bool, error) {
	sc, err := scenario.LoadFile(fileName)
	if err != nil {
		WriteStderr("%v\n", err)
		return false, nil
	}
	report, err := runner.Run(ctx, sc)
	if err != nil {
		return false, fmt.Errorf("%s: %w", fileName, err)
	}
	if runJson {
		barr, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return false, fmt.Errorf("marshaling report: %w", err)
		}
		WriteStdout("%s\n", barr)
	} else {
		report.WriteText(WrappedStdout)
	}
	return report.Passed(), nil
}
