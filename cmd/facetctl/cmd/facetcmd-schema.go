// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/wavetermdev/facetengine/pkg/builtin"
	"github.com/wavetermdev/facetengine/pkg/fconfig"
	"github.com/wavetermdev/facetengine/pkg/scenario"
)

var schemaOutFile string

var schemaCmd = &cobra.Command{
	Use:       "schema [scenario|options|attrs]",
	Short:     "Print the json schema of scenario files, engine options or descriptor attributes",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"scenario", "options", "attrs"},
	RunE:      runSchemaCmd,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutFile, "out", "o", "", "write the schema to a file instead of stdout")
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaCmd(cmd *cobra.Command, args []string) error {
	kind := "scenario"
	if len(args) > 0 {
		kind = args[0]
	}
	var schema *jsonschema.Schema
	switch kind {
	case "scenario":
		schema = jsonschema.Reflect(&scenario.Scenario{})
	case "options":
		schema = jsonschema.Reflect(&fconfig.Options{})
	case "attrs":
		schema = jsonschema.Reflect(&builtin.DescAttrs{})
	default:
		return fmt.Errorf("unknown schema %q (expected scenario, options or attrs)", kind)
	}
	barr, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %v", err)
	}
	if schemaOutFile == "" {
		WriteStdout("%s\n", barr)
		return nil
	}
	if err := os.WriteFile(schemaOutFile, append(barr, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %v", err)
	}
	return nil
}
