// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/wavetermdev/facetengine/cmd/facetctl/cmd"
)

// set by the build
var FacetVersion = "0.0.0"
var BuildTime = "0"

func main() {
	cmd.FacetVersion = FacetVersion
	cmd.BuildTime = BuildTime
	cmd.Execute()
}
