// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"log"
	"runtime/debug"

	"github.com/wavetermdev/facetengine/pkg/utilds"
)

const SubCode_Panic = "panic"

// LogPanic logs a recovered panic (for goroutines that have nowhere to return an error)
func LogPanic(debugStr string, recoverVal any) {
	if recoverVal == nil {
		return
	}
	log.Printf("[panic] in %s: %v\n", debugStr, recoverVal)
	debug.PrintStack()
}

// PanicHandler returns a callback error wrapping the panic, or nil if there was no panic.
// a panic value that is an error stays in the chain.
func PanicHandler(debugStr string, recoverVal any) error {
	if recoverVal == nil {
		return nil
	}
	LogPanic(debugStr, recoverVal)
	if err, ok := recoverVal.(error); ok {
		return utilds.SubErrorf(utilds.ErrCode_Callback, SubCode_Panic, "panic in %s: %w", debugStr, err)
	}
	return utilds.SubErrorf(utilds.ErrCode_Callback, SubCode_Panic, "panic in %s: %v", debugStr, recoverVal)
}
