// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"errors"
	"testing"

	"github.com/wavetermdev/facetengine/pkg/utilds"
)

func recoverInto(debugStr string, fn func()) (rtnErr error) {
	defer func() {
		rtnErr = PanicHandler(debugStr, recover())
	}()
	fn()
	return nil
}

func TestPanicHandler(t *testing.T) {
	if err := recoverInto("noop", func() {}); err != nil {
		t.Errorf("no panic should give no error, got %v", err)
	}
	sentinel := errors.New("inner")
	err := recoverInto("errpanic", func() { panic(sentinel) })
	if !errors.Is(err, sentinel) {
		t.Errorf("panic error should stay in the chain, got %v", err)
	}
	err = recoverInto("strpanic", func() { panic("boom") })
	if utilds.GetErrorCode(err) != utilds.ErrCode_Callback || utilds.GetErrorSubCode(err) != SubCode_Panic {
		t.Errorf("expected callback/panic coded error, got %v", err)
	}
	if err.Error() != "panic in strpanic: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLogPanicSwallows(t *testing.T) {
	ran := false
	func() {
		defer func() {
			LogPanic("worker", recover())
		}()
		ran = true
		panic("worker failed")
	}()
	if !ran {
		t.Errorf("function should have run before panicking")
	}
	LogPanic("nopanic", nil)
}
