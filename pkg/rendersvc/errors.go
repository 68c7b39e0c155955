// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package rendersvc

import (
	"errors"
	"fmt"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/panichandler"
	"github.com/wavetermdev/facetengine/pkg/utilds"
)

const (
	Op_Render      = "render"
	Op_Rerender    = "rerender"
	Op_Unrender    = "unrender"
	Op_AfterRender = "afterRender"
)

// ComponentError is a lifecycle callback failure, tagged with the offending component
type ComponentError struct {
	Op            string
	ComponentId   string
	ComponentType string
	Err           error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s threw an error in '%s' {%s}: %v", e.Op, e.ComponentType, e.ComponentId, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// GetComponentError returns the innermost-tagged component error in err's chain, or nil
func GetComponentError(err error) *ComponentError {
	var ce *ComponentError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// wrapCallbackErr tags err with c unless the chain already names a component
func wrapCallbackErr(op string, c comp.Component, err error) error {
	if err == nil {
		return nil
	}
	if GetComponentError(err) != nil {
		return err
	}
	return &ComponentError{
		Op:            op,
		ComponentId:   c.GetId(),
		ComponentType: c.GetType(),
		Err:           err,
	}
}

// recoverCallback converts a panic in a callback into a wrapped error stored in *errPtr.
// it must be called directly by defer.
func recoverCallback(op string, c comp.Component, errPtr *error) {
	r := recover()
	if r == nil {
		return
	}
	panicErr := panichandler.PanicHandler(fmt.Sprintf("%s %s", op, comp.Describe(c)), r)
	*errPtr = wrapCallbackErr(op, c, panicErr)
}

func preconditionErr(format string, args ...any) error {
	return utilds.Errorf(utilds.ErrCode_Precondition, format, args...)
}
