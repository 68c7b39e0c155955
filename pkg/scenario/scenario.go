// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// yaml scenarios that mount a component tree, mutate it step by step and check the host
// tree output and the engine events
package scenario

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/wavetermdev/facetengine/pkg/builtin"
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"gopkg.in/yaml.v3"
)

const (
	Op_Set      = "set"
	Op_Items    = "items"
	Op_Body     = "body"
	Op_Text     = "text"
	Op_Attr     = "attr"
	Op_Mark     = "mark"
	Op_Drain    = "drain"
	Op_Rerender = "rerender"
	Op_Unrender = "unrender"
	Op_Destroy  = "destroy"
	Op_Expect   = "expect"
	Op_Check    = "check"
	Op_Print    = "print"
)

type Scenario struct {
	Name    string            `json:"name" yaml:"name" validate:"required"`
	Options map[string]any    `json:"options,omitempty" yaml:"options,omitempty" jsonschema:"description=engine option overrides"`
	Root    []comp.Descriptor `json:"root" yaml:"root" validate:"min=1"`
	Steps   []Step            `json:"steps" yaml:"steps" validate:"dive"`
}

type Step struct {
	Op     string            `json:"op" yaml:"op" validate:"required,oneof=set items body text attr mark drain rerender unrender destroy expect check print" jsonschema:"enum=set,enum=items,enum=body,enum=text,enum=attr,enum=mark,enum=drain,enum=rerender,enum=unrender,enum=destroy,enum=expect,enum=check,enum=print"`
	Target string            `json:"target,omitempty" yaml:"target,omitempty" validate:"required_if=Op set,required_if=Op items,required_if=Op body,required_if=Op text,required_if=Op attr,required_if=Op mark,required_if=Op rerender,required_if=Op unrender,required_if=Op destroy"`
	Body   []comp.Descriptor `json:"body,omitempty" yaml:"body,omitempty" jsonschema:"description=new expression value (set) or html children (body)"`
	Items  []builtin.Item    `json:"items,omitempty" yaml:"items,omitempty"`
	Text   string            `json:"text,omitempty" yaml:"text,omitempty"`
	Key    string            `json:"key,omitempty" yaml:"key,omitempty" validate:"required_if=Op attr"`
	Value  string            `json:"value,omitempty" yaml:"value,omitempty"`
	Expr   string            `json:"expr,omitempty" yaml:"expr,omitempty" validate:"required_if=Op mark"`
	Output *string           `json:"output,omitempty" yaml:"output,omitempty" jsonschema:"description=expected serialized host tree (expect)"`
	Events []string          `json:"events,omitempty" yaml:"events,omitempty" jsonschema:"description=expected events since the previous expect (expect)"`
	Error  string            `json:"error,omitempty" yaml:"error,omitempty" jsonschema:"description=expected error code"`
}

var validatorOnce = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

func (sc *Scenario) Validate() error {
	if err := validatorOnce().Struct(sc); err != nil {
		return utilds.MakeCodedError(utilds.ErrCode_Config, fmt.Errorf("invalid scenario %q: %w", sc.Name, err))
	}
	return nil
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, utilds.MakeCodedError(utilds.ErrCode_Config, fmt.Errorf("parsing scenario: %w", err))
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func LoadFile(fileName string) (*Scenario, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return sc, nil
}
