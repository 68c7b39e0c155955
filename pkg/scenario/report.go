// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/wavetermdev/facetengine/pkg/rendersvc"
)

type Failure struct {
	Step    int    `json:"step"` // -1 for failures outside the steps (mount)
	Op      string `json:"op"`
	Message string `json:"message"`
}

type Report struct {
	Name     string          `json:"name"`
	Steps    int             `json:"steps"`
	Failures []Failure       `json:"failures,omitempty"`
	Printed  []string        `json:"printed,omitempty"`
	Output   string          `json:"output"`
	Stats    rendersvc.Stats `json:"stats"`
}

func (r *Report) fail(step int, op string, msg string) {
	r.Failures = append(r.Failures, Failure{Step: step, Op: op, Message: msg})
}

func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

func (r *Report) WriteText(w io.Writer) {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s (%d steps)\n", status, r.Name, r.Steps)
	for _, f := range r.Failures {
		where := fmt.Sprintf("step %d", f.Step)
		if f.Step < 0 {
			where = f.Op
		}
		fmt.Fprintf(w, "  %s [%s]: %s\n", where, f.Op, strings.ReplaceAll(f.Message, "\n", "\n    "))
	}
	fmt.Fprintf(w, "  stats: render=%d rerender=%d unrender=%d afterrender=%d reconcile=%d\n",
		r.Stats.Render, r.Stats.Rerender, r.Stats.Unrender, r.Stats.AfterRender, r.Stats.Reconcile)
	fmt.Fprintf(w, "  output: %s\n", r.Output)
}
