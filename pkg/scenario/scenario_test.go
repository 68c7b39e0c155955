// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wavetermdev/facetengine/pkg/utilds"
)

func runFile(t *testing.T, fileName string) *Report {
	t.Helper()
	sc, err := LoadFile(filepath.Join("testdata", fileName))
	if err != nil {
		t.Fatalf("loading %s: %v", fileName, err)
	}
	runner := &Runner{}
	report, err := runner.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("running %s: %v", fileName, err)
	}
	return report
}

func TestScenarioFiles(t *testing.T) {
	for _, fileName := range []string{"list.yaml", "expr.yaml", "body.yaml"} {
		t.Run(fileName, func(t *testing.T) {
			report := runFile(t, fileName)
			if !report.Passed() {
				var buf bytes.Buffer
				report.WriteText(&buf)
				t.Errorf("scenario failed:\n%s", buf.String())
			}
		})
	}
}

const mismatchScenario = `
name: mismatch
root:
  - type: text
    attrs: {id: t, text: one}
steps:
  - op: expect
    output: two
  - op: text
    target: t
    text: three
  - op: drain
  - op: expect
    output: three
    events: [render t, doneRendering]
`

func TestScenarioMismatchIsReported(t *testing.T) {
	sc, err := Parse([]byte(mismatchScenario))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, err := (&Runner{}).Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Passed() || len(report.Failures) != 1 {
		t.Fatalf("expected exactly one failure, got %#v", report.Failures)
	}
	if diff := cmp.Diff(Failure{Step: 0, Op: Op_Expect}, report.Failures[0], cmpIgnoreMessage); diff != "" {
		t.Errorf("failure mismatch (-want +got):\n%s", diff)
	}
	if report.Output != "three" || report.Steps != 4 {
		t.Errorf("run should continue past a failed expectation, output %q steps %d", report.Output, report.Steps)
	}
}

var cmpIgnoreMessage = cmp.Comparer(func(a, b Failure) bool {
	return a.Step == b.Step && a.Op == b.Op
})

func TestScenarioStopsOnError(t *testing.T) {
	sc, err := Parse([]byte(`
name: missing target
root:
  - type: text
    attrs: {text: x}
steps:
  - op: destroy
    target: nope
  - op: print
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	report, err := (&Runner{}).Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Steps != 1 || len(report.Failures) != 1 || !strings.Contains(report.Failures[0].Message, `"nope"`) {
		t.Errorf("expected the run to stop at the first step, got %#v", report)
	}
}

func TestScenarioValidation(t *testing.T) {
	_, err := Parse([]byte(`
name: bad
root:
  - type: text
steps:
  - op: items
`))
	if utilds.GetErrorCode(err) != utilds.ErrCode_Config {
		t.Errorf("expected config error for a missing target, got %v", err)
	}
	_, err = Parse([]byte(`
name: bad op
root:
  - type: text
steps:
  - op: explode
`))
	if err == nil {
		t.Errorf("expected unknown op to be rejected")
	}
	_, err = Parse([]byte("name: empty\nroot: []\n"))
	if err == nil {
		t.Errorf("expected empty root to be rejected")
	}
}

func TestScenarioOptions(t *testing.T) {
	sc, err := Parse([]byte(`
name: opts
options:
  maxrerenderiterations: 0
root:
  - type: text
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = (&Runner{}).Run(context.Background(), sc)
	if utilds.GetErrorCode(err) != utilds.ErrCode_Config {
		t.Errorf("expected config error for bad options, got %v", err)
	}
}

func TestScenarioCanceled(t *testing.T) {
	sc, err := Parse([]byte(mismatchScenario))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Runner{}).Run(ctx, sc)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
