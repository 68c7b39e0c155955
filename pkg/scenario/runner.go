// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"fmt"
	"log"

	"github.com/google/go-cmp/cmp"
	"github.com/wavetermdev/facetengine/pkg/builtin"
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/fconfig"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"github.com/wavetermdev/facetengine/pkg/wps"
	"golang.org/x/net/html"
)

type Runner struct {
	Options *fconfig.Options // base options, scenario overrides are applied on a copy
	Minify  bool             // minify the outputs recorded in the report
	Verbose bool
}

// run holds the engine instance of a single scenario run
type run struct {
	runner  *Runner
	svc     *rendersvc.Service
	factory *builtin.Factory
	root    *html.Node
	events  *wps.EventLog
	report  *Report
}

func (r *Runner) engineOptions(sc *Scenario) (*fconfig.Options, error) {
	opts := r.Options
	if opts == nil {
		opts = fconfig.DefaultOptions()
	}
	opts = opts.Copy()
	if len(sc.Options) > 0 {
		if err := opts.ApplyMap(sc.Options); err != nil {
			return nil, err
		}
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// Run mounts the scenario root and executes its steps. Expectation mismatches and
// unexpected engine errors are recorded as failures in the report; a step error stops the
// run. The returned error is for problems outside the scenario (bad options, cancellation).
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	opts, err := r.engineOptions(sc)
	if err != nil {
		return nil, err
	}
	broker := wps.MakeBroker()
	events := wps.MakeEventLog("scenario")
	events.SubscribeAll(broker)
	svc := rendersvc.MakeService(rendersvc.Deps{Options: opts, Publisher: broker})
	rn := &run{
		runner:  r,
		svc:     svc,
		factory: builtin.MakeFactory(svc),
		root:    svc.Tree().CreateNode(html.ElementNode, "body"),
		events:  events,
		report:  &Report{Name: sc.Name},
	}
	entries := make([]comp.Entry, 0, len(sc.Root))
	for _, desc := range sc.Root {
		entries = append(entries, comp.Desc(desc))
	}
	if _, err := svc.Mount(entries, rn.root); err != nil {
		rn.report.fail(-1, "mount", err.Error())
		rn.finish()
		return rn.report, nil
	}
	for idx, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return rn.report, err
		}
		if !rn.runStep(idx, step) {
			break
		}
	}
	rn.finish()
	return rn.report, nil
}

func (rn *run) finish() {
	out, err := rn.output(rn.runner.Minify)
	if err != nil {
		rn.report.fail(-1, "output", err.Error())
	}
	rn.report.Output = out
	rn.report.Stats = rn.svc.Stats()
}

func (rn *run) output(minifyOutput bool) (string, error) {
	return hosttree.Serialize(rn.root, minifyOutput, rn.svc.EngineAttrs()...)
}

func (rn *run) lookup(id string) (comp.Component, error) {
	c := rn.svc.Registry().Get(id)
	if c == nil {
		return nil, utilds.Errorf(utilds.ErrCode_Precondition, "no component with id %q", id)
	}
	return c, nil
}

// runStep returns false when the run cannot continue
func (rn *run) runStep(idx int, step Step) bool {
	if rn.runner.Verbose {
		log.Printf("[scenario] %s: step %d %s %s\n", rn.report.Name, idx, step.Op, step.Target)
	}
	rn.report.Steps++
	err := rn.execStep(idx, step)
	if step.Error != "" {
		if code := utilds.GetErrorCode(err); code != step.Error {
			rn.report.fail(idx, step.Op, fmt.Sprintf("expected error code %q, got %q (%v)", step.Error, code, err))
			return false
		}
		return true
	}
	if err != nil {
		rn.report.fail(idx, step.Op, err.Error())
		return false
	}
	return true
}

func (rn *run) execStep(idx int, step Step) error {
	switch step.Op {
	case Op_Drain:
		return rn.svc.RerenderDirty()
	case Op_Expect:
		return rn.expect(idx, step)
	case Op_Check:
		return rn.svc.CheckMarkers()
	case Op_Print:
		out, err := rn.output(rn.runner.Minify)
		if err != nil {
			return err
		}
		log.Printf("[scenario] %s: step %d output: %s\n", rn.report.Name, idx, out)
		rn.report.Printed = append(rn.report.Printed, out)
		return nil
	}
	c, err := rn.lookup(step.Target)
	if err != nil {
		return err
	}
	switch step.Op {
	case Op_Set:
		expr, ok := c.(*builtin.Expression)
		if !ok {
			return utilds.Errorf(utilds.ErrCode_Precondition, "set: %s is not an expression", comp.Describe(c))
		}
		value, err := rn.createBody(expr, step.Body)
		if err != nil {
			return err
		}
		expr.SetValue(value...)
	case Op_Items:
		it, ok := c.(*builtin.Iteration)
		if !ok {
			return utilds.Errorf(utilds.ErrCode_Precondition, "items: %s is not an iteration", comp.Describe(c))
		}
		it.SetItems(step.Items...)
	case Op_Body:
		h, ok := c.(*builtin.Html)
		if !ok {
			return utilds.Errorf(utilds.ErrCode_Precondition, "body: %s is not an html component", comp.Describe(c))
		}
		body, err := rn.createBody(h, step.Body)
		if err != nil {
			return err
		}
		h.SetBody(body...)
	case Op_Text:
		switch tc := c.(type) {
		case *builtin.Text:
			tc.SetValue(step.Text)
		case *builtin.Markup:
			tc.SetValue(step.Text)
		default:
			return utilds.Errorf(utilds.ErrCode_Precondition, "text: %s has no text value", comp.Describe(c))
		}
	case Op_Attr:
		h, ok := c.(*builtin.Html)
		if !ok {
			return utilds.Errorf(utilds.ErrCode_Precondition, "attr: %s is not an html component", comp.Describe(c))
		}
		h.SetAttr(step.Key, step.Value)
	case Op_Mark:
		rn.svc.MarkDirty(step.Expr, c)
	case Op_Rerender:
		_, err = rn.svc.Rerender([]comp.Component{c})
		return err
	case Op_Unrender:
		return rn.svc.Unrender([]comp.Component{c})
	case Op_Destroy:
		return rn.svc.Destroy(c)
	}
	return nil
}

// createBody instantiates descs owned by owner
func (rn *run) createBody(owner comp.Component, descs []comp.Descriptor) ([]comp.Entry, error) {
	rtn := make([]comp.Entry, 0, len(descs))
	for _, desc := range descs {
		desc.Owner = owner
		c, err := rn.factory.Create(desc)
		if err != nil {
			return nil, err
		}
		rtn = append(rtn, comp.Ref(c))
	}
	return rtn, nil
}

// expect compares the output and the events seen since the previous expect.
// mismatches are failures but do not stop the run.
func (rn *run) expect(idx int, step Step) error {
	if step.Output != nil {
		got, err := rn.output(false)
		if err != nil {
			return err
		}
		if got != *step.Output {
			rn.report.fail(idx, step.Op, fmt.Sprintf("output mismatch\n  want: %s\n  got:  %s", *step.Output, got))
		}
	}
	if step.Events != nil {
		got := rn.events.Lines()
		if diff := cmp.Diff(step.Events, got); diff != "" && !(len(step.Events) == 0 && len(got) == 0) {
			rn.report.fail(idx, step.Op, fmt.Sprintf("events mismatch (-want +got):\n%s", diff))
		}
	}
	rn.events.Reset()
	return nil
}
