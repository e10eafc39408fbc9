// (c) Siemens AG 2024
//
// SPDX-License-Identifier: MIT

package check

import (
	"context"
	"fmt"
	"io"
	"runtime"
)

// Step is a single diagnostic check of the fixed run sequence: a section
// title, the name of the external tool gating the step ("" for ungated
// steps), and the check itself.
type Step struct {
	Title string
	Tool  string
	Run   func(r *Runner, ctx context.Context, domain string) error
}

// Runner executes the fixed ordered list of diagnostic checks for a single
// domain, printing colorized section headers and the raw output of the
// external tools consulted. A Runner never halts on a failing check: missing
// tools and non-zero tool exits each produce a warning line and the run
// proceeds with the next step.
type Runner struct {
	out       io.Writer
	steps     []Step
	traceArgs []string // platform argument spelling, resolved once.
	addrs     []string // IPv4 answers collected by the record-lookup step.
}

// New returns a Runner writing the diagnostic results to the specified
// io.Writer.
func New(out io.Writer) *Runner {
	r := &Runner{
		out:       out,
		traceArgs: TraceArgs(runtime.GOOS),
	}
	r.steps = newSteps()
	return r
}

// Steps returns the fixed ordered list of diagnostic checks a run will
// perform.
func (r *Runner) Steps() []Step {
	return r.steps
}

// Diagnose runs all diagnostic checks for the specified domain in their fixed
// order. The domain value is deliberately not validated: whatever was given
// (even an empty string) gets substituted into the tool invocations verbatim.
func (r *Runner) Diagnose(ctx context.Context, domain string) {
	for idx, step := range r.steps {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, Header(fmt.Sprintf("[%d/%d] %s", idx+1, len(r.steps), step.Title)))
		if step.Tool != "" {
			if _, err := lookPath(step.Tool); err != nil {
				fmt.Fprintln(r.out, Warn(step.Tool+" not available; skip"))
				continue
			}
		}
		if err := step.Run(r, ctx, domain); err != nil {
			fmt.Fprintln(r.out, Warn(fmt.Sprintf("check failed: %v (continuing)", err)))
		}
	}
}
