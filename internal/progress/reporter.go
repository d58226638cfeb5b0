// Package progress renders the pipeline's typed event stream to a terminal
// or CI log. The core never draws UI (spec.md section 6); this package is
// the one external renderer the core is built against.
package progress

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/ziadkadry99/handoverdoc/internal/pipeline"
)

// Reporter consumes the scheduler's lifecycle events (pipeline.Event) as a
// pipeline.EventSink, plus a Finish hook for any end-of-run cleanup.
type Reporter interface {
	pipeline.EventSink
	Start(totalSteps int)
	Finish()
}

// NewReporter returns a CIReporter if the CI or GITHUB_ACTIONS environment
// variable is set, and a TerminalReporter otherwise; it does not check
// whether output is an interactive terminal.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal, one tick per
// settled step (completed, failed, or skipped).
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(totalSteps int) {
	r.bar = progressbar.NewOptions(totalSteps,
		progressbar.OptionSetDescription("Generating docs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Emit(e pipeline.Event) {
	if r.bar == nil {
		return
	}
	switch e.Type {
	case pipeline.EventStepStart:
		r.bar.Describe(color.CyanString(e.StepID))
	case pipeline.EventStepComplete:
		_ = r.bar.Add(1)
		r.bar.Describe(color.GreenString("%s done", e.StepID))
	case pipeline.EventStepFail:
		_ = r.bar.Add(1)
		r.bar.Describe(color.RedString("%s failed: %s", e.StepID, e.Detail))
	case pipeline.EventStepSkip:
		_ = r.bar.Add(1)
		r.bar.Describe(color.YellowString("%s skipped: %s", e.StepID, e.Detail))
	case pipeline.EventStepRetry:
		r.bar.Describe(color.YellowString("%s retrying: %s", e.StepID, e.Detail))
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints one line per event, suitable for CI logs where a
// redrawing progress bar renders as unreadable noise.
type CIReporter struct{}

func (r *CIReporter) Start(totalSteps int) {
	fmt.Fprintf(os.Stderr, "Starting handover generation (%d steps)\n", totalSteps)
}

func (r *CIReporter) Emit(e pipeline.Event) {
	switch e.Type {
	case pipeline.EventStepStart:
		fmt.Fprintf(os.Stderr, "[start] %s\n", e.StepID)
	case pipeline.EventStepComplete:
		fmt.Fprintf(os.Stderr, "[done]  %s\n", e.StepID)
	case pipeline.EventStepFail:
		fmt.Fprintf(os.Stderr, "[fail]  %s: %s\n", e.StepID, e.Detail)
	case pipeline.EventStepSkip:
		fmt.Fprintf(os.Stderr, "[skip]  %s: %s\n", e.StepID, e.Detail)
	case pipeline.EventStepRetry:
		fmt.Fprintf(os.Stderr, "[retry] %s: %s\n", e.StepID, e.Detail)
	}
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Handover generation complete")
}
