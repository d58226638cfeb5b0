package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	bizcontext "github.com/ziadkadry99/handoverdoc/internal/context"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
	"github.com/ziadkadry99/handoverdoc/internal/llm"
	"github.com/ziadkadry99/handoverdoc/internal/packer"
	"github.com/ziadkadry99/handoverdoc/internal/scorer"
	"github.com/ziadkadry99/handoverdoc/internal/tokenizer"
	"go.uber.org/zap"
)

// Step ids the Pipeline Assembler wires (§4.14). Round step ids are built
// with RoundStepID.
const (
	StepStaticAnalysis = "static-analysis"
	StepContextPack    = "context-pack"
	StepRender         = "render"
)

// RoundStepID returns the scheduler step id for round n.
func RoundStepID(n int) string {
	return fmt.Sprintf("ai-round-%d", n)
}

// promptOverheadEstimate is the fixed token cost budgeted for a round's
// non-file prompt scaffolding (system preamble, instructions, prior-round
// context block), consumed by the packer's budget computation (§4.4).
const promptOverheadEstimate = 3000

// ContextPackResult is the context-pack step's output: the frozen static
// analysis result, the packed file selection every round shares, the
// validator's ground truth, and the analysis fingerprint the round cache
// keys on (§3: "StaticAnalysisResult and PackedContext are constructed
// once and shared read-only by reference").
type ContextPackResult struct {
	Static      analyzers.StaticAnalysisResult
	Packed      packer.PackedContext
	Facts       StaticFacts
	Fingerprint string
}

// AssembleConfig is everything the Pipeline Assembler needs to build one
// run's job graph (§4.14).
type AssembleConfig struct {
	RootDir        string
	Files          []discover.FileInfo
	Config         *config.Config
	Business       *bizcontext.BusinessContext
	Provider       llm.Provider
	Cache          *Cache
	NoCache        bool // §4.11 `no-cache` mode: Round Runner skips Cache.Get but still calls Cache.Put
	Counter        tokenizer.Counter
	Tracker        *Tracker
	Sink           EventSink
	Logger         *zap.Logger
	Concurrency    int
	RequiredRounds []int // sorted ascending; empty means analysis.staticOnly or no round-dependent document was requested

	// RenderStep, if non-nil, is wired as the final "render" step depending
	// on every terminal round step (or static-analysis alone when no
	// rounds run). It lives outside this package so the renderer's package
	// can import pipeline's result types without an import cycle.
	RenderStep func(ctx context.Context, rc *RunContext) (any, error)
}

// Assemble builds the step graph for one run (§4.14): one static-analysis
// step, a context-pack step when any round is required, one ai-round-N
// step per required round with its declared prior-round dependencies, and
// an optional render step.
func Assemble(cfg AssembleConfig) (*Scheduler, error) {
	sched := NewScheduler(cfg.Concurrency, cfg.Sink)

	staticStep := StepDefinition{
		ID:   StepStaticAnalysis,
		Name: "Static Analysis",
		Execute: func(ctx context.Context, rc *RunContext) (any, error) {
			result := analyzers.Run(analyzers.AnalysisContext{
				RootDir: cfg.RootDir,
				Files:   cfg.Files,
				Config:  cfg.Config,
			})
			return result, nil
		},
	}
	if err := sched.AddSteps(staticStep); err != nil {
		return nil, err
	}

	terminal := []string{StepStaticAnalysis}

	if len(cfg.RequiredRounds) > 0 {
		packStep := StepDefinition{
			ID:   StepContextPack,
			Name: "Context Pack",
			Deps: []string{StepStaticAnalysis},
			Execute: func(ctx context.Context, rc *RunContext) (any, error) {
				dep, _ := rc.Dep(StepStaticAnalysis)
				static := dep.Data.(analyzers.StaticAnalysisResult)

				scored := scorer.Score(cfg.Files, static)
				contextWindow := cfg.Config.ContextWindow.MaxTokens
				if contextWindow <= 0 {
					contextWindow = llm.MaxContextTokens(cfg.Config.Model)
				}
				packerCfg := packer.Config{
					ContextWindow:  contextWindow,
					ReservedOutput: defaultRoundMaxOutputTokens,
					PromptOverhead: promptOverheadEstimate,
				}
				packed := packer.Pack(scored, packerCfg, cfg.Counter)

				return ContextPackResult{
					Static:      static,
					Packed:      packed,
					Facts:       BuildStaticFacts(static, cfg.Files),
					Fingerprint: AnalysisFingerprint(cfg.Files),
				}, nil
			},
		}
		if err := sched.AddSteps(packStep); err != nil {
			return nil, err
		}

		repoName := filepath.Base(cfg.RootDir)
		var priorIDs []string
		for _, n := range cfg.RequiredRounds {
			n := n
			frozenPriorIDs := append([]string(nil), priorIDs...)
			stepID := RoundStepID(n)

			roundStep := StepDefinition{
				ID:   stepID,
				Name: fmt.Sprintf("AI Round %d", n),
				Deps: append([]string{StepContextPack}, frozenPriorIDs...),
				Execute: func(ctx context.Context, rc *RunContext) (any, error) {
					cpDep, _ := rc.Dep(StepContextPack)
					cp := cpDep.Data.(ContextPackResult)

					var priorContexts []RoundContext
					var priorHashes []string
					for _, priorID := range frozenPriorIDs {
						pd, _ := rc.Dep(priorID)
						pr := pd.Data.(RoundExecutionResult)
						priorContexts = append(priorContexts, pr.Context)
						priorHashes = append(priorHashes, pr.RoundHash)
					}

					pc := PromptContext{
						RepoName: repoName,
						Project:  cfg.Config.Project,
						Business: cfg.Business,
						Static:   cp.Static,
						Packed:   &cp.Packed,
						Prior:    priorContexts,
					}
					fb := FallbackInput{
						RepoName: repoName,
						Files:    cfg.Files,
						Static:   cp.Static,
						Project:  cfg.Config.Project,
					}
					spec := buildRoundSpec(n, cfg.Config.Model, pc, fb)

					runner := NewRoundRunner(RoundRunnerConfig{
						Provider: cfg.Provider,
						Cache:    cfg.Cache,
						NoCache:  cfg.NoCache,
						Counter:  cfg.Counter,
						Tracker:  cfg.Tracker,
						Sink:     cfg.Sink,
						Logger:   cfg.Logger,
					})
					return runner.Run(ctx, spec, cp.Facts, cp.Fingerprint, priorHashes, rc.RunID), nil
				},
			}
			if err := sched.AddSteps(roundStep); err != nil {
				return nil, err
			}
			priorIDs = append(priorIDs, stepID)
		}
		terminal = priorIDs
	}

	if cfg.RenderStep != nil {
		renderStep := StepDefinition{
			ID:      StepRender,
			Name:    "Render",
			Deps:    terminal,
			Execute: cfg.RenderStep,
		}
		if err := sched.AddSteps(renderStep); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func buildRoundSpec(n int, model string, pc PromptContext, fb FallbackInput) RoundSpec {
	switch n {
	case 1:
		return BuildR1Spec(model, pc, fb)
	case 2:
		return BuildR2Spec(model, pc, fb)
	case 3:
		return BuildR3Spec(model, pc, fb)
	case 4:
		return BuildR4Spec(model, pc, fb)
	case 5:
		return BuildR5Spec(model, pc, fb)
	case 6:
		return BuildR6Spec(model, pc, fb)
	default:
		panic(fmt.Sprintf("pipeline: unknown round %d", n))
	}
}
