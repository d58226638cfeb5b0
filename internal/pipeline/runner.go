package pipeline

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/handoverdoc/internal/llm"
	"github.com/ziadkadry99/handoverdoc/internal/tokenizer"
	"go.uber.org/zap"
)

// RoundOutput is implemented by every round's typed output struct
// (R1Output..R6Output): it can assert factual claims and judge its own
// completeness.
type RoundOutput interface {
	ClaimSource
	Qualifiable
}

// RoundExecutionResult is a round's outcome (§3): either the LLM's
// accepted output or a fallback builder's output, never both, with
// status=degraded implying the latter.
type RoundExecutionResult struct {
	Data       RoundOutput
	Status     string // "ok" | "degraded"
	Source     string // "cached" | "llm" | "fallback"
	Tokens     TokenUsage
	Cost       float64
	Validation ValidationResult
	Quality    QualityMetrics
	Context    RoundContext
	RoundHash  string
}

// RoundSpec is what a round factory builds for the runner to execute
// (§4.9): the prompt builder (told whether this is the stricter retry
// pass), schema, decoder, and fallback producer.
type RoundSpec struct {
	Number          int
	Model           string
	BuildPrompt     func(stricter bool) []llm.Message
	Schema          map[string]any
	Decode          func(contentJSON string) (RoundOutput, error)
	Fallback        func() RoundOutput
	MaxOutputTokens int
	Temperature     string // informational label only; actual values below
}

const (
	defaultTemperature = 0.7
	retryTemperature   = 0.1
)

// RoundRunnerConfig wires the runner's collaborators.
type RoundRunnerConfig struct {
	Provider llm.Provider
	Cache    *Cache
	Counter  tokenizer.Counter
	Tracker  *Tracker
	Sink     EventSink
	Logger   *zap.Logger

	// NoCache implements the `no-cache` mode from §4.11: "Skips reads;
	// still performs writes, so the next normal run reads a warm cache."
	// Get is skipped entirely; Put still runs on every successful or
	// degraded completion.
	NoCache bool
}

// RoundRunner executes one round's full lifecycle (§4.5): cache lookup →
// call → validate → quality → at-most-one retry → fallback → compress →
// cache write. It never returns an error; every outcome is a
// RoundExecutionResult.
type RoundRunner struct {
	cfg RoundRunnerConfig
}

// NewRoundRunner constructs a RoundRunner. A nil Cache, Tracker, or Sink is
// valid — each is treated as a no-op.
func NewRoundRunner(cfg RoundRunnerConfig) *RoundRunner {
	if cfg.Counter == nil {
		cfg.Counter = tokenizer.NewEstimator()
	}
	if cfg.Sink == nil {
		cfg.Sink = NopSink
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &RoundRunner{cfg: cfg}
}

// Run executes spec against the given static facts, using fingerprint and
// priorRoundHashes to compute this round's cache key and cascade hash.
// runID identifies the pipeline run invoking this round, for cache-write
// correlation only (§3 RunContext.RunID) — it never participates in the
// cache key or the round hash.
func (r *RoundRunner) Run(ctx context.Context, spec RoundSpec, facts StaticFacts, fingerprint string, priorRoundHashes []string, runID string) RoundExecutionResult {
	hash := RoundHash(spec.Number, spec.Model, fingerprint, priorRoundHashes)

	if r.cfg.Cache != nil && !r.cfg.NoCache {
		if entry, ok, _ := r.cfg.Cache.Get(ctx, spec.Number, spec.Model, fingerprint); ok && entry.RoundHash == hash {
			if out, err := spec.Decode(entry.OutputJSON); err == nil {
				r.cfg.Logger.Debug("round cache hit",
					zap.Int("round", spec.Number), zap.String("hash", roundHashPreview(hash)))
				return r.finish(out, entry.Status, "cached", TokenUsage{}, 0, ValidationResult{}, QualityMetrics{}, hash)
			}
		}
	}

	var lastValidation ValidationResult
	var lastQuality QualityMetrics
	hasRetried := false

	for {
		temperature := defaultTemperature
		if hasRetried {
			temperature = retryTemperature
		}

		messages := spec.BuildPrompt(hasRetried)
		req := llm.CompletionRequest{
			Model:       spec.Model,
			Messages:    messages,
			MaxTokens:   spec.MaxOutputTokens,
			Temperature: temperature,
			Schema:      spec.Schema,
		}

		_, resp, err := llm.CompleteStructured(ctx, r.cfg.Provider, req)
		if err == nil {
			out, decodeErr := spec.Decode(resp.Content)
			if decodeErr == nil {
				validation := Validate(out, facts)
				quality := CheckQuality(out)
				lastValidation, lastQuality = validation, quality

				if validation.DropRate <= DropRateThreshold && quality.IsAcceptable {
					if r.cfg.Tracker != nil {
						r.cfg.Tracker.Record(spec.Number, spec.Model, resp.InputTokens, resp.OutputTokens, 0)
					}
					usage := TokenUsage{InputTokens: resp.InputTokens, OutputTokens: resp.OutputTokens}
					cost := llm.EstimateCost(spec.Model, resp.InputTokens, resp.OutputTokens)
					result := r.finish(out, "ok", "llm", usage, cost, validation, quality, hash)
					r.writeCache(ctx, spec, fingerprint, hash, "ok", out, runID)
					return result
				}
			} else {
				err = fmt.Errorf("decoding round %d output: %w", spec.Number, decodeErr)
			}
		}

		if !hasRetried {
			hasRetried = true
			r.cfg.Sink.Emit(Event{Type: EventStepRetry, StepID: fmt.Sprintf("ai-round-%d", spec.Number), Detail: "validation or quality check failed; retrying with a stricter prompt", RunID: runID})
			r.cfg.Logger.Info("round retrying with stricter prompt", zap.Int("round", spec.Number), zap.Error(err))
			continue
		}

		r.cfg.Logger.Warn("round falling back to static-only output", zap.Int("round", spec.Number), zap.Error(err))
		break
	}

	out := spec.Fallback()
	result := r.finish(out, "degraded", "fallback", TokenUsage{}, 0, lastValidation, lastQuality, hash)
	r.writeCache(ctx, spec, fingerprint, hash, "degraded", out, runID)
	return result
}

func (r *RoundRunner) finish(out RoundOutput, status, source string, tokens TokenUsage, cost float64, validation ValidationResult, quality QualityMetrics, hash string) RoundExecutionResult {
	raw, err := toRawViaJSON(out)
	var roundCtx RoundContext
	if err == nil {
		roundCtx = Compress(raw, DefaultCompressorBudget, r.cfg.Counter)
	}
	return RoundExecutionResult{
		Data:       out,
		Status:     status,
		Source:     source,
		Tokens:     tokens,
		Cost:       cost,
		Validation: validation,
		Quality:    quality,
		Context:    roundCtx,
		RoundHash:  hash,
	}
}

func (r *RoundRunner) writeCache(ctx context.Context, spec RoundSpec, fingerprint, hash, status string, out RoundOutput, runID string) {
	if r.cfg.Cache == nil {
		return
	}
	encoded, err := EncodeOutput(out)
	if err != nil {
		r.cfg.Logger.Warn("round cache encode failed", zap.Int("round", spec.Number), zap.Error(err))
		return
	}
	entry := CacheEntry{
		RoundNumber: spec.Number,
		Model:       spec.Model,
		Fingerprint: fingerprint,
		Status:      status,
		OutputJSON:  encoded,
		RoundHash:   hash,
		RunID:       runID,
	}
	if err := r.cfg.Cache.Put(ctx, entry); err != nil {
		r.cfg.Logger.Warn("round cache write failed", zap.Int("round", spec.Number), zap.Error(err))
	}
}
