package pipeline

import (
	"sync"

	"github.com/ziadkadry99/handoverdoc/internal/llm"
)

// TokenUsage accumulates input/output/cache token counts (§3, §4.13).
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	CacheTokens  int
}

func (u TokenUsage) add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		CacheTokens:  u.CacheTokens + other.CacheTokens,
	}
}

// Tracker accumulates per-round token usage and translates it to cost via
// the provider facade's pricing table (§4.13), subtracting cache-read
// savings where the provider reports them.
type Tracker struct {
	mu        sync.Mutex
	byRound   map[int]TokenUsage
	costByRound map[int]float64
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byRound:     make(map[int]TokenUsage),
		costByRound: make(map[int]float64),
	}
}

// Record adds one provider call's usage to round's running total.
func (t *Tracker) Record(round int, model string, inputTokens, outputTokens, cacheTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	usage := TokenUsage{InputTokens: inputTokens, OutputTokens: outputTokens, CacheTokens: cacheTokens}
	t.byRound[round] = t.byRound[round].add(usage)
	// Cache-read tokens are billed at a steep discount by every bundled
	// provider; modeling them as free input keeps the cost estimate
	// conservative without a per-provider cache-pricing table.
	billableInput := inputTokens - cacheTokens
	if billableInput < 0 {
		billableInput = 0
	}
	t.costByRound[round] += llm.EstimateCost(model, billableInput, outputTokens)
}

// RoundUsage returns the accumulated usage for one round.
func (t *Tracker) RoundUsage(round int) TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byRound[round]
}

// RoundCost returns the accumulated cost estimate for one round.
func (t *Tracker) RoundCost(round int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costByRound[round]
}

// Total returns the sum of every tracked round's usage and cost.
func (t *Tracker) Total() (TokenUsage, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total TokenUsage
	var cost float64
	for _, u := range t.byRound {
		total = total.add(u)
	}
	for _, c := range t.costByRound {
		cost += c
	}
	return total, cost
}
