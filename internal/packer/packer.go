package packer

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ziadkadry99/handoverdoc/internal/scorer"
	"github.com/ziadkadry99/handoverdoc/internal/tokenizer"
)

// signaturePatterns pulls declaration lines only, used for the
// "signatures" tier and for splitting a large file's sections. It
// deliberately overlaps with the AST analyzer's symbol patterns but keeps
// the full line (not just the captured name), since a signature needs to
// read like a signature.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*func\s+.*\{?\s*$`),
	regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+.*\{?\s*$`),
	regexp.MustCompile(`^\s*def\s+.*:?\s*$`),
	regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+.*\{?\s*$`),
	regexp.MustCompile(`^\s*type\s+\S+\s+(?:struct|interface)\s*\{?\s*$`),
}

// Pack builds a PackedContext from pre-scored files, walking them in score
// order and assigning each a tier until the budget is exhausted. Reads are
// batched (cfg.BatchSize files read concurrently ahead of the sequential
// budget decision) to bound peak memory on large repositories, grounded on
// the teacher's semaphore-bounded batch-processing idiom.
func Pack(files []scorer.ScoredFile, cfg Config, counter tokenizer.Counter) PackedContext {
	cfg = cfg.withDefaults()
	if counter == nil {
		counter = tokenizer.NewEstimator()
	}

	candidates := make([]scorer.ScoredFile, 0, len(files))
	for _, f := range files {
		if !f.ContentSkipped {
			candidates = append(candidates, f)
		}
	}

	result := PackedContext{}
	remaining := cfg.Budget()

	for start := 0; start < len(candidates); start += cfg.BatchSize {
		if remaining <= 0 {
			break
		}
		end := start + cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]
		contents := readBatch(batch)

		for _, f := range batch {
			if remaining <= 0 {
				break
			}
			content := contents[f.RelPath]
			remaining = packOne(f, content, counter, remaining, cfg, &result)
		}
	}

	result.ResidualBudget = remaining
	for _, pf := range result.Files {
		result.TotalTokenCost += pf.TokenCost
	}
	result.buildIndex()
	return result
}

// readBatch reads every candidate's content concurrently, bounded by the
// batch size itself (each goroutine reads exactly one file; the outer
// Pack loop already caps how many files are in flight at once).
func readBatch(batch []scorer.ScoredFile) map[string]string {
	contents := make(map[string]string, len(batch))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, f := range batch {
		wg.Add(1)
		go func(f scorer.ScoredFile) {
			defer wg.Done()
			data, err := os.ReadFile(f.Path)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				contents[f.RelPath] = string(data)
			}
		}(f)
	}
	wg.Wait()
	return contents
}

// packOne assigns a tier to a single file and appends it to result,
// returning the updated remaining budget.
func packOne(f scorer.ScoredFile, content string, counter tokenizer.Counter, remaining int, cfg Config, result *PackedContext) int {
	if content == "" {
		return remaining
	}

	fullCost := counter.Count(content)
	if fullCost <= remaining {
		result.Files = append(result.Files, PackedFile{
			RelPath: f.RelPath, Tier: TierFull, Content: content, Score: f.Score, TokenCost: fullCost,
		})
		return remaining - fullCost
	}

	if fullCost > cfg.SplitTokenThreshold && f.Score >= cfg.SplitScoreThreshold {
		return packSplit(f, content, counter, remaining, result)
	}

	sig := extractSignatures(content)
	sigCost := counter.Count(sig)
	if sig != "" && sigCost <= remaining {
		result.Files = append(result.Files, PackedFile{
			RelPath: f.RelPath, Tier: TierSignatures, Content: sig, Score: f.Score, TokenCost: sigCost,
		})
		return remaining - sigCost
	}

	return remaining
}

// packSplit handles the spec's large-high-score-file path: the file's
// signatures are included as a first unit, then its individual sections
// (split on blank-line-delimited blocks) compete for the remaining budget
// as their own packable units, largest first (see splitSections). Section
// score is inherited from the parent file since sections have no
// independent ranking signal.
func packSplit(f scorer.ScoredFile, content string, counter tokenizer.Counter, remaining int, result *PackedContext) int {
	sig := extractSignatures(content)
	sigCost := counter.Count(sig)
	if sig != "" && sigCost <= remaining {
		result.Files = append(result.Files, PackedFile{
			RelPath: f.RelPath, Tier: TierSignatures, Content: sig, Score: f.Score, TokenCost: sigCost,
		})
		remaining -= sigCost
	} else {
		return remaining
	}

	sections := splitSections(content)
	for i, section := range sections {
		if remaining <= 0 {
			break
		}
		cost := counter.Count(section)
		if cost > remaining {
			continue
		}
		result.Files = append(result.Files, PackedFile{
			RelPath:   f.RelPath + sectionSuffix(i),
			Tier:      TierFull,
			Content:   section,
			Score:     f.Score,
			TokenCost: cost,
		})
		remaining -= cost
	}

	return remaining
}

func sectionSuffix(i int) string {
	return "#section-" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

// splitSections breaks content into blank-line-delimited blocks, sorted
// largest-first so the most substantial sections get first crack at the
// remaining budget.
func splitSections(content string) []string {
	raw := strings.Split(content, "\n\n")
	var sections []string
	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			sections = append(sections, s)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return len(sections[i]) > len(sections[j]) })
	return sections
}

// extractSignatures returns only the declaration lines of content, in
// file order, joined by newlines. Never a real parse — a pure line filter.
func extractSignatures(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		for _, p := range signaturePatterns {
			if p.MatchString(line) {
				lines = append(lines, line)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}
