package packer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
	"github.com/ziadkadry99/handoverdoc/internal/scorer"
	"github.com/ziadkadry99/handoverdoc/internal/tokenizer"
)

func scoredFixture(t *testing.T) []scorer.ScoredFile {
	t.Helper()
	dir := t.TempDir()

	small := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	large := "package big\n\n" + strings.Repeat("func Helper() {\n\tdoWork()\n}\n\n", 2000)

	write := func(relPath, content string) discover.FileInfo {
		full := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		return discover.FileInfo{Path: full, RelPath: relPath, Size: int64(len(content)), Language: "Go"}
	}

	smallInfo := write("main.go", small)
	largeInfo := write("big.go", large)
	skippedInfo := write("vendor/blob.bin", "binary-ish")
	skippedInfo.ContentSkipped = true

	return []scorer.ScoredFile{
		{FileInfo: largeInfo, Score: 50},
		{FileInfo: smallInfo, Score: 40},
		{FileInfo: skippedInfo, Score: 10},
	}
}

func TestPack_BudgetInvariant(t *testing.T) {
	scored := scoredFixture(t)
	cfg := Config{ContextWindow: 2000, ReservedOutput: 200, PromptOverhead: 100}

	result := Pack(scored, cfg, tokenizer.NewEstimator())

	if result.TotalTokenCost > cfg.withDefaults().Budget() {
		t.Errorf("TotalTokenCost %d exceeds budget %d", result.TotalTokenCost, cfg.withDefaults().Budget())
	}
	if len(result.Files) == 0 {
		t.Fatal("expected at least one packed file")
	}
	for _, pf := range result.Files {
		if pf.Tier == TierSkip {
			t.Errorf("packed file %q has skip tier; skip-tier files must not appear in PackedContext", pf.RelPath)
		}
	}
}

func TestPack_SkipsContentSkippedFiles(t *testing.T) {
	scored := scoredFixture(t)
	cfg := Config{ContextWindow: 100000, ReservedOutput: 0, PromptOverhead: 0}

	result := Pack(scored, cfg, tokenizer.NewEstimator())

	if result.Lookup("vendor/blob.bin") != nil {
		t.Error("content-skipped file should never appear in the packed context")
	}
}

func TestPack_SmallFileGetsFullTier(t *testing.T) {
	scored := scoredFixture(t)
	cfg := Config{ContextWindow: 100000, ReservedOutput: 0, PromptOverhead: 0}

	result := Pack(scored, cfg, tokenizer.NewEstimator())

	pf := result.Lookup("main.go")
	if pf == nil {
		t.Fatal("expected main.go in packed context")
	}
	if pf.Tier != TierFull {
		t.Errorf("main.go tier = %v, want full", pf.Tier)
	}
}

func TestPack_TightBudgetNeverPacksOversizedFullTier(t *testing.T) {
	scored := scoredFixture(t)
	// Far too tight for big.go's full content. big.go (score 50, well over
	// the split token threshold) takes the split path, and its signatures
	// alone do not fit either, so it is left out; whatever is packed at the
	// full tier must still fit the budget.
	cfg := Config{ContextWindow: 600, ReservedOutput: 0, PromptOverhead: 0}

	result := Pack(scored, cfg, tokenizer.NewEstimator())

	for _, pf := range result.Files {
		if pf.Tier == TierFull && pf.TokenCost > cfg.withDefaults().Budget() {
			t.Errorf("file %q tier=full but cost %d exceeds budget", pf.RelPath, pf.TokenCost)
		}
	}
}
