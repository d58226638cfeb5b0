package scorer

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

func writeFixture(t *testing.T) analyzers.AnalysisContext {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.go":                "package main\n\nfunc main() {}\n",
		"internal/util/util.go":  "package util\n\n// TODO: add tests\nfunc Helper() {}\n",
		"internal/util/README.md": "# util\n",
		"scripts/one_off.py":     "x = 1\n",
	}
	for relPath, content := range files {
		full := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", relPath, err)
		}
	}

	fileInfos, err := discover.Walk(discover.Options{
		RootDir: dir,
		Pin:     []string{"internal/util/util.go"},
	})
	if err != nil {
		t.Fatalf("discover.Walk: %v", err)
	}

	return analyzers.AnalysisContext{
		RootDir: dir,
		Files:   fileInfos,
		Config:  &config.Config{Analysis: config.AnalysisConfig{Concurrency: 2}},
	}
}

func TestScore_OrderingAndDeterminism(t *testing.T) {
	ctx := writeFixture(t)
	result := analyzers.Run(ctx)

	scored := Score(ctx.Files, result)
	if len(scored) != len(ctx.Files) {
		t.Fatalf("Score returned %d entries, want %d", len(scored), len(ctx.Files))
	}

	if !sort.SliceIsSorted(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].RelPath < scored[j].RelPath
	}) {
		t.Error("Score() output is not sorted score-descending, path-ascending on ties")
	}

	again := Score(ctx.Files, result)
	for i := range scored {
		if scored[i].RelPath != again[i].RelPath || scored[i].Score != again[i].Score {
			t.Fatal("Score() is not deterministic across repeated calls on the same input")
		}
	}
}

func TestScore_EntryPointAndPinOutrankPlainFile(t *testing.T) {
	ctx := writeFixture(t)
	result := analyzers.Run(ctx)
	scored := Score(ctx.Files, result)

	byPath := make(map[string]ScoredFile)
	for _, s := range scored {
		byPath[s.RelPath] = s
	}

	main := byPath["main.go"]
	pinned := byPath["internal/util/util.go"]
	plain := byPath["scripts/one_off.py"]

	if main.Score <= plain.Score {
		t.Errorf("main.go (entry point) score %.2f should exceed scripts/one_off.py score %.2f", main.Score, plain.Score)
	}
	if pinned.Score <= plain.Score {
		t.Errorf("pinned file score %.2f should exceed unpinned plain file score %.2f", pinned.Score, plain.Score)
	}
	if pinned.Signals.PinBoost != 1.0 {
		t.Errorf("pinned file PinBoost signal = %.2f, want 1.0", pinned.Signals.PinBoost)
	}
}
