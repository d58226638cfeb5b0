package analyzers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// writeFixture materializes a small repository tree under a temp dir and
// returns an AnalysisContext built from discover.Walk over it.
func writeFixture(t *testing.T) (string, AnalysisContext) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.go": "// Package main starts the service.\npackage main\n\nimport \"fmt\"\n\n" +
			"func main() {\n\t// FIXME(#42): wire real config\n\tfmt.Println(\"hi\")\n}\n",
		"internal/auth/auth.go":      "package auth\n\nfunc Check() bool {\n\treturn true\n}\n",
		"internal/auth/auth_test.go": "package auth\n\nfunc TestCheck(t *testing.T) {}\n",
		"go.mod":                     "module example.com/fixture\n\ngo 1.22\n\nrequire github.com/stretchr/testify v1.9.0\n",
		"README.md":                  "# Fixture\n",
		".env.example":               "API_KEY=\n",
		"config.go": "package main\n\nimport \"os\"\n\n" +
			"var key = os.Getenv(\"API_KEY\")\n",
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

	fileInfos, err := discover.Walk(discover.Options{RootDir: dir})
	if err != nil {
		t.Fatalf("discover.Walk: %v", err)
	}

	return dir, AnalysisContext{
		RootDir: dir,
		Files:   fileInfos,
		Config:  &config.Config{Analysis: config.AnalysisConfig{Concurrency: 2}},
	}
}

func TestAnalyzeFileTree(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeFileTree(ctx)
	if result.TotalFiles != len(ctx.Files) {
		t.Errorf("TotalFiles = %d, want %d", result.TotalFiles, len(ctx.Files))
	}
	if result.PrimaryLanguage != "Go" {
		t.Errorf("PrimaryLanguage = %q, want Go", result.PrimaryLanguage)
	}
	if result.ExtensionCounts[".go"] == 0 {
		t.Error("expected .go extension to be counted")
	}
	if len(result.Tree) == 0 {
		t.Error("expected a non-empty directory tree")
	}
}

func TestIsEntryPoint(t *testing.T) {
	if !IsEntryPoint("cmd/server/main.go") {
		t.Error("main.go should be recognized as an entry point")
	}
	if IsEntryPoint("internal/auth/auth.go") {
		t.Error("auth.go should not be recognized as an entry point")
	}
}

func TestAnalyzeDependencies(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeDependencies(ctx)
	if len(result.Manifests) != 1 || result.Manifests[0] != "go.mod" {
		t.Fatalf("Manifests = %v, want [go.mod]", result.Manifests)
	}

	var found bool
	for _, d := range result.Dependencies {
		if d.Name == "github.com/stretchr/testify" {
			found = true
			if d.Version != "v1.9.0" {
				t.Errorf("testify version = %q, want v1.9.0", d.Version)
			}
		}
	}
	if !found {
		t.Error("expected github.com/stretchr/testify to be parsed from go.mod")
	}
}

func TestAnalyzeTODOs(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeTODOs(ctx)
	if result.Counts[CategoryBugs] == 0 {
		t.Error("expected at least one bug-category TODO match")
	}

	var match TODOMatch
	for _, m := range result.Matches {
		if m.Marker == "FIXME" {
			match = m
		}
	}
	if match.Marker != "FIXME" {
		t.Fatal("expected a FIXME match")
	}
	if len(match.IssueRefs) != 1 || match.IssueRefs[0] != "#42" {
		t.Errorf("IssueRefs = %v, want [#42]", match.IssueRefs)
	}
}

func TestAnalyzeEnv(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeEnv(ctx)
	if len(result.EnvFiles) != 1 {
		t.Fatalf("EnvFiles = %d, want 1", len(result.EnvFiles))
	}

	var found bool
	for _, ref := range result.References {
		if ref.Name == "API_KEY" && ref.Language == "Go" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find os.Getenv(\"API_KEY\") reference")
	}
}

func TestAnalyzeAST(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeAST(ctx)
	if len(result.Failed) != 0 {
		t.Errorf("unexpected extraction failures: %v", result.Failed)
	}

	var sawMain bool
	for _, fs := range result.Files {
		if fs.RelPath != "main.go" {
			continue
		}
		for _, s := range fs.Symbols {
			if s.Kind == "function" && s.Name == "main" {
				sawMain = true
			}
		}
	}
	if !sawMain {
		t.Error("expected main() to be extracted from main.go")
	}
}

func TestAnalyzeTests(t *testing.T) {
	_, ctx := writeFixture(t)

	deps := AnalyzeDependencies(ctx)
	result := AnalyzeTests(ctx, deps)

	var goTestCount int
	for _, f := range result.Frameworks {
		if f.Name == "go test" {
			goTestCount = f.FileCount
		}
	}
	if goTestCount != 1 {
		t.Errorf("go test FileCount = %d, want 1", goTestCount)
	}
}

func TestAnalyzeDocs(t *testing.T) {
	_, ctx := writeFixture(t)

	result := AnalyzeDocs(ctx)
	if !result.HasReadme {
		t.Error("expected HasReadme to be true")
	}
	if result.SampledFiles == 0 {
		t.Error("expected at least one sampled file")
	}
}

func TestRun(t *testing.T) {
	_, ctx := writeFixture(t)

	result := Run(ctx)
	if result.FileCount != len(ctx.Files) {
		t.Errorf("FileCount = %d, want %d", result.FileCount, len(ctx.Files))
	}
	for _, name := range []string{nameFileTree, nameDependencies, nameGit, nameTODOs, nameEnv, nameAST, nameTests, nameDocs} {
		meta, ok := result.Meta[name]
		if !ok {
			t.Errorf("missing Meta entry for analyzer %q", name)
			continue
		}
		if !meta.Success {
			t.Errorf("analyzer %q reported failure: %s", name, meta.Error)
		}
	}
}
