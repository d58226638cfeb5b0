package discover

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFixture materializes a small repository tree under a temp dir for
// the discovery tests to walk.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"main.go":                 "package main\n\nfunc main() {}\n",
		"go.mod":                  "module example.com/fixture\n\ngo 1.22\n",
		"auth/middleware.go":      "package auth\n",
		"auth/middleware_test.go": "package auth\n",
		"config.yaml":             "provider: anthropic\n",
		"node_modules/leftpad/index.js": "module.exports = {}\n",
		".gitignore":              "*.log\nbuild/\n",
		"debug.log":               "noise\n",
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
	return dir
}

func TestWalk_BasicTraversal(t *testing.T) {
	dir := writeFixture(t)

	files, err := Walk(Options{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	found := map[string]bool{}
	for _, f := range files {
		found[f.RelPath] = true
	}

	for _, want := range []string{"main.go", "go.mod", "auth/middleware.go", "config.yaml"} {
		if !found[want] {
			t.Errorf("expected file %q in walk results", want)
		}
	}
	if found["node_modules/leftpad/index.js"] {
		t.Error("node_modules should be excluded by the always-excluded directory set")
	}
	if found["debug.log"] {
		t.Error(".gitignore patterns should exclude debug.log")
	}
}

func TestWalk_FieldsAndClassification(t *testing.T) {
	dir := writeFixture(t)

	files, err := Walk(Options{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	byPath := map[string]FileInfo{}
	for _, f := range files {
		byPath[f.RelPath] = f
	}

	main, ok := byPath["main.go"]
	if !ok {
		t.Fatal("main.go missing from results")
	}
	if main.Language != "Go" {
		t.Errorf("main.go language = %q, want Go", main.Language)
	}
	if main.ContentHash == "" {
		t.Error("main.go should have a content hash")
	}
	if main.ContentSkipped {
		t.Error("main.go content should not be skipped")
	}
	if main.IsTest {
		t.Error("main.go should not be classified as a test file")
	}

	testFile, ok := byPath["auth/middleware_test.go"]
	if !ok {
		t.Fatal("auth/middleware_test.go missing from results")
	}
	if !testFile.IsTest {
		t.Error("auth/middleware_test.go should be classified as a test file")
	}

	manifest, ok := byPath["go.mod"]
	if !ok {
		t.Fatal("go.mod missing from results")
	}
	if !manifest.IsManifest {
		t.Error("go.mod should be classified as a manifest file")
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	dir := writeFixture(t)

	files, err := Walk(Options{
		RootDir: dir,
		Include: []string{"**/*.go"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, f := range files {
		if f.Language != "Go" {
			t.Errorf("include filter let through non-Go file %q", f.RelPath)
		}
	}

	files, err = Walk(Options{
		RootDir: dir,
		Exclude: []string{"**/*_test.go"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	for _, f := range files {
		if f.IsTest {
			t.Errorf("exclude filter should have dropped test file %q", f.RelPath)
		}
	}
}

func TestWalk_PinAndBoost(t *testing.T) {
	dir := writeFixture(t)

	files, err := Walk(Options{
		RootDir: dir,
		Pin:     []string{"config.yaml"},
		Boost:   []string{"auth/**"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	var sawPin, sawBoost bool
	for _, f := range files {
		if f.RelPath == "config.yaml" && f.Pinned {
			sawPin = true
		}
		if f.RelPath == "auth/middleware.go" && f.Boosted {
			sawBoost = true
		}
	}
	if !sawPin {
		t.Error("config.yaml should be marked Pinned")
	}
	if !sawBoost {
		t.Error("auth/middleware.go should be marked Boosted")
	}
}
