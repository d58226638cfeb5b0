package pipeline

import (
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

func fixtureFallbackInput() FallbackInput {
	return FallbackInput{
		RepoName: "widgetdb",
		Files: []discover.FileInfo{
			{RelPath: "main.go", Size: 100},
			{RelPath: "internal/store/store.go", Size: 200},
			{RelPath: "internal/store/README.md", Size: 50},
			{RelPath: "Dockerfile", Size: 30},
		},
		Static: analyzers.StaticAnalysisResult{
			FileTree: analyzers.FileTreeResult{PrimaryLanguage: "Go"},
			Dependencies: analyzers.DependencyResult{
				Manifests: []string{"go.mod"},
			},
			TODOs: analyzers.TODOResult{
				Counts: map[analyzers.TODOCategory]int{
					analyzers.CategoryBugs: 2,
				},
				Matches: []analyzers.TODOMatch{
					{Category: analyzers.CategoryBugs, Text: "handle nil store", RelPath: "internal/store/store.go"},
				},
			},
		},
		Project: config.ProjectConfig{Name: "WidgetDB", Description: "A widget store."},
	}
}

func TestFallbackR1UsesProjectNameAndManifestStack(t *testing.T) {
	out := FallbackR1(fixtureFallbackInput())
	if out.ProjectName != "WidgetDB" {
		t.Errorf("ProjectName = %q, want WidgetDB", out.ProjectName)
	}
	if out.Purpose != "A widget store." {
		t.Errorf("Purpose = %q, want the project description", out.Purpose)
	}
	foundGo := false
	for _, s := range out.TechStack {
		if s == "Go" {
			foundGo = true
		}
	}
	if !foundGo {
		t.Errorf("TechStack = %v, want it to include Go", out.TechStack)
	}
	if len(out.EntryPoints) != 1 || out.EntryPoints[0] != "main.go" {
		t.Errorf("EntryPoints = %v, want [main.go]", out.EntryPoints)
	}
}

func TestFallbackR1FallsBackToRepoNameWhenProjectNameEmpty(t *testing.T) {
	in := fixtureFallbackInput()
	in.Project.Name = ""
	out := FallbackR1(in)
	if out.ProjectName != "widgetdb" {
		t.Errorf("ProjectName = %q, want the repo name widgetdb", out.ProjectName)
	}
}

func TestFallbackR2GroupsByTopLevelDirectory(t *testing.T) {
	out := FallbackR2(fixtureFallbackInput())
	names := make(map[string]bool)
	for _, m := range out.Modules {
		names[m.Name] = true
	}
	if !names["."] || !names["internal"] {
		t.Errorf("Modules = %+v, want top-level groups \".\" and \"internal\"", out.Modules)
	}
}

func TestFallbackR3SurfacesTODOCounts(t *testing.T) {
	out := FallbackR3(fixtureFallbackInput())
	if len(out.Findings) == 0 {
		t.Fatal("Findings is empty, want at least one TODO-derived finding")
	}
}

func TestFallbackR4LayersMatchR2Modules(t *testing.T) {
	in := fixtureFallbackInput()
	r2 := FallbackR2(in)
	r4 := FallbackR4(in)
	if len(r4.Layers) != len(r2.Modules) {
		t.Errorf("len(Layers) = %d, want %d (one per FallbackR2 module)", len(r4.Layers), len(r2.Modules))
	}
	if len(r4.Relationships) != 0 {
		t.Errorf("Relationships = %v, want none asserted without verifiable evidence", r4.Relationships)
	}
}

func TestFallbackR5SurfacesBugsAndDebtOnly(t *testing.T) {
	out := FallbackR5(fixtureFallbackInput())
	if len(out.EdgeCases) != 1 {
		t.Fatalf("len(EdgeCases) = %d, want 1", len(out.EdgeCases))
	}
	if out.EdgeCases[0].Description != "handle nil store" {
		t.Errorf("EdgeCases[0].Description = %q, want the bug's TODO text", out.EdgeCases[0].Description)
	}
}

func TestFallbackR6DetectsDockerfile(t *testing.T) {
	out := FallbackR6(fixtureFallbackInput())
	found := false
	for _, target := range out.DeployTargets {
		if target.Name == "Docker" {
			found = true
		}
	}
	if !found {
		t.Errorf("DeployTargets = %+v, want Docker detected from the Dockerfile", out.DeployTargets)
	}
}

func TestFallbackR6IncludesConfiguredDeployTarget(t *testing.T) {
	in := fixtureFallbackInput()
	in.Project.DeployTarget = "Kubernetes"
	out := FallbackR6(in)
	found := false
	for _, target := range out.DeployTargets {
		if target.Name == "Kubernetes" {
			found = true
		}
	}
	if !found {
		t.Errorf("DeployTargets = %+v, want the configured deploy target included", out.DeployTargets)
	}
}
