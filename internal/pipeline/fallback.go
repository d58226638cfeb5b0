package pipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// FallbackInput is the static-only evidence every fallback builder may
// draw from (§4.10). Fallback builders never call an LLM and never
// fabricate: a section with no static evidence is left empty, not guessed.
type FallbackInput struct {
	RepoName string
	Files    []discover.FileInfo
	Static   analyzers.StaticAnalysisResult
	Project  config.ProjectConfig
}

var commonEntryPointBasenames = []string{
	"main.go", "main.py", "index.js", "index.ts", "app.py", "server.js",
	"server.ts", "cmd/main.go", "__main__.py", "Main.java",
}

// FallbackR1 derives a minimally valid Round 1 output from static facts
// only: project name/description from config if the maintainer supplied
// one, tech stack from the dependency manifests found, entry points from
// recognized filenames.
func FallbackR1(in FallbackInput) R1Output {
	name := in.Project.Name
	if name == "" {
		name = in.RepoName
	}
	purpose := in.Project.Description

	techStack := make(map[string]bool)
	for _, m := range in.Static.Dependencies.Manifests {
		techStack[manifestToStack(m)] = true
	}
	if in.Static.FileTree.PrimaryLanguage != "" {
		techStack[in.Static.FileTree.PrimaryLanguage] = true
	}
	stack := make([]string, 0, len(techStack))
	for s := range techStack {
		stack = append(stack, s)
	}
	sort.Strings(stack)

	var entryPoints []string
	for _, f := range in.Files {
		base := filepath.Base(f.RelPath)
		for _, candidate := range commonEntryPointBasenames {
			if base == filepath.Base(candidate) {
				entryPoints = append(entryPoints, f.RelPath)
				break
			}
		}
	}
	sort.Strings(entryPoints)

	return R1Output{
		ProjectName: name,
		Purpose:     purpose,
		TechStack:   stack,
		EntryPoints: entryPoints,
	}
}

func manifestToStack(manifest string) string {
	switch manifest {
	case "package.json":
		return "Node.js"
	case "go.mod":
		return "Go"
	case "Cargo.toml":
		return "Rust"
	case "requirements.txt", "pyproject.toml":
		return "Python"
	default:
		return manifest
	}
}

// FallbackR2 groups files by top-level directory as a minimally valid
// module boundary guess — the same grouping a maintainer would get from
// `ls` — since the pipeline has no LLM-inferred boundary to fall back on.
func FallbackR2(in FallbackInput) R2Output {
	byDir := make(map[string][]string)
	for _, f := range in.Files {
		if f.ContentSkipped {
			continue
		}
		top := topLevelDir(f.RelPath)
		byDir[top] = append(byDir[top], f.RelPath)
	}

	names := make([]string, 0, len(byDir))
	for name := range byDir {
		names = append(names, name)
	}
	sort.Strings(names)

	modules := make([]Module, 0, len(names))
	for _, name := range names {
		files := byDir[name]
		sort.Strings(files)
		modules = append(modules, Module{Name: name, Purpose: "", Files: files})
	}
	return R2Output{Modules: modules}
}

func topLevelDir(relPath string) string {
	parts := strings.SplitN(relPath, "/", 2)
	if len(parts) == 1 {
		return "."
	}
	return parts[0]
}

// FallbackR3 has no static signal for feature boundaries; it returns an
// explicitly empty feature list with whatever TODO-derived findings exist,
// rather than guessing.
func FallbackR3(in FallbackInput) R3Output {
	var findings []string
	for category, count := range in.Static.TODOs.Counts {
		if count > 0 {
			findings = append(findings, humanizeTODOCategory(category, count))
		}
	}
	sort.Strings(findings)
	return R3Output{Findings: findings}
}

func humanizeTODOCategory(category analyzers.TODOCategory, count int) string {
	return string(category) + ": " + itoaSimple(count) + " marker(s) found"
}

func itoaSimple(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// FallbackR4 has no static signal for architectural pattern naming; layers
// are approximated from the top-level directory names also used by
// FallbackR2, with no relationships asserted (none would be verifiable).
func FallbackR4(in FallbackInput) R4Output {
	r2 := FallbackR2(in)
	layers := make([]string, 0, len(r2.Modules))
	for _, m := range r2.Modules {
		layers = append(layers, m.Name)
	}
	return R4Output{Layers: layers}
}

// FallbackR5 surfaces TODO-marked bugs/debt as edge cases; conventions and
// open questions are left empty since neither has a static derivation.
func FallbackR5(in FallbackInput) R5Output {
	var cases []EdgeCase
	byText := make(map[string][]string)
	for _, m := range in.Static.TODOs.Matches {
		if m.Category != analyzers.CategoryBugs && m.Category != analyzers.CategoryDebt {
			continue
		}
		byText[m.Text] = append(byText[m.Text], m.RelPath)
	}
	texts := make([]string, 0, len(byText))
	for t := range byText {
		texts = append(texts, t)
	}
	sort.Strings(texts)
	for _, t := range texts {
		files := byText[t]
		sort.Strings(files)
		cases = append(cases, EdgeCase{Description: t, Files: files})
	}
	return R5Output{EdgeCases: cases}
}

// deployHints maps a discovered filename to the infrastructure or CI/CD
// signal it represents.
var deployHints = map[string]string{
	"Dockerfile":          "Docker",
	"docker-compose.yml":  "Docker Compose",
	"docker-compose.yaml": "Docker Compose",
	".github/workflows":   "GitHub Actions",
	".gitlab-ci.yml":      "GitLab CI",
	"Procfile":            "Heroku",
	"serverless.yml":      "Serverless Framework",
	"terraform":           "Terraform",
	"kubernetes":          "Kubernetes",
	"k8s":                 "Kubernetes",
}

// FallbackR6 scans discovered file and directory names for recognized
// deployment/infra signals; nothing found means an explicitly empty list.
func FallbackR6(in FallbackInput) R6Output {
	found := make(map[string]bool)
	for _, f := range in.Files {
		base := filepath.Base(f.RelPath)
		if hint, ok := deployHints[base]; ok {
			found[hint] = true
		}
		for _, part := range strings.Split(f.RelPath, "/") {
			if hint, ok := deployHints[part]; ok {
				found[hint] = true
			}
		}
	}
	if in.Project.DeployTarget != "" {
		found[in.Project.DeployTarget] = true
	}

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]DeployTarget, 0, len(names))
	for _, name := range names {
		targets = append(targets, DeployTarget{Name: name})
	}
	return R6Output{DeployTargets: targets}
}
