package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
	"github.com/ziadkadry99/handoverdoc/internal/pipeline"
)

// RenderInput is everything the renderer needs from one completed (or
// partially completed) pipeline run. Rounds missing from the map were
// never executed — either analysis.staticOnly was set, or the requested
// document set never required them, or a scheduler skip cascaded onto
// them.
type RenderInput struct {
	RepoName    string
	RunID       string
	GeneratedAt time.Time
	Audience    config.Audience
	Files       []discover.FileInfo
	Static      analyzers.StaticAnalysisResult
	Rounds      map[int]pipeline.RoundExecutionResult
}

// DocumentResult is one rendered document's outcome, aggregated into the
// INDEX.
type DocumentResult struct {
	Spec   DocumentSpec
	Status Status
	Reason string
}

// Render writes every requested document under outDir and returns each
// document's outcome. A single document's render failure is recovered and
// surfaces as StatusNotGenerated for that document alone (§7 Render error);
// it never aborts the rest of the run.
func Render(outDir string, ids []int, in RenderInput) ([]DocumentResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var results []DocumentResult
	for _, spec := range Documents {
		if spec.ID == 0 || !wanted[spec.ID] {
			continue
		}
		result := renderOne(outDir, spec, in)
		results = append(results, result)
	}

	// The INDEX is always rendered last so it can aggregate every other
	// document's outcome, including the ones just rendered above.
	indexResult := renderIndex(outDir, in, results)
	results = append([]DocumentResult{indexResult}, results...)

	sort.Slice(results, func(i, j int) bool { return results[i].Spec.ID < results[j].Spec.ID })
	return results, nil
}

func renderOne(outDir string, spec DocumentSpec, in RenderInput) (result DocumentResult) {
	defer func() {
		if r := recover(); r != nil {
			result = DocumentResult{Spec: spec, Status: StatusNotGenerated, Reason: fmt.Sprintf("renderer panicked: %v", r)}
		}
	}()

	body, status, reason := bodyFor(spec, in)
	content, err := withFrontMatter(in.GeneratedAt, in.RunID, status, reason, body)
	if err != nil {
		return DocumentResult{Spec: spec, Status: StatusNotGenerated, Reason: err.Error()}
	}
	if err := os.WriteFile(filepath.Join(outDir, spec.Filename), []byte(content), 0o644); err != nil {
		return DocumentResult{Spec: spec, Status: StatusNotGenerated, Reason: err.Error()}
	}
	return DocumentResult{Spec: spec, Status: status, Reason: reason}
}

// bodyFor dispatches to the per-document content builder and determines
// the document's status from the round (if any) it depends on.
func bodyFor(spec DocumentSpec, in RenderInput) (body string, status Status, reason string) {
	if spec.RequiredRound == 0 {
		return staticBody(spec, in), StatusFull, ""
	}

	res, ok := in.Rounds[spec.RequiredRound]
	if !ok {
		return fmt.Sprintf("Round %d was not run for this generation.\n", spec.RequiredRound), StatusStaticOnly, "round skipped"
	}

	body = roundBody(spec, res)
	if res.Status == "degraded" {
		return body, StatusPartial, "round fell back to static-analysis-only output"
	}
	return body, StatusFull, ""
}

func staticBody(spec DocumentSpec, in RenderInput) string {
	switch spec.ID {
	case 7:
		return fileTreeBody(in.Static.FileTree)
	case 8:
		return dependenciesBody(in.Static.Dependencies)
	case 9:
		return testingBody(in.Static.Tests, in.Static.Docs)
	case 12:
		return gitHistoryBody(in.Static.Git)
	default:
		return ""
	}
}

func roundBody(spec DocumentSpec, res pipeline.RoundExecutionResult) string {
	switch spec.ID {
	case 1:
		if out, ok := res.Data.(pipeline.R1Output); ok {
			return overviewBody(out)
		}
	case 2:
		if out, ok := res.Data.(pipeline.R2Output); ok {
			return modulesBody(out)
		}
	case 3:
		if out, ok := res.Data.(pipeline.R3Output); ok {
			return featuresBody(out)
		}
	case 4:
		if out, ok := res.Data.(pipeline.R3Output); ok {
			return crossCuttingBody(out)
		}
	case 5:
		if out, ok := res.Data.(pipeline.R4Output); ok {
			return architectureBody(out)
		}
	case 6:
		if out, ok := res.Data.(pipeline.R4Output); ok {
			return relationshipsBody(out)
		}
	case 10:
		if out, ok := res.Data.(pipeline.R5Output); ok {
			return edgeCasesBody(out)
		}
	case 11:
		if out, ok := res.Data.(pipeline.R5Output); ok {
			return conventionsBody(out)
		}
	case 13:
		if out, ok := res.Data.(pipeline.R6Output); ok {
			return deploymentBody(out)
		}
	}
	return "No content was produced for this document.\n"
}

func overviewBody(o pipeline.R1Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", orDefault(o.ProjectName, "Overview"))
	if o.Purpose != "" {
		fmt.Fprintf(&b, "%s\n\n", o.Purpose)
	}
	if len(o.TechStack) > 0 {
		b.WriteString("## Technology Stack\n\n")
		for _, t := range o.TechStack {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}
	if len(o.EntryPoints) > 0 {
		b.WriteString("## Entry Points\n\n")
		for _, p := range o.EntryPoints {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
	}
	return b.String()
}

func modulesBody(o pipeline.R2Output) string {
	var b strings.Builder
	b.WriteString("## Modules\n\n")
	for _, m := range o.Modules {
		fmt.Fprintf(&b, "### %s\n\n", m.Name)
		if m.Purpose != "" {
			fmt.Fprintf(&b, "%s\n\n", m.Purpose)
		}
		for _, f := range m.Files {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func featuresBody(o pipeline.R3Output) string {
	var b strings.Builder
	b.WriteString("## Features\n\n")
	for _, f := range o.Features {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", f.Name, f.Description)
		for _, p := range f.Files {
			fmt.Fprintf(&b, "- `%s`\n", p)
		}
		b.WriteString("\n")
	}
	if len(o.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range o.Findings {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

func crossCuttingBody(o pipeline.R3Output) string {
	var b strings.Builder
	b.WriteString("## Cross-Cutting Concerns\n\n")
	for _, c := range o.CrossCutting {
		fmt.Fprintf(&b, "- **%s**: %s\n", c.Name, c.Description)
	}
	return b.String()
}

func architectureBody(o pipeline.R4Output) string {
	var b strings.Builder
	if len(o.Patterns) > 0 {
		b.WriteString("## Architectural Patterns\n\n")
		for _, p := range o.Patterns {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", p.Name, p.Description)
			if p.Rationale != "" {
				fmt.Fprintf(&b, "_Rationale:_ %s\n\n", p.Rationale)
			}
		}
	}
	if len(o.Layers) > 0 {
		b.WriteString("## Layers\n\n")
		for _, l := range o.Layers {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}

func relationshipsBody(o pipeline.R4Output) string {
	var b strings.Builder
	b.WriteString("## Module Relationships\n\n")
	for _, r := range o.Relationships {
		if r.Type != "" {
			fmt.Fprintf(&b, "- `%s` -> `%s` (%s)\n", r.From, r.To, r.Type)
		} else {
			fmt.Fprintf(&b, "- `%s` -> `%s`\n", r.From, r.To)
		}
	}
	return b.String()
}

func edgeCasesBody(o pipeline.R5Output) string {
	var b strings.Builder
	b.WriteString("## Edge Cases\n\n")
	for _, e := range o.EdgeCases {
		fmt.Fprintf(&b, "- %s", e.Description)
		if len(e.Files) > 0 {
			fmt.Fprintf(&b, " (`%s`)", strings.Join(e.Files, "`, `"))
		}
		b.WriteString("\n")
	}
	if len(o.OpenQuestions) > 0 {
		b.WriteString("\n## Open Questions\n\n")
		for _, q := range o.OpenQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}

func conventionsBody(o pipeline.R5Output) string {
	var b strings.Builder
	b.WriteString("## Conventions\n\n")
	for _, c := range o.Conventions {
		fmt.Fprintf(&b, "- **%s**: %s\n", c.Name, c.Description)
	}
	return b.String()
}

func deploymentBody(o pipeline.R6Output) string {
	var b strings.Builder
	if len(o.DeployTargets) > 0 {
		b.WriteString("## Deployment Targets\n\n")
		for _, t := range o.DeployTargets {
			if t.Description != "" {
				fmt.Fprintf(&b, "- **%s**: %s\n", t.Name, t.Description)
			} else {
				fmt.Fprintf(&b, "- %s\n", t.Name)
			}
		}
		b.WriteString("\n")
	}
	if len(o.Infrastructure) > 0 {
		b.WriteString("## Infrastructure\n\n")
		for _, i := range o.Infrastructure {
			fmt.Fprintf(&b, "- %s\n", i)
		}
		b.WriteString("\n")
	}
	if len(o.CICD) > 0 {
		b.WriteString("## CI/CD\n\n")
		for _, c := range o.CICD {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	if len(o.OpenQuestions) > 0 {
		b.WriteString("## Open Questions\n\n")
		for _, q := range o.OpenQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}

func fileTreeBody(ft analyzers.FileTreeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## File Tree\n\n%s files across %s directories, %s lines, %s total.\n\n",
		humanize.Comma(int64(ft.TotalFiles)), humanize.Comma(int64(ft.TotalDirs)),
		humanize.Comma(int64(ft.TotalLines)), humanize.Bytes(uint64(ft.TotalBytes)))
	if ft.PrimaryLanguage != "" {
		fmt.Fprintf(&b, "Primary language: %s\n\n", ft.PrimaryLanguage)
	}
	if len(ft.LargestFiles) > 0 {
		b.WriteString("### Largest Files\n\n")
		for _, f := range ft.LargestFiles {
			fmt.Fprintf(&b, "- `%s` (%s)\n", f.RelPath, humanize.Bytes(uint64(f.Size)))
		}
	}
	return b.String()
}

func dependenciesBody(d analyzers.DependencyResult) string {
	var b strings.Builder
	b.WriteString("## Dependencies\n\n")
	if len(d.Manifests) > 0 {
		fmt.Fprintf(&b, "Manifests: %s\n\n", strings.Join(d.Manifests, ", "))
	}
	for _, dep := range d.Dependencies {
		kind := "prod"
		if dep.Dev {
			kind = "dev"
		}
		fmt.Fprintf(&b, "- `%s` %s (%s, %s)\n", dep.Name, dep.Version, kind, dep.Manifest)
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, w := range d.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

func testingBody(t analyzers.TestsResult, docs analyzers.DocsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Testing\n\n%d test files detected.\n\n", t.TotalTestFiles)
	for _, f := range t.Frameworks {
		fmt.Fprintf(&b, "- %s (%d files)\n", f.Name, f.FileCount)
	}
	fmt.Fprintf(&b, "\n## Documentation Coverage\n\nREADME present: %t. Docs folder present: %t. %d of %d sampled files documented (%.0f%%).\n",
		docs.HasReadme, docs.HasDocsFolder, docs.DocumentedFiles, docs.SampledFiles, docs.CoverageFraction*100)
	return b.String()
}

func gitHistoryBody(g analyzers.GitResult) string {
	if !g.IsGitRepo {
		return "## Git History\n\nThis repository is not under git version control.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Git History\n\nBranch: %s (%s strategy). %s commits.\n\n",
		g.CurrentBranch, orDefault(g.BranchStrategy, "unknown"), humanize.Comma(int64(g.CommitCount)))
	if len(g.Contributors) > 0 {
		b.WriteString("### Contributors\n\n")
		for _, c := range g.Contributors {
			fmt.Fprintf(&b, "- %s (%d commits)\n", c.Name, c.Commits)
		}
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// renderIndex builds the INDEX document aggregating every other document's
// status, the union of all degradation reasons (§6: "The INDEX aggregates
// status for every document").
func renderIndex(outDir string, in RenderInput, others []DocumentResult) DocumentResult {
	spec, _ := documentByID(0)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Handover Documentation Index\n\n", orDefault(in.RepoName, "Repository"))
	fmt.Fprintf(&b, "Generated %s.\n\n", in.GeneratedAt.Format(time.RFC3339))
	b.WriteString("| Document | Status |\n|---|---|\n")

	sorted := append([]DocumentResult(nil), others...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Spec.ID < sorted[j].Spec.ID })
	for _, r := range sorted {
		fmt.Fprintf(&b, "| [%s](%s) | %s |\n", r.Spec.Title, r.Spec.Filename, r.Status.describe(r.Reason))
	}

	overallStatus := StatusFull
	var reasons []string
	for _, r := range sorted {
		if r.Status != StatusFull {
			overallStatus = StatusPartial
		}
		if r.Reason != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", r.Spec.Filename, r.Reason))
		}
	}
	if len(reasons) > 0 {
		b.WriteString("\n## Degradation Reasons\n\n")
		for _, r := range reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	content, err := withFrontMatter(in.GeneratedAt, in.RunID, overallStatus, "", b.String())
	if err != nil {
		return DocumentResult{Spec: spec, Status: StatusNotGenerated, Reason: err.Error()}
	}
	if err := os.WriteFile(filepath.Join(outDir, spec.Filename), []byte(content), 0o644); err != nil {
		return DocumentResult{Spec: spec, Status: StatusNotGenerated, Reason: err.Error()}
	}
	return DocumentResult{Spec: spec, Status: overallStatus}
}
