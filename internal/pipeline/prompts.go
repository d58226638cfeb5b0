package pipeline

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/config"
	bizcontext "github.com/ziadkadry99/handoverdoc/internal/context"
	"github.com/ziadkadry99/handoverdoc/internal/llm"
	"github.com/ziadkadry99/handoverdoc/internal/packer"
)

// PromptContext is the shared evidence every round's prompt builder draws
// from (§4.1-§4.9): the static analysis result, the token-budgeted packed
// file selection, and the compressed context carried forward from every
// round that already ran.
type PromptContext struct {
	RepoName string
	Project  config.ProjectConfig
	Business *bizcontext.BusinessContext
	Static   analyzers.StaticAnalysisResult
	Packed   *packer.PackedContext
	Prior    []RoundContext
}

const strictRetryNotice = "Your previous response either referenced files that do not exist in this repository or left required fields empty. Only reference paths that appear in the file listing below, verbatim. If you are unsure, omit the claim rather than invent one."

func systemPreamble(roundName string, pc PromptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are generating the %q section of an engineering handover document for the repository %q.\n", roundName, pc.RepoName)
	b.WriteString("Base every factual claim strictly on the repository evidence provided below. Never invent file paths, import relationships, or directory names that are not listed.\n")
	b.WriteString("Respond with a single JSON object matching the provided schema. No prose outside the JSON.\n")
	if pc.Project.Description != "" {
		fmt.Fprintf(&b, "Maintainer-provided context (informational only, not a verifiable fact): %s\n", pc.Project.Description)
	}
	if pc.Business != nil {
		if section := pc.Business.ToPromptSection(); section != "" {
			b.WriteString("Maintainer-supplied project context (informational only, not a verifiable fact):\n")
			b.WriteString(section)
		}
	}
	return b.String()
}

// staticSummaryBlock renders the static analyzer facts most rounds need:
// file tree shape, dependency manifests, and test/doc coverage.
func staticSummaryBlock(s analyzers.StaticAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository stats: %d files, %d directories, %d lines, primary language %s.\n",
		s.FileTree.TotalFiles, s.FileTree.TotalDirs, s.FileTree.TotalLines, orUnknown(s.FileTree.PrimaryLanguage))

	if len(s.Dependencies.Manifests) > 0 {
		fmt.Fprintf(&b, "Dependency manifests found: %s\n", strings.Join(s.Dependencies.Manifests, ", "))
	}
	if len(s.Tests.Frameworks) > 0 {
		var names []string
		for _, f := range s.Tests.Frameworks {
			names = append(names, fmt.Sprintf("%s (%d files)", f.Name, f.FileCount))
		}
		fmt.Fprintf(&b, "Test frameworks detected: %s\n", strings.Join(names, ", "))
	}
	if s.Docs.HasReadme {
		b.WriteString("A README is present.\n")
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// packedFilesBlock renders the packed file selection as a prompt section:
// full content for TierFull files, extracted signatures for TierSignatures,
// and a bare path listing for everything skipped (so paths stay eligible
// for claim validation even when content didn't fit the budget).
func packedFilesBlock(packed *packer.PackedContext) string {
	if packed == nil {
		return ""
	}
	var full, sigs, skipped strings.Builder
	for _, f := range packed.Files {
		switch f.Tier {
		case packer.TierFull:
			fmt.Fprintf(&full, "--- %s ---\n%s\n", f.RelPath, f.Content)
		case packer.TierSignatures:
			fmt.Fprintf(&sigs, "--- %s (signatures) ---\n%s\n", f.RelPath, f.Content)
		default:
			fmt.Fprintf(&skipped, "%s\n", f.RelPath)
		}
	}

	var b strings.Builder
	if full.Len() > 0 {
		b.WriteString("## Full file contents\n")
		b.WriteString(full.String())
	}
	if sigs.Len() > 0 {
		b.WriteString("## File signatures\n")
		b.WriteString(sigs.String())
	}
	if skipped.Len() > 0 {
		b.WriteString("## Other known file paths (content omitted for budget; paths are real)\n")
		b.WriteString(skipped.String())
	}
	return b.String()
}

// priorContextBlock renders every earlier round's compressed context, in
// round order, so a later round can reference modules/findings an earlier
// round already established without re-sending its full output.
func priorContextBlock(prior []RoundContext) string {
	if len(prior) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Findings from earlier rounds\n")
	for i, rc := range prior {
		fmt.Fprintf(&b, "Round %d:\n", i+1)
		if len(rc.Modules) > 0 {
			fmt.Fprintf(&b, "  Modules: %s\n", strings.Join(rc.Modules, ", "))
		}
		for _, f := range rc.Findings {
			fmt.Fprintf(&b, "  Finding: %s\n", f)
		}
		for _, r := range rc.Relationships {
			fmt.Fprintf(&b, "  Relationship: %s\n", r)
		}
		for _, q := range rc.OpenQuestions {
			fmt.Fprintf(&b, "  Open question: %s\n", q)
		}
	}
	return b.String()
}

func buildMessages(systemPrompt string, sections ...string) []llm.Message {
	var user strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		user.WriteString(s)
		user.WriteString("\n")
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user.String()},
	}
}
