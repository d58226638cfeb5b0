package analyzers

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// docsSampleLimit caps how many files the coverage estimate inspects, per
// spec §4.2 ("inline-doc coverage sampled from up to 100 files").
const docsSampleLimit = 100

var docCommentPrefixes = map[string][]string{
	".go":   {"//", "/*"},
	".js":   {"//", "/**", "/*"},
	".ts":   {"//", "/**", "/*"},
	".jsx":  {"//", "/**", "/*"},
	".tsx":  {"//", "/**", "/*"},
	".py":   {"#", `"""`, "'''"},
	".rb":   {"#"},
	".java": {"//", "/**", "/*"},
}

// AnalyzeDocs estimates documentation coverage: README presence, a docs/
// directory, and a per-file sample checking whether a declaration appears
// to be preceded by a comment block.
func AnalyzeDocs(ctx AnalysisContext) DocsResult {
	result := DocsResult{}

	var candidates []string
	for _, f := range ctx.Files {
		base := strings.ToLower(filepath.Base(f.RelPath))
		if strings.HasPrefix(base, "readme") {
			result.HasReadme = true
		}
		if isDocsDir(f.RelPath) {
			result.HasDocsFolder = true
		}
		if f.ContentSkipped {
			continue
		}
		if _, ok := docCommentPrefixes[filepath.Ext(f.RelPath)]; ok {
			candidates = append(candidates, f.Path)
		}
	}

	if len(candidates) > docsSampleLimit {
		candidates = candidates[:docsSampleLimit]
	}

	documented := 0
	for _, path := range candidates {
		if fileLooksDocumented(path) {
			documented++
		}
	}

	result.SampledFiles = len(candidates)
	result.DocumentedFiles = documented
	if result.SampledFiles > 0 {
		result.CoverageFraction = float64(documented) / float64(result.SampledFiles)
	}
	return result
}

func isDocsDir(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		lower := strings.ToLower(part)
		if lower == "docs" || lower == "doc" {
			return true
		}
	}
	return false
}

// fileLooksDocumented reports whether the file's first non-blank,
// non-package/import line is preceded by a comment — a coarse proxy for
// "this declaration has a doc comment", not a language-aware check.
func fileLooksDocumented(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	sawComment := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") ||
			strings.HasPrefix(line, `"""`) || strings.HasPrefix(line, "'''") {
			sawComment = true
			continue
		}
		if strings.HasPrefix(line, "package ") || strings.HasPrefix(line, "import ") {
			continue
		}
		return sawComment
	}
	return sawComment
}
