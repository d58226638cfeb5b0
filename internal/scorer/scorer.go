package scorer

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// Signal weights. These are a design-level default, not a tuned constant
// from any single source; each signal is normalized to roughly [0, 1]
// before the weight is applied so no single analyzer can dominate the
// ranking just because its raw numbers run larger.
const (
	weightEntryPoint        = 25.0
	weightImportIndegree    = 20.0
	weightGitChurn          = 15.0
	weightTODODensity       = 10.0
	weightDocAdjacency      = 5.0
	weightPinBoost          = 20.0
	weightLanguageRelevance = 5.0
)

// Score ranks every file in files by a weighted sum of importance signals
// and returns them sorted score-descending, ties broken path-ascending.
func Score(files []discover.FileInfo, result analyzers.StaticAnalysisResult) []ScoredFile {
	indegree := importIndegree(result.AST, files)
	todoCounts := todoCountsByPath(result.TODOs)
	maxChurn := maxChurn(result.Git.Churn)
	maxIndegree := maxInt(indegree)
	maxTODO := maxInt(todoCounts)
	dirsWithDocs := directoriesWithDocs(files)

	scored := make([]ScoredFile, 0, len(files))
	for _, f := range files {
		signals := Signals{
			EntryPoint:        boolSignal(analyzers.IsEntryPoint(f.RelPath)),
			ImportIndegree:    normalize(indegree[f.RelPath], maxIndegree),
			GitChurn:          normalize(result.Git.Churn[f.RelPath], maxChurn),
			TODODensity:       normalize(todoCounts[f.RelPath], maxTODO),
			DocAdjacency:      boolSignal(dirsWithDocs[filepath.Dir(f.RelPath)]),
			PinBoost:          pinBoostSignal(f),
			LanguageRelevance: boolSignal(f.Language != "" && f.Language == result.FileTree.PrimaryLanguage),
		}

		score := signals.EntryPoint*weightEntryPoint +
			signals.ImportIndegree*weightImportIndegree +
			signals.GitChurn*weightGitChurn +
			signals.TODODensity*weightTODODensity +
			signals.DocAdjacency*weightDocAdjacency +
			signals.PinBoost*weightPinBoost +
			signals.LanguageRelevance*weightLanguageRelevance

		scored = append(scored, ScoredFile{FileInfo: f, Score: score, Signals: signals})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].RelPath < scored[j].RelPath
	})
	return scored
}

// importIndegree approximates inbound-import count per file: for every
// import symbol discovered anywhere by the AST analyzer, every candidate
// file whose path stem matches the imported name earns one inbound edge.
// This is a heuristic, not real import-graph resolution, since the AST
// analyzer itself only extracts symbols lexically.
func importIndegree(ast analyzers.ASTResult, files []discover.FileInfo) map[string]int {
	stems := make(map[string][]string) // path stem -> candidate relPaths
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f.RelPath), filepath.Ext(f.RelPath))
		stems[stem] = append(stems[stem], f.RelPath)
	}

	indegree := make(map[string]int)
	for _, fs := range ast.Files {
		for _, sym := range fs.Symbols {
			if sym.Kind != "import" {
				continue
			}
			base := filepath.Base(strings.Trim(sym.Name, `"'`))
			base = strings.TrimSuffix(base, filepath.Ext(base))
			for _, candidate := range stems[base] {
				if candidate != fs.RelPath {
					indegree[candidate]++
				}
			}
		}
	}
	return indegree
}

func todoCountsByPath(result analyzers.TODOResult) map[string]int {
	counts := make(map[string]int)
	for _, m := range result.Matches {
		counts[m.RelPath]++
	}
	return counts
}

// directoriesWithDocs marks a directory as doc-adjacent when it contains a
// README or markdown file, so sibling source files get a small boost.
func directoriesWithDocs(files []discover.FileInfo) map[string]bool {
	dirs := make(map[string]bool)
	for _, f := range files {
		base := strings.ToLower(filepath.Base(f.RelPath))
		if strings.HasPrefix(base, "readme") || strings.HasSuffix(base, ".md") {
			dirs[filepath.Dir(f.RelPath)] = true
		}
	}
	return dirs
}

func pinBoostSignal(f discover.FileInfo) float64 {
	switch {
	case f.Pinned:
		return 1.0
	case f.Boosted:
		return 0.5
	default:
		return 0.0
	}
}

func boolSignal(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func normalize(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func maxInt(m map[string]int) int {
	max := 0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	return max
}

func maxChurn(m map[string]int) int {
	return maxInt(m)
}
