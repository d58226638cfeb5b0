// Package analyzers implements the eight independent static analyzers that
// produce the facts the rest of the pipeline reasons over: no LLM calls,
// no network access beyond local git plumbing.
package analyzers

import (
	"time"

	"github.com/ziadkadry99/handoverdoc/internal/config"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// AnalysisContext is the shared, read-only input every analyzer receives.
// Nothing in it is mutated after the coordinator builds it.
type AnalysisContext struct {
	RootDir string
	Files   []discover.FileInfo
	Config  *config.Config
}

// FileTreeResult summarizes the shape of the repository.
type FileTreeResult struct {
	TotalFiles        int
	TotalDirs         int
	TotalLines        int
	TotalBytes        int64
	ExtensionCounts   map[string]int
	LargestFiles      []LargestFile
	Tree              []TreeNode // capped to 3 levels
	PrimaryLanguage   string
}

// LargestFile is one entry in the file-tree analyzer's top-N list.
type LargestFile struct {
	RelPath string
	Size    int64
}

// TreeNode is one directory level in the capped directory tree.
type TreeNode struct {
	Name     string
	IsDir    bool
	Children []TreeNode
}

// Dependency is a single production or development dependency declared in
// a manifest file.
type Dependency struct {
	Name       string
	Version    string
	Dev        bool
	Manifest   string // e.g. "go.mod", "package.json"
}

// DependencyResult is the union of every manifest the dependency analyzer
// could parse. Malformed manifests are skipped with a warning, never fatal.
type DependencyResult struct {
	Dependencies []Dependency
	Manifests    []string // manifests successfully parsed
	Warnings     []string // manifests found but unparseable
}

// Contributor is one author found in the commit log.
type Contributor struct {
	Name    string
	Commits int
}

// FileOwnership records the dominant author for one of the top churned files.
type FileOwnership struct {
	RelPath string
	Author  string
	Commits int
}

// GitResult is the git-history analyzer's output. Empty (all zero-value)
// when the repository is not under git.
type GitResult struct {
	IsGitRepo      bool
	CurrentBranch  string
	BranchStrategy string // "git-flow", "trunk-based", "feature-branch", "unknown"
	Branches       []string
	CommitCount    int
	SinceDate      time.Time
	Churn          map[string]int // relPath -> number of changed lines
	Contributors   []Contributor
	Ownership      []FileOwnership // top 30 most-changed files only
}

// TODOCategory classifies a marker's intent.
type TODOCategory string

const (
	CategoryBugs         TODOCategory = "bugs"
	CategoryTasks        TODOCategory = "tasks"
	CategoryNotes        TODOCategory = "notes"
	CategoryDebt         TODOCategory = "debt"
	CategoryOptimization TODOCategory = "optimization"
)

// TODOMatch is a single marker occurrence.
type TODOMatch struct {
	Marker    string
	Category  TODOCategory
	Text      string
	RelPath   string
	Line      int
	IssueRefs []string // e.g. "#123", "PROJ-42"
}

// TODOResult is the TODO-scan analyzer's output.
type TODOResult struct {
	Matches []TODOMatch
	Counts  map[TODOCategory]int
}

// EnvFile is one discovered .env* file.
type EnvFile struct {
	RelPath string
}

// EnvReference is a single env-var reference found in source.
type EnvReference struct {
	Name     string
	RelPath  string
	Line     int
	Language string
}

// EnvResult is the env-scan analyzer's output.
type EnvResult struct {
	EnvFiles   []EnvFile
	References []EnvReference
}

// Symbol is a single function, class, import, or export discovered by the
// (regex-heuristic, not a real parser) AST extraction analyzer.
type Symbol struct {
	Name string
	Kind string // "function", "class", "import", "export"
	Line int
}

// FileSymbols is the symbol set for a single file.
type FileSymbols struct {
	RelPath string
	Symbols []Symbol
}

// ASTResult is the AST-extraction analyzer's output.
type ASTResult struct {
	Files  []FileSymbols
	Failed []string // relPaths that failed extraction, isolated from the rest
}

// TestFramework is a detected testing framework and its approximate file
// count.
type TestFramework struct {
	Name      string
	FileCount int
}

// TestsResult is the test-detection analyzer's output.
type TestsResult struct {
	Frameworks    []TestFramework
	TotalTestFiles int
}

// DocsResult is the documentation-coverage analyzer's output.
type DocsResult struct {
	HasReadme          bool
	HasDocsFolder      bool
	SampledFiles       int // up to 100
	DocumentedFiles    int
	CoverageFraction   float64
}

// AnalyzerMeta records whether a single analyzer's slot succeeded.
type AnalyzerMeta struct {
	Success bool
	Error   string
	Elapsed time.Duration
}

// StaticAnalysisResult is the union of all eight analyzer outputs. Every
// slot is always populated (with a zero value on failure), never absent.
type StaticAnalysisResult struct {
	FileTree     FileTreeResult
	Dependencies DependencyResult
	Git          GitResult
	TODOs        TODOResult
	Env          EnvResult
	AST          ASTResult
	Tests        TestsResult
	Docs         DocsResult

	FileCount int
	Elapsed   time.Duration
	Meta      map[string]AnalyzerMeta // keyed by analyzer name
}
