package pipeline

import (
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// ClaimKind identifies what kind of factual assertion a Claim represents.
type ClaimKind string

const (
	ClaimFilePath   ClaimKind = "file_path"
	ClaimImportEdge ClaimKind = "import_edge"
	ClaimModuleRoot ClaimKind = "module_root"
)

// Claim is one factual assertion extracted from a round's output, ready to
// be checked against the static result. A claim with no factual payload
// (pure narrative prose) is never constructed — callers only emit claims
// for fields the schema marks as referencing the repository itself.
type Claim struct {
	Kind  ClaimKind
	Value string
}

// ClaimSource is implemented by every round output type so the validator
// can extract its factual claims without a type switch per round.
type ClaimSource interface {
	Claims() []Claim
}

// ValidationResult is the validator's verdict for one round (§3).
type ValidationResult struct {
	ValidClaims   int
	InvalidClaims int
	DropRate      float64
}

// StaticFacts is the subset of the static analysis result the validator
// checks claims against: known file paths, known directories (candidate
// module roots), and the import edges the AST analyzer discovered.
type StaticFacts struct {
	Paths map[string]bool
	Dirs  map[string]bool
	Edges map[string]bool // "from -> to" lowercase-normalized
}

// BuildStaticFacts derives the validator's ground truth from one run's
// static analysis result and file list.
func BuildStaticFacts(result analyzers.StaticAnalysisResult, files []discover.FileInfo) StaticFacts {
	facts := StaticFacts{
		Paths: make(map[string]bool, len(files)),
		Dirs:  make(map[string]bool),
		Edges: make(map[string]bool),
	}
	for _, f := range files {
		facts.Paths[f.RelPath] = true
		for dir := dirOf(f.RelPath); dir != "" && dir != "."; dir = dirOf(dir) {
			facts.Dirs[dir] = true
		}
	}
	for _, fs := range result.AST.Files {
		for _, sym := range fs.Symbols {
			if sym.Kind != "import" {
				continue
			}
			facts.Edges[normalizeEdge(fs.RelPath, sym.Name)] = true
		}
	}
	return facts
}

func dirOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func normalizeEdge(from, to string) string {
	return strings.ToLower(from) + " -> " + strings.ToLower(strings.Trim(to, `"'`))
}

// Validate checks every claim an LLM round output asserts against the
// static facts and returns a drop rate: invalidClaims / total, 0 when
// there are no factual claims at all (§3 invariant).
func Validate(src ClaimSource, facts StaticFacts) ValidationResult {
	var result ValidationResult
	for _, claim := range src.Claims() {
		if claimValid(claim, facts) {
			result.ValidClaims++
		} else {
			result.InvalidClaims++
		}
	}
	total := result.ValidClaims + result.InvalidClaims
	if total > 0 {
		result.DropRate = float64(result.InvalidClaims) / float64(total)
	}
	return result
}

func claimValid(c Claim, facts StaticFacts) bool {
	switch c.Kind {
	case ClaimFilePath:
		return facts.Paths[c.Value]
	case ClaimModuleRoot:
		return facts.Dirs[c.Value] || facts.Paths[c.Value]
	case ClaimImportEdge:
		return facts.Edges[strings.ToLower(c.Value)]
	default:
		return false
	}
}

// DropRateThreshold is the spec's fixed acceptance threshold (§4.5, §9).
const DropRateThreshold = 0.3
