package analyzers

import (
	"bufio"
	"os"
	"regexp"
	"sync"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// astBatchSize matches the teacher's file-analyzer batching idiom (batched
// processing of 30 files at a time with deterministic resource release).
const astBatchSize = 30

// Real per-language AST grammars are an out-of-scope external collaborator
// (spec §1); these are lexical heuristics, not a parser, and are only
// expected to find the common declaration shapes.
var symbolPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"function", regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
	{"function", regexp.MustCompile(`^\s*(?:export\s+)?(?:async\s+)?function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
	{"function", regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
	{"class", regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)},
	{"class", regexp.MustCompile(`^\s*(?:type)\s+([A-Za-z_][A-Za-z0-9_]*)\s+struct\b`)},
	{"class", regexp.MustCompile(`^\s*(?:type)\s+([A-Za-z_][A-Za-z0-9_]*)\s+interface\b`)},
	{"import", regexp.MustCompile(`^\s*import\s+(?:\(|["'])?([A-Za-z0-9_./"'-]+)`)},
	{"import", regexp.MustCompile(`^\s*from\s+([A-Za-z0-9_.]+)\s+import\b`)},
	{"export", regexp.MustCompile(`^\s*export\s+(?:const|let|var)\s+([A-Za-z_][A-Za-z0-9_]*)`)},
}

// AnalyzeAST extracts a heuristic per-file symbol set — functions, classes,
// imports, exports — processing files in batches so peak memory stays
// bounded. A single file's failure is isolated and recorded, never aborting
// the batch.
func AnalyzeAST(ctx AnalysisContext) ASTResult {
	var candidates []discover.FileInfo
	for _, f := range ctx.Files {
		if f.ContentSkipped || f.IsBinary {
			continue
		}
		candidates = append(candidates, f)
	}

	result := ASTResult{}
	var mu sync.Mutex

	for start := 0; start < len(candidates); start += astBatchSize {
		end := start + astBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		var wg sync.WaitGroup
		for _, fi := range batch {
			wg.Add(1)
			go func(fi discover.FileInfo) {
				defer wg.Done()
				symbols, err := extractSymbols(fi.Path)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed = append(result.Failed, fi.RelPath)
					return
				}
				if len(symbols) > 0 {
					result.Files = append(result.Files, FileSymbols{RelPath: fi.RelPath, Symbols: symbols})
				}
			}(fi)
		}
		wg.Wait()
	}

	return result
}

func extractSymbols(path string) ([]Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var symbols []Symbol
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, sp := range symbolPatterns {
			if m := sp.pattern.FindStringSubmatch(line); m != nil {
				symbols = append(symbols, Symbol{Name: m[1], Kind: sp.kind, Line: lineNo})
			}
		}
	}
	return symbols, scanner.Err()
}
