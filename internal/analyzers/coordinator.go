package analyzers

import (
	"sync"
	"time"
)

// analyzerName keys StaticAnalysisResult.Meta.
const (
	nameFileTree     = "file_tree"
	nameDependencies = "dependencies"
	nameGit          = "git"
	nameTODOs        = "todos"
	nameEnv          = "env"
	nameAST          = "ast"
	nameTests        = "tests"
	nameDocs         = "docs"
)

// Run executes all eight analyzers and aggregates their results into a
// single StaticAnalysisResult. Every slot is always populated; a single
// analyzer panicking is recovered and recorded as a failure rather than
// taking down the others, mirroring the teacher's batcher circuit-breaker
// idiom without the quota-exhaustion case (static analyzers make no
// network calls and have nothing to exhaust).
//
// The dependency analyzer runs first and synchronously because the test-
// framework analyzer consumes its output (a declared "jest"/"pytest"/etc.
// dependency is one of its three detection signals). Six of the remaining
// seven run concurrently, bounded by cfg.Analysis.Concurrency; the test-
// framework analyzer runs last, once those six have finished.
func Run(ctx AnalysisContext) StaticAnalysisResult {
	start := time.Now()
	result := StaticAnalysisResult{
		FileCount: len(ctx.Files),
		Meta:      make(map[string]AnalyzerMeta),
	}

	depsStart := time.Now()
	depsMeta := AnalyzerMeta{Success: true}
	func() {
		defer func() {
			if r := recover(); r != nil {
				depsMeta.Success = false
				depsMeta.Error = panicMessage(r)
			}
		}()
		result.Dependencies = AnalyzeDependencies(ctx)
	}()
	depsMeta.Elapsed = time.Since(depsStart)
	result.Meta[nameDependencies] = depsMeta

	concurrency := ctx.Config.Analysis.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	run := func(name string, fn func()) {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			elapsedStart := time.Now()
			meta := AnalyzerMeta{Success: true}
			func() {
				defer func() {
					if r := recover(); r != nil {
						meta.Success = false
						meta.Error = panicMessage(r)
					}
				}()
				fn()
			}()
			meta.Elapsed = time.Since(elapsedStart)
			mu.Lock()
			result.Meta[name] = meta
			mu.Unlock()
		}()
	}

	run(nameFileTree, func() { result.FileTree = AnalyzeFileTree(ctx) })
	run(nameGit, func() { result.Git = AnalyzeGit(ctx) })
	run(nameTODOs, func() { result.TODOs = AnalyzeTODOs(ctx) })
	run(nameEnv, func() { result.Env = AnalyzeEnv(ctx) })
	run(nameAST, func() { result.AST = AnalyzeAST(ctx) })
	run(nameDocs, func() { result.Docs = AnalyzeDocs(ctx) })

	wg.Wait()

	// Tests runs after the wait group so it can read the (now-settled)
	// dependency result without a data race; it has no other dependents.
	testsStart := time.Now()
	meta := AnalyzerMeta{Success: true}
	func() {
		defer func() {
			if r := recover(); r != nil {
				meta.Success = false
				meta.Error = panicMessage(r)
			}
		}()
		result.Tests = AnalyzeTests(ctx, result.Dependencies)
	}()
	meta.Elapsed = time.Since(testsStart)
	result.Meta[nameTests] = meta

	result.Elapsed = time.Since(start)
	return result
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "panic in analyzer"
}
