package analyzers

import (
	"path/filepath"
	"strings"
)

// testFileBasenamePatterns maps each framework to its test-file basename
// conventions. Basename convention is the first of three detection signals;
// config-file presence and a declared dependency follow.
var testFileBasenamePatterns = []struct {
	framework string
	suffixes  []string
}{
	{"go test", []string{"_test.go"}},
	{"jest", []string{".test.js", ".test.ts", ".test.jsx", ".test.tsx", ".spec.js", ".spec.ts"}},
	{"pytest", []string{"_test.py", "test_*.py"}},
	{"rspec", []string{"_spec.rb"}},
}

var testConfigFiles = map[string]string{
	"jest.config.js":  "jest",
	"jest.config.ts":  "jest",
	"vitest.config.ts": "vitest",
	"pytest.ini":       "pytest",
	"phpunit.xml":      "phpunit",
	".rspec":           "rspec",
}

var testDependencyNames = map[string]string{
	"jest":        "jest",
	"vitest":      "vitest",
	"mocha":       "mocha",
	"pytest":      "pytest",
	"rspec":       "rspec",
	"phpunit/phpunit": "phpunit",
	"testify":     "go test",
}

// AnalyzeTests detects which test frameworks a repository uses and counts
// an approximate number of test files per framework. Basename convention is
// checked first since it is the strongest signal; a framework found only
// through a config file or a declared dependency is added with a file count
// of 0, and one already detected by basename keeps its count.
func AnalyzeTests(ctx AnalysisContext, deps DependencyResult) TestsResult {
	counts := make(map[string]int)

	for _, f := range ctx.Files {
		base := filepath.Base(f.RelPath)
		matched := false
		for _, p := range testFileBasenamePatterns {
			for _, suffix := range p.suffixes {
				if strings.HasPrefix(suffix, "test_") {
					if strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py") {
						counts[p.framework]++
						matched = true
					}
					continue
				}
				if strings.HasSuffix(base, suffix) {
					counts[p.framework]++
					matched = true
				}
			}
			if matched {
				break
			}
		}
	}

	for _, f := range ctx.Files {
		if framework, ok := testConfigFiles[filepath.Base(f.RelPath)]; ok {
			if _, present := counts[framework]; !present {
				counts[framework] = 0
			}
		}
	}

	for _, d := range deps.Dependencies {
		if framework, ok := testDependencyNames[strings.ToLower(d.Name)]; ok {
			if _, present := counts[framework]; !present {
				counts[framework] = 0
			}
		}
	}

	result := TestsResult{}
	total := 0
	for name, count := range counts {
		result.Frameworks = append(result.Frameworks, TestFramework{Name: name, FileCount: count})
		total += count
	}
	result.TotalTestFiles = total
	return result
}
