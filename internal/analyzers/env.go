package analyzers

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// envVarPatterns covers env-var reference syntax across four language
// families, per spec §4.2.
var envVarPatterns = []struct {
	language string
	pattern  *regexp.Regexp
}{
	{"Go", regexp.MustCompile(`os\.Getenv\(\s*"([A-Za-z_][A-Za-z0-9_]*)"\s*\)`)},
	{"JavaScript", regexp.MustCompile(`process\.env\.([A-Za-z_][A-Za-z0-9_]*)`)},
	{"JavaScript", regexp.MustCompile(`process\.env\[\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]\s*\]`)},
	{"Python", regexp.MustCompile(`os\.environ(?:\.get)?\(?\[?['"]([A-Za-z_][A-Za-z0-9_]*)['"]\]?\)?`)},
	{"Ruby", regexp.MustCompile(`ENV\[\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]\s*\]`)},
}

// AnalyzeEnv finds .env* files and lexically scans source for env-var
// references. It never parses .env files as secrets — only lists the
// filenames.
func AnalyzeEnv(ctx AnalysisContext) EnvResult {
	var result EnvResult

	for _, f := range ctx.Files {
		base := filepath.Base(f.RelPath)
		if strings.HasPrefix(base, ".env") {
			result.EnvFiles = append(result.EnvFiles, EnvFile{RelPath: f.RelPath})
			continue
		}

		if f.ContentSkipped {
			continue
		}

		file, err := os.Open(f.Path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			for _, p := range envVarPatterns {
				for _, m := range p.pattern.FindAllStringSubmatch(line, -1) {
					result.References = append(result.References, EnvReference{
						Name:     m[1],
						RelPath:  f.RelPath,
						Line:     lineNo,
						Language: p.language,
					})
				}
			}
		}
		file.Close()
	}

	return result
}
