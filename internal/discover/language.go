package discover

import (
	"path/filepath"
	"strings"
)

// extensionToLanguage maps file extensions to language names.
var extensionToLanguage = map[string]string{
	".go":       "Go",
	".py":       "Python",
	".pyi":      "Python",
	".ts":       "TypeScript",
	".tsx":      "TypeScript",
	".mts":      "TypeScript",
	".js":       "JavaScript",
	".jsx":      "JavaScript",
	".mjs":      "JavaScript",
	".cjs":      "JavaScript",
	".java":     "Java",
	".rs":       "Rust",
	".c":        "C",
	".h":        "C",
	".cpp":      "C++",
	".cc":       "C++",
	".cxx":      "C++",
	".hpp":      "C++",
	".hxx":      "C++",
	".cs":       "C#",
	".rb":       "Ruby",
	".php":      "PHP",
	".swift":    "Swift",
	".kt":       "Kotlin",
	".kts":      "Kotlin",
	".scala":    "Scala",
	".sc":       "Scala",
	".sh":       "Shell",
	".bash":     "Shell",
	".zsh":      "Shell",
	".sql":      "SQL",
	".html":     "HTML",
	".htm":      "HTML",
	".css":      "CSS",
	".scss":     "CSS",
	".sass":     "CSS",
	".less":     "CSS",
	".yaml":     "YAML",
	".yml":      "YAML",
	".json":     "JSON",
	".toml":     "TOML",
	".tf":       "Terraform",
	".tfvars":   "Terraform",
	".md":       "Markdown",
	".markdown": "Markdown",
	".proto":    "Protobuf",
}

// filenameToLanguage maps specific filenames to language names.
var filenameToLanguage = map[string]string{
	"Dockerfile":          "Dockerfile",
	"Makefile":            "Makefile",
	"Jenkinsfile":         "Groovy",
	"Vagrantfile":         "Ruby",
	"Gemfile":             "Ruby",
	"Rakefile":            "Ruby",
	".gitignore":          "Git",
	".dockerignore":       "Docker",
	"docker-compose.yml":  "YAML",
	"docker-compose.yaml": "YAML",
}

// manifestFiles are build-manifest markers the dependency-graph analyzer
// parses; DetectLanguage classifies them by extension like any other file
// (package.json as JSON, Cargo.toml/pyproject.toml as TOML, the rest as
// "unknown") rather than as a special "manifest" pseudo-language.
var manifestFiles = map[string]bool{
	"go.mod":           true,
	"package.json":     true,
	"Cargo.toml":       true,
	"requirements.txt": true,
	"pyproject.toml":   true,
	"pom.xml":          true,
	"build.gradle":     true,
}

// IsManifest reports whether the given relative path is a recognized
// dependency manifest.
func IsManifest(relPath string) bool {
	return manifestFiles[filepath.Base(relPath)]
}

// DetectLanguage returns the programming language for a given filename
// based on its extension or exact filename. Returns "unknown" for
// unrecognized files.
func DetectLanguage(filename string) string {
	base := filepath.Base(filename)

	if lang, ok := filenameToLanguage[base]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "unknown"
	}

	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}

	return "unknown"
}
