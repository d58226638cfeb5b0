package analyzers

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// AnalyzeDependencies parses every recognized manifest present in the
// repository. A malformed manifest is skipped with a warning rather than
// failing the whole analyzer.
func AnalyzeDependencies(ctx AnalysisContext) DependencyResult {
	var result DependencyResult

	for _, f := range ctx.Files {
		if !discover.IsManifest(f.RelPath) {
			continue
		}

		base := filepath.Base(f.RelPath)
		var deps []Dependency
		var err error

		switch base {
		case "go.mod":
			deps, err = parseGoMod(f.Path)
		case "package.json":
			deps, err = parsePackageJSON(f.Path)
		case "Cargo.toml":
			deps, err = parseCargoToml(f.Path)
		case "requirements.txt":
			deps, err = parseRequirementsTxt(f.Path)
		case "pyproject.toml":
			deps, err = parsePyprojectToml(f.Path)
		default:
			continue
		}

		if err != nil {
			result.Warnings = append(result.Warnings, base+": "+err.Error())
			continue
		}

		result.Manifests = append(result.Manifests, f.RelPath)
		for i := range deps {
			deps[i].Manifest = f.RelPath
		}
		result.Dependencies = append(result.Dependencies, deps...)
	}

	return result
}

var goModRequireLine = regexp.MustCompile(`^\s*([^\s]+)\s+(v[^\s]+)`)

func parseGoMod(path string) ([]Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []Dependency
	inRequire := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "require ("):
			inRequire = true
			continue
		case line == ")":
			inRequire = false
			continue
		case strings.HasPrefix(line, "require ") && !strings.Contains(line, "("):
			line = strings.TrimPrefix(line, "require ")
		case !inRequire:
			continue
		}
		line = strings.TrimSuffix(line, " // indirect")
		dev := strings.HasSuffix(scanner.Text(), "// indirect")
		if m := goModRequireLine.FindStringSubmatch(line); m != nil {
			deps = append(deps, Dependency{Name: m[1], Version: m[2], Dev: dev})
		}
	}
	return deps, scanner.Err()
}

func parsePackageJSON(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	var deps []Dependency
	for name, version := range parsed.Dependencies {
		deps = append(deps, Dependency{Name: name, Version: version, Dev: false})
	}
	for name, version := range parsed.DevDependencies {
		deps = append(deps, Dependency{Name: name, Version: version, Dev: true})
	}
	return deps, nil
}

var cargoDepLine = regexp.MustCompile(`^([A-Za-z0-9_\-]+)\s*=\s*"?([^"\s]*)"?`)

func parseCargoToml(path string) ([]Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []Dependency
	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			section = line
			continue
		}
		switch section {
		case "[dependencies]":
			if m := cargoDepLine.FindStringSubmatch(line); m != nil {
				deps = append(deps, Dependency{Name: m[1], Version: m[2], Dev: false})
			}
		case "[dev-dependencies]":
			if m := cargoDepLine.FindStringSubmatch(line); m != nil {
				deps = append(deps, Dependency{Name: m[1], Version: m[2], Dev: true})
			}
		}
	}
	return deps, scanner.Err()
}

var requirementLine = regexp.MustCompile(`^([A-Za-z0-9_\-.\[\]]+)\s*(==|>=|<=|~=|>|<)?\s*([^\s;#]*)`)

func parseRequirementsTxt(path string) ([]Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []Dependency
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if m := requirementLine.FindStringSubmatch(line); m != nil && m[1] != "" {
			deps = append(deps, Dependency{Name: m[1], Version: m[3]})
		}
	}
	return deps, scanner.Err()
}

func parsePyprojectToml(path string) ([]Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deps []Dependency
	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			section = line
			continue
		}
		if section == "[tool.poetry.dependencies]" || section == "[project.dependencies]" {
			if m := cargoDepLine.FindStringSubmatch(line); m != nil && m[1] != "python" {
				deps = append(deps, Dependency{Name: m[1], Version: m[2]})
			}
		}
		if section == "[tool.poetry.dev-dependencies]" || section == "[tool.poetry.group.dev.dependencies]" {
			if m := cargoDepLine.FindStringSubmatch(line); m != nil {
				deps = append(deps, Dependency{Name: m[1], Version: m[2], Dev: true})
			}
		}
	}
	return deps, scanner.Err()
}
