package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
)

// projectTypePatterns maps marker files to human-readable project types
// and a recommended include glob.
var projectTypePatterns = map[string]struct {
	Name    string
	Include string
}{
	"go.mod":           {Name: "Go", Include: "**/*.go"},
	"package.json":     {Name: "Node.js/TypeScript", Include: "**/*.{js,ts,jsx,tsx}"},
	"requirements.txt": {Name: "Python", Include: "**/*.py"},
	"pyproject.toml":   {Name: "Python", Include: "**/*.py"},
	"Cargo.toml":       {Name: "Rust", Include: "**/*.rs"},
	"pom.xml":          {Name: "Java", Include: "**/*.java"},
	"build.gradle":     {Name: "Java/Kotlin", Include: "**/*.{java,kt}"},
	"Gemfile":          {Name: "Ruby", Include: "**/*.rb"},
	"composer.json":    {Name: "PHP", Include: "**/*.php"},
	"*.csproj":         {Name: ".NET", Include: "**/*.cs"},
}

// detectProjectType checks the current directory for well-known project markers.
func detectProjectType() (name string, include string) {
	for marker, info := range projectTypePatterns {
		matches, _ := filepath.Glob(marker)
		if len(matches) > 0 {
			return info.Name, info.Include
		}
	}
	return "", "**"
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .handoverdoc.yml and
// collects the maintainer-asserted project metadata in SPEC_FULL's
// supplemented "interactive project-context collection" feature.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to handoverdoc! Let's configure your project.")
	fmt.Println()

	projType, defaultInclude := detectProjectType()
	if projType != "" {
		fmt.Printf("Detected project type: %s\n\n", projType)
	}

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{string(ProviderAnthropic), string(ProviderOpenAI), string(ProviderCompatible), string(ProviderOllama)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	model := DefaultModel(provider)
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: model,
	}
	model, err = modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}

	var baseURL string
	if provider == ProviderCompatible {
		baseURLPrompt := promptui.Prompt{
			Label: "Base URL for the OpenAI-compatible endpoint",
		}
		baseURL, err = baseURLPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
	}

	// 2. Audience.
	audiencePrompt := promptui.Select{
		Label: "Who is this documentation for?",
		Items: []string{
			"human — onboarding prose for new engineers",
			"ai    — dense, structured context for coding agents",
		},
	}
	audienceIdx, _, err := audiencePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("audience selection: %w", err)
	}
	audiences := []Audience{AudienceHuman, AudienceAI}
	audience := audiences[audienceIdx]

	// 3. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for generated docs",
		Default: "./handover",
	}
	output, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 4. Include patterns.
	includePrompt := promptui.Prompt{
		Label:   "Include patterns (comma-separated globs)",
		Default: defaultInclude,
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	include := splitAndTrim(includeStr)

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	exclude := DefaultExcludes
	if excludeStr != "" {
		exclude = append(exclude, splitAndTrim(excludeStr)...)
	}

	// 6. Project metadata — supplementary context for round prompts, never
	// treated as a factual claim by the Claim Validator.
	project, err := collectProjectMetadata()
	if err != nil {
		return nil, fmt.Errorf("project metadata: %w", err)
	}

	cfg := &Config{
		Provider:   provider,
		Model:      model,
		APIKeyEnv:  APIKeyEnvVar(provider),
		AuthMethod: AuthAPIKey,
		BaseURL:    baseURL,
		TimeoutMS:  120_000,

		Output:   output,
		Audience: audience,
		Include:  include,
		Exclude:  exclude,

		Project: project,

		Analysis: AnalysisConfig{
			Concurrency: 4,
		},
		CostWarningThreshold: 5.0,
	}

	envVar := APIKeyEnvVar(provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: set %s in your environment before running handoverdoc generate.\n", envVar)
	}

	configPath := ".handoverdoc.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// collectProjectMetadata prompts for the maintainer-asserted project facts
// that round prompts read as supplementary context.
func collectProjectMetadata() (ProjectConfig, error) {
	namePrompt := promptui.Prompt{Label: "Project name", Default: filepath.Base(mustGetwd())}
	name, err := namePrompt.Run()
	if err != nil {
		return ProjectConfig{}, err
	}

	descPrompt := promptui.Prompt{Label: "One-line description (optional)"}
	desc, err := descPrompt.Run()
	if err != nil {
		desc = ""
	}

	domainPrompt := promptui.Prompt{Label: "Domain (e.g. fintech, devtools, e-commerce; optional)"}
	domain, err := domainPrompt.Run()
	if err != nil {
		domain = ""
	}

	teamPrompt := promptui.Prompt{Label: "Team size (optional)"}
	team, err := teamPrompt.Run()
	if err != nil {
		team = ""
	}

	deployPrompt := promptui.Prompt{Label: "Deploy target (e.g. kubernetes, lambda, on-prem; optional)"}
	deploy, err := deployPrompt.Run()
	if err != nil {
		deploy = ""
	}

	return ProjectConfig{
		Name:         name,
		Description:  desc,
		Domain:       domain,
		TeamSize:     team,
		DeployTarget: deploy,
	}, nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "project"
	}
	return wd
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			token := trimSpace(s[start:i])
			if token != "" {
				result = append(result, token)
			}
			start = i + 1
		}
	}
	return result
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
