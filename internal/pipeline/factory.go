package pipeline

import (
	"encoding/json"

	"github.com/ziadkadry99/handoverdoc/internal/llm"
)

// defaultRoundMaxOutputTokens bounds each round's structured response; wide
// enough for a few dozen modules/features/edge cases without letting a
// misbehaving model run away with the output budget.
const defaultRoundMaxOutputTokens = 4096

func decodeR1(contentJSON string) (RoundOutput, error) {
	var out R1Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeR2(contentJSON string) (RoundOutput, error) {
	var out R2Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeR3(contentJSON string) (RoundOutput, error) {
	var out R3Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeR4(contentJSON string) (RoundOutput, error) {
	var out R4Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeR5(contentJSON string) (RoundOutput, error) {
	var out R5Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeR6(contentJSON string) (RoundOutput, error) {
	var out R6Output
	if err := json.Unmarshal([]byte(contentJSON), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildR1Spec is Round 1 — Overview (§4.9): project identity, purpose, tech
// stack, entry points. No prior round context to draw on.
func BuildR1Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Overview", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	return RoundSpec{
		Number: 1,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "Identify the project's name, its purpose in one or two sentences, the technology stack in use, and its entry point files."
			sections := []string{static, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r1Schema,
		Decode:          decodeR1,
		Fallback:        func() RoundOutput { return FallbackR1(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildR2Spec is Round 2 — Modules (§4.9): module boundaries derived from
// the file tree and Round 1's entry points.
func BuildR2Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Modules", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	prior := priorContextBlock(pc.Prior)
	return RoundSpec{
		Number: 2,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "Group the repository's files into logical modules. For each module, give its name, its purpose, and the list of file paths that belong to it. Every file path you cite must appear in the file listing above, exactly as written."
			sections := []string{static, prior, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r2Schema,
		Decode:          decodeR2,
		Fallback:        func() RoundOutput { return FallbackR2(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildR3Spec is Round 3 — Features & cross-cutting concerns, building on
// Round 1 and Round 2's module boundaries.
func BuildR3Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Features", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	prior := priorContextBlock(pc.Prior)
	return RoundSpec{
		Number: 3,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "List the user-facing or internal features this codebase implements, and any cross-cutting concerns (logging, auth, configuration, etc.) that span multiple modules. Cite real file paths for each feature where possible."
			sections := []string{static, prior, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r3Schema,
		Decode:          decodeR3,
		Fallback:        func() RoundOutput { return FallbackR3(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildR4Spec is Round 4 — Architecture: named patterns, layering, and
// module-to-module relationships, the one round whose claims the validator
// checks against the AST analyzer's import edges.
func BuildR4Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Architecture", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	prior := priorContextBlock(pc.Prior)
	return RoundSpec{
		Number: 4,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "Name the architectural patterns in use (e.g. layered, hexagonal, pipeline), the layers/modules present, and the directed relationships between them (which module imports or calls which). Every relationship must reflect an import you can see in the file contents above."
			sections := []string{static, prior, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r4Schema,
		Decode:          decodeR4,
		Fallback:        func() RoundOutput { return FallbackR4(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildR5Spec is Round 5 — Edge cases & conventions.
func BuildR5Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Edge cases & conventions", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	prior := priorContextBlock(pc.Prior)
	return RoundSpec{
		Number: 5,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "Document edge cases this codebase explicitly handles (grounded in specific files), repo-wide coding or process conventions you can observe, and any open questions a new maintainer would need answered."
			sections := []string{static, prior, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r5Schema,
		Decode:          decodeR5,
		Fallback:        func() RoundOutput { return FallbackR5(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildR6Spec is Round 6 — Deployment & infrastructure, the final round.
func BuildR6Spec(model string, pc PromptContext, fb FallbackInput) RoundSpec {
	system := systemPreamble("Deployment & infrastructure", pc)
	static := staticSummaryBlock(pc.Static)
	files := packedFilesBlock(pc.Packed)
	prior := priorContextBlock(pc.Prior)
	return RoundSpec{
		Number: 6,
		Model:  model,
		BuildPrompt: func(stricter bool) []llm.Message {
			instruction := "Identify deployment targets, infrastructure, and CI/CD systems this project uses, based on manifests, Dockerfiles, and workflow configuration you can see. Raise open questions for anything ambiguous rather than guessing."
			sections := []string{static, prior, files, instruction}
			if stricter {
				sections = append(sections, strictRetryNotice)
			}
			return buildMessages(system, sections...)
		},
		Schema:          r6Schema,
		Decode:          decodeR6,
		Fallback:        func() RoundOutput { return FallbackR6(fb) },
		MaxOutputTokens: defaultRoundMaxOutputTokens,
	}
}

// BuildAllRoundSpecs returns every round's spec in execution order (1..6).
func BuildAllRoundSpecs(model string, pc PromptContext, fb FallbackInput) []RoundSpec {
	return []RoundSpec{
		BuildR1Spec(model, pc, fb),
		BuildR2Spec(model, pc, fb),
		BuildR3Spec(model, pc, fb),
		BuildR4Spec(model, pc, fb),
		BuildR5Spec(model, pc, fb),
		BuildR6Spec(model, pc, fb),
	}
}
