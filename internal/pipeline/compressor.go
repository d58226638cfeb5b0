package pipeline

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/tokenizer"
)

// RoundContext is a deterministic compression of a round's output (§3,
// §4.8): just enough for a downstream round's prompt to reference what an
// earlier round found, without re-sending the full structured payload.
type RoundContext struct {
	Modules       []string
	Findings      []string
	Relationships []string
	OpenQuestions []string
	TokenCount    int
}

// DefaultCompressorBudget is the compressor's token ceiling (§4.5, §9).
const DefaultCompressorBudget = 2000

// Compress reduces a round's raw JSON output (as decoded into
// map[string]any) to a RoundContext using field extraction only — no LLM
// call, no narrative generation (§4.8). It tolerates both string and
// object entries in the same field and the source's "findings" /
// "keyFindings" field-naming inconsistency (§9), preserved deliberately
// for cross-round compatibility.
//
// Compress is deterministic: the same input map produces byte-identical
// output, and compress(compress(x)) == compress(x) once a RoundContext is
// round-tripped back through ToRaw.
func Compress(raw map[string]any, budget int, counter tokenizer.Counter) RoundContext {
	if budget <= 0 {
		budget = DefaultCompressorBudget
	}
	if counter == nil {
		counter = tokenizer.NewEstimator()
	}

	rc := RoundContext{
		Modules:       extractModules(raw),
		Findings:      extractStringList(raw, "findings", "keyFindings"),
		Relationships: extractRelationships(raw),
		OpenQuestions: extractStringList(raw, "open_questions", "openQuestions"),
	}

	// Truncate in the spec's declared order: open questions first, then
	// findings (keeping at least one if any existed), then relationships,
	// then modules.
	for render(rc, counter) > budget {
		switch {
		case len(rc.OpenQuestions) > 0:
			rc.OpenQuestions = rc.OpenQuestions[:len(rc.OpenQuestions)-1]
		case len(rc.Findings) > 1:
			rc.Findings = rc.Findings[:len(rc.Findings)-1]
		case len(rc.Relationships) > 0:
			rc.Relationships = rc.Relationships[:len(rc.Relationships)-1]
		case len(rc.Modules) > 0:
			rc.Modules = rc.Modules[:len(rc.Modules)-1]
		default:
			goto done
		}
	}
done:
	rc.TokenCount = render(rc, counter)
	return rc
}

// render produces the compact text rendering used both for the final
// RoundContext.TokenCount and for measuring truncation progress.
func render(rc RoundContext, counter tokenizer.Counter) int {
	var b strings.Builder
	if len(rc.Modules) > 0 {
		fmt.Fprintf(&b, "Modules: %s\n", strings.Join(rc.Modules, ", "))
	}
	for _, f := range rc.Findings {
		fmt.Fprintf(&b, "Finding: %s\n", f)
	}
	for _, r := range rc.Relationships {
		fmt.Fprintf(&b, "Relationship: %s\n", r)
	}
	for _, q := range rc.OpenQuestions {
		fmt.Fprintf(&b, "Open question: %s\n", q)
	}
	return counter.Count(b.String())
}

// extractModules accepts either a list of bare strings or {"name": ...}
// objects under "modules".
func extractModules(raw map[string]any) []string {
	items, ok := raw["modules"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if name, ok := v["name"].(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

// extractStringList reads a string-or-object list under the first of the
// given aliases that is present, accepting "name"/"description"/"text" as
// the object's narrative field.
func extractStringList(raw map[string]any, aliases ...string) []string {
	for _, key := range aliases {
		items, ok := raw[key].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, item := range items {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case map[string]any:
				for _, field := range []string{"description", "text", "name"} {
					if s, ok := v[field].(string); ok && s != "" {
						out = append(out, s)
						break
					}
				}
			}
		}
		return out
	}
	return nil
}

// extractRelationships reads {from, to, type?} objects under
// "relationships" and renders each as "from -> to (type)" or "from -> to".
func extractRelationships(raw map[string]any) []string {
	items, ok := raw["relationships"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			// Already-rendered "from -> to (type)" form, e.g. from a prior
			// Compress call — pass through so re-compression is idempotent.
			out = append(out, v)
		case map[string]any:
			from, _ := v["from"].(string)
			to, _ := v["to"].(string)
			if from == "" || to == "" {
				continue
			}
			if kind, ok := v["type"].(string); ok && kind != "" {
				out = append(out, fmt.Sprintf("%s -> %s (%s)", from, to, kind))
			} else {
				out = append(out, fmt.Sprintf("%s -> %s", from, to))
			}
		}
	}
	return out
}

// ToRaw round-trips a typed round output through JSON to the generic
// map[string]any shape the validator and compressor operate on, so a
// round's typed struct stays the single source of truth for its schema.
func ToRaw(v any) (map[string]any, error) {
	return toRawViaJSON(v)
}
