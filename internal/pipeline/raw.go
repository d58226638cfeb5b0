package pipeline

import "encoding/json"

// toRawViaJSON decodes v's JSON encoding into a generic map[string]any,
// the shape the validator and compressor operate on regardless of which
// round produced it.
func toRawViaJSON(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ToRaw renders a RoundContext back into the same map shape Compress
// reads from, so that compress(compress(x)) == compress(x) holds even
// when x is itself already a RoundContext (§8).
func (rc RoundContext) ToRaw() map[string]any {
	raw := map[string]any{}
	if len(rc.Modules) > 0 {
		modules := make([]any, len(rc.Modules))
		for i, m := range rc.Modules {
			modules[i] = m
		}
		raw["modules"] = modules
	}
	if len(rc.Findings) > 0 {
		findings := make([]any, len(rc.Findings))
		for i, f := range rc.Findings {
			findings[i] = f
		}
		raw["findings"] = findings
	}
	if len(rc.Relationships) > 0 {
		rels := make([]any, len(rc.Relationships))
		for i, r := range rc.Relationships {
			rels[i] = r
		}
		raw["relationships"] = rels
	}
	if len(rc.OpenQuestions) > 0 {
		oq := make([]any, len(rc.OpenQuestions))
		for i, q := range rc.OpenQuestions {
			oq[i] = q
		}
		raw["open_questions"] = oq
	}
	return raw
}
