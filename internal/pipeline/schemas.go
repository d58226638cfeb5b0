package pipeline

// JSON Schemas (§4.9) for each round's structured output request, mirroring
// the json tags on R1Output..R6Output exactly: the Round Runner decodes the
// model's response straight into the typed struct once this schema accepts
// it, so the two must never drift apart.

var r1Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"project_name": map[string]any{"type": "string"},
		"purpose":      map[string]any{"type": "string"},
		"tech_stack":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"entry_points": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"project_name", "purpose", "tech_stack", "entry_points"},
}

var moduleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":    map[string]any{"type": "string"},
		"purpose": map[string]any{"type": "string"},
		"files":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"name", "files"},
}

var r2Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"modules": map[string]any{"type": "array", "items": moduleSchema},
	},
	"required": []any{"modules"},
}

var featureSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"files":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"name", "description"},
}

var crossCuttingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
	},
	"required": []any{"name", "description"},
}

var r3Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"features":                map[string]any{"type": "array", "items": featureSchema},
		"cross_cutting_concerns": map[string]any{"type": "array", "items": crossCuttingSchema},
		"findings":                map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"features"},
}

var archPatternSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"rationale":   map[string]any{"type": "string"},
	},
	"required": []any{"name", "description"},
}

var relationshipSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"from": map[string]any{"type": "string"},
		"to":   map[string]any{"type": "string"},
		"type": map[string]any{"type": "string"},
	},
	"required": []any{"from", "to"},
}

var r4Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"patterns":      map[string]any{"type": "array", "items": archPatternSchema},
		"layers":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"relationships": map[string]any{"type": "array", "items": relationshipSchema},
	},
	"required": []any{"patterns", "layers"},
}

var edgeCaseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
		"files":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{"description"},
}

var conventionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
	},
	"required": []any{"name", "description"},
}

var r5Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"edge_cases":     map[string]any{"type": "array", "items": edgeCaseSchema},
		"conventions":    map[string]any{"type": "array", "items": conventionSchema},
		"open_questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{},
}

var deployTargetSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
	},
	"required": []any{"name"},
}

var r6Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"deploy_targets": map[string]any{"type": "array", "items": deployTargetSchema},
		"infrastructure": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"ci_cd":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"open_questions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{},
}
