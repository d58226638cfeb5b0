package pipeline

// Claims implementations (§4.6): each round only asserts the claim kinds
// that map onto a verifiable static fact. Narrative-only fields (purpose,
// description, rationale) never produce a Claim.

func (o R1Output) Claims() []Claim {
	claims := make([]Claim, 0, len(o.EntryPoints))
	for _, p := range o.EntryPoints {
		claims = append(claims, Claim{Kind: ClaimFilePath, Value: p})
	}
	return claims
}

func (o R2Output) Claims() []Claim {
	var claims []Claim
	for _, m := range o.Modules {
		for _, p := range m.Files {
			claims = append(claims, Claim{Kind: ClaimFilePath, Value: p})
		}
	}
	return claims
}

func (o R3Output) Claims() []Claim {
	var claims []Claim
	for _, f := range o.Features {
		for _, p := range f.Files {
			claims = append(claims, Claim{Kind: ClaimFilePath, Value: p})
		}
	}
	return claims
}

func (o R4Output) Claims() []Claim {
	claims := make([]Claim, 0, len(o.Relationships)+len(o.Layers))
	for _, r := range o.Relationships {
		claims = append(claims, Claim{Kind: ClaimImportEdge, Value: r.From + " -> " + r.To})
	}
	for _, l := range o.Layers {
		claims = append(claims, Claim{Kind: ClaimModuleRoot, Value: l})
	}
	return claims
}

func (o R5Output) Claims() []Claim {
	var claims []Claim
	for _, e := range o.EdgeCases {
		for _, p := range e.Files {
			claims = append(claims, Claim{Kind: ClaimFilePath, Value: p})
		}
	}
	return claims
}

func (o R6Output) Claims() []Claim {
	// Deployment/infra content is inferred from manifests and CI config
	// narratively; it has no per-file claim shape worth validating.
	return nil
}

// Quality implementations (§4.7): each round declares its own minimum
// populated-field thresholds.

func (o R1Output) Quality() QualityMetrics {
	var reasons []string
	if o.ProjectName == "" {
		reasons = append(reasons, "project_name is empty")
	}
	if len(o.TechStack) == 0 {
		reasons = append(reasons, "tech_stack has no entries")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}

func (o R2Output) Quality() QualityMetrics {
	var reasons []string
	if len(o.Modules) == 0 {
		reasons = append(reasons, "at least one module is required")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}

func (o R3Output) Quality() QualityMetrics {
	var reasons []string
	if len(o.Features) == 0 {
		reasons = append(reasons, "at least one feature is required")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}

func (o R4Output) Quality() QualityMetrics {
	var reasons []string
	if len(o.Patterns) == 0 {
		reasons = append(reasons, "at least one architectural pattern is required")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}

func (o R5Output) Quality() QualityMetrics {
	var reasons []string
	if len(o.EdgeCases) == 0 && len(o.Conventions) == 0 {
		reasons = append(reasons, "at least one edge case or convention is required")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}

func (o R6Output) Quality() QualityMetrics {
	var reasons []string
	if len(o.DeployTargets) == 0 && len(o.Infrastructure) == 0 {
		reasons = append(reasons, "at least one deployment target or infrastructure entry is required")
	}
	return QualityMetrics{IsAcceptable: len(reasons) == 0, Reasons: reasons}
}
