// Package scorer ranks discovered files by a weighted sum of importance
// signals so the context packer knows which files earn a full read first.
package scorer

import "github.com/ziadkadry99/handoverdoc/internal/discover"

// Signals is the per-file breakdown behind a Score, kept for render-time
// explainability ("why was this file included") and for tests.
type Signals struct {
	EntryPoint        float64
	ImportIndegree    float64
	GitChurn          float64
	TODODensity       float64
	DocAdjacency      float64
	PinBoost          float64
	LanguageRelevance float64
}

// ScoredFile pairs a discovered file with its computed score. FileEntry
// itself stays read-only (spec data model: "created during discovery,
// read-only thereafter"); the score is carried alongside it, not mutated
// into it.
type ScoredFile struct {
	discover.FileInfo
	Score   float64
	Signals Signals
}
