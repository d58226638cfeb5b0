package pipeline

import (
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

func TestAnalysisFingerprintStableUnderReordering(t *testing.T) {
	a := []discover.FileInfo{
		{RelPath: "b.go", ContentHash: "hb", Size: 2},
		{RelPath: "a.go", ContentHash: "ha", Size: 1},
	}
	b := []discover.FileInfo{
		{RelPath: "a.go", ContentHash: "ha", Size: 1},
		{RelPath: "b.go", ContentHash: "hb", Size: 2},
	}
	if AnalysisFingerprint(a) != AnalysisFingerprint(b) {
		t.Fatal("reordering the discovered file list changed the fingerprint")
	}
}

func TestAnalysisFingerprintChangesOnContentEdit(t *testing.T) {
	before := []discover.FileInfo{{RelPath: "a.go", ContentHash: "hash-before", Size: 10}}
	after := []discover.FileInfo{{RelPath: "a.go", ContentHash: "hash-after", Size: 10}}
	if AnalysisFingerprint(before) == AnalysisFingerprint(after) {
		t.Fatal("editing a file's content hash did not change the fingerprint")
	}
}

func TestAnalysisFingerprintIsDeterministic(t *testing.T) {
	files := []discover.FileInfo{{RelPath: "a.go", ContentHash: "h", Size: 1}}
	if AnalysisFingerprint(files) != AnalysisFingerprint(files) {
		t.Fatal("AnalysisFingerprint is not deterministic for identical input")
	}
}

func TestRoundHashCascadesFromPriorRounds(t *testing.T) {
	fp := "fingerprint-1"
	round1 := RoundHash(1, "claude-x", fp, nil)
	round2 := RoundHash(2, "claude-x", fp, []string{round1})
	round3 := RoundHash(3, "claude-x", fp, []string{round1, round2})

	// Changing round 1's upstream hash must change every round downstream.
	alteredRound1 := RoundHash(1, "claude-x", "fingerprint-2", nil)
	alteredRound2 := RoundHash(2, "claude-x", fp, []string{alteredRound1})
	alteredRound3 := RoundHash(3, "claude-x", fp, []string{alteredRound1, round2})

	if round1 == alteredRound1 {
		t.Fatal("expected round 1's hash to change when its analysis fingerprint changes")
	}
	if round2 == alteredRound2 {
		t.Fatal("expected round 2's hash to change when round 1's hash changes upstream")
	}
	if round3 == alteredRound3 {
		t.Fatal("expected round 3's hash to change when round 1's hash changes upstream")
	}
}

func TestRoundHashIsDeterministicForIdenticalInputs(t *testing.T) {
	h1 := RoundHash(4, "claude-x", "fp", []string{"a", "b", "c"})
	h2 := RoundHash(4, "claude-x", "fp", []string{"a", "b", "c"})
	if h1 != h2 {
		t.Fatal("RoundHash is not deterministic for identical inputs")
	}
}

func TestRoundHashDiffersWhenPriorRoundOrderChanges(t *testing.T) {
	// Prior round hashes are positional (declared dependency order), so
	// swapping their order is itself a cascade-relevant input change.
	h1 := RoundHash(3, "claude-x", "fp", []string{"hash-a", "hash-b"})
	h2 := RoundHash(3, "claude-x", "fp", []string{"hash-b", "hash-a"})
	if h1 == h2 {
		t.Fatal("expected RoundHash to depend on prior-round-hash order")
	}
}
