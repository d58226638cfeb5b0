package pipeline

import (
	"testing"

	"github.com/ziadkadry99/handoverdoc/internal/analyzers"
	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

type fakeClaimSource struct {
	claims []Claim
}

func (f fakeClaimSource) Claims() []Claim { return f.claims }

func TestValidateNoClaimsYieldsZeroDropRate(t *testing.T) {
	facts := StaticFacts{Paths: map[string]bool{}, Dirs: map[string]bool{}, Edges: map[string]bool{}}
	result := Validate(fakeClaimSource{}, facts)
	if result.DropRate != 0 {
		t.Fatalf("DropRate = %v, want 0 for a claimless round", result.DropRate)
	}
	if result.ValidClaims != 0 || result.InvalidClaims != 0 {
		t.Fatalf("got %+v, want all-zero counts", result)
	}
}

func TestValidateAllValidClaimsYieldZeroDropRate(t *testing.T) {
	facts := StaticFacts{
		Paths: map[string]bool{"internal/foo/foo.go": true},
		Dirs:  map[string]bool{"internal/foo": true},
		Edges: map[string]bool{"internal/foo/foo.go -> internal/bar": true},
	}
	src := fakeClaimSource{claims: []Claim{
		{Kind: ClaimFilePath, Value: "internal/foo/foo.go"},
		{Kind: ClaimModuleRoot, Value: "internal/foo"},
		{Kind: ClaimImportEdge, Value: "internal/foo/foo.go -> internal/bar"},
	}}
	result := Validate(src, facts)
	if result.DropRate != 0 {
		t.Fatalf("DropRate = %v, want 0", result.DropRate)
	}
	if result.ValidClaims != 3 || result.InvalidClaims != 0 {
		t.Fatalf("got %+v, want 3 valid / 0 invalid", result)
	}
}

func TestValidateComputesDropRateForMixedClaims(t *testing.T) {
	facts := StaticFacts{
		Paths: map[string]bool{"internal/foo/foo.go": true},
		Dirs:  map[string]bool{},
		Edges: map[string]bool{},
	}
	src := fakeClaimSource{claims: []Claim{
		{Kind: ClaimFilePath, Value: "internal/foo/foo.go"},   // valid
		{Kind: ClaimFilePath, Value: "internal/ghost/gone.go"}, // invalid
		{Kind: ClaimModuleRoot, Value: "internal/nowhere"},     // invalid
	}}
	result := Validate(src, facts)
	if result.ValidClaims != 1 || result.InvalidClaims != 2 {
		t.Fatalf("got %+v, want 1 valid / 2 invalid", result)
	}
	want := 2.0 / 3.0
	if result.DropRate != want {
		t.Fatalf("DropRate = %v, want %v", result.DropRate, want)
	}
	if result.DropRate <= DropRateThreshold {
		t.Fatalf("DropRate %v should exceed DropRateThreshold %v for this fixture", result.DropRate, DropRateThreshold)
	}
}

func TestClaimValidUnknownKindIsAlwaysInvalid(t *testing.T) {
	facts := StaticFacts{Paths: map[string]bool{"x": true}, Dirs: map[string]bool{}, Edges: map[string]bool{}}
	c := Claim{Kind: ClaimKind("unknown"), Value: "x"}
	if claimValid(c, facts) {
		t.Fatal("claimValid should reject an unrecognized claim kind")
	}
}

func TestClaimValidImportEdgeIsCaseInsensitiveOnFromTo(t *testing.T) {
	facts := StaticFacts{
		Paths: map[string]bool{},
		Dirs:  map[string]bool{},
		Edges: map[string]bool{normalizeEdge("Internal/Foo.go", `"internal/bar"`): true},
	}
	c := Claim{Kind: ClaimImportEdge, Value: "internal/foo.go -> internal/bar"}
	if !claimValid(c, facts) {
		t.Fatal("expected a lowercase import-edge claim to match a normalized fact")
	}
}

func TestBuildStaticFactsIndexesPathsDirsAndImportEdges(t *testing.T) {
	files := []discover.FileInfo{
		{RelPath: "internal/foo/foo.go", Size: 10},
	}
	result := analyzers.StaticAnalysisResult{
		AST: analyzers.ASTResult{
			Files: []analyzers.FileSymbols{
				{
					RelPath: "internal/foo/foo.go",
					Symbols: []analyzers.Symbol{
						{Name: "internal/bar", Kind: "import"},
						{Name: "doStuff", Kind: "function"},
					},
				},
			},
		},
	}

	facts := BuildStaticFacts(result, files)
	if !facts.Paths["internal/foo/foo.go"] {
		t.Fatal("expected file path to be indexed")
	}
	if !facts.Dirs["internal/foo"] {
		t.Fatal("expected containing directory to be indexed")
	}
	if !facts.Edges[normalizeEdge("internal/foo/foo.go", "internal/bar")] {
		t.Fatal("expected the AST import edge to be indexed")
	}
}
