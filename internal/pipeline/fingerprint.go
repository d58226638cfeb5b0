package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// AnalysisFingerprint is a hex digest over every included file's path,
// content hash and size. The content hash is SHA-256 of the bytes, so an
// edit that keeps the size still changes the digest (§4.11, §8). Files are sorted
// by path first so reordering the discovered file list never changes the
// fingerprint; only an edit to a file's bytes does.
func AnalysisFingerprint(files []discover.FileInfo) string {
	sorted := make([]discover.FileInfo, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelPath < sorted[j].RelPath })

	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f.RelPath))
		h.Write([]byte{0})
		h.Write([]byte(f.ContentHash))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(f.Size, 10)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RoundHash computes the cache key digest for one round: the round number,
// model, analysis fingerprint, and every prior round's hash in declared
// dependency order. The cascade property falls directly out of this: a
// change to any upstream round's hash changes this round's hash, and
// therefore every round downstream of it (§8, "cascade round hashes").
func RoundHash(roundNumber int, model, analysisFingerprint string, priorRoundHashes []string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(roundNumber)))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(analysisFingerprint))
	for _, prior := range priorRoundHashes {
		h.Write([]byte{0})
		h.Write([]byte(prior))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// roundHashPreview renders a short human-readable prefix for log lines and
// rendered document status reasons.
func roundHashPreview(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

func joinHashes(hashes []string) string {
	return strings.Join(hashes, ",")
}
