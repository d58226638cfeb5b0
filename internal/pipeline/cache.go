package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/handoverdoc/internal/db"
)

// CacheVersion is bumped whenever the on-disk cache entry shape changes.
// A mismatch on load triggers a one-time full clear (§4.11) rather than a
// column-by-column migration, since a round's cached output is opaque
// JSON the pipeline is free to reshape between releases.
const CacheVersion = 1

// CacheEntry is one round's cached output (§3 data model). RunID is
// purely informational — the id of the pipeline run that last wrote this
// entry, for log correlation — and is never part of the lookup key: the
// key stays {RoundNumber, Model, Fingerprint} so the cache's
// content-addressing is stable across runs regardless of which run wrote
// an entry (§4.11).
type CacheEntry struct {
	RoundNumber int
	Model       string
	Fingerprint string
	Status      string // "ok" | "degraded"
	OutputJSON  string
	RoundHash   string
	RunID       string
	Version     int
}

// Cache is the round cache: a content-addressed store keyed on
// {roundNumber, model, fingerprint}, backed by SQLite.
type Cache struct {
	database  *db.DB
	migrated  bool
	migration string // non-empty once a version-mismatch clear has happened
}

// OpenCache opens (creating if needed) the cache database at path. It does
// not touch the repository's ignore file; see AppendIgnorePattern.
func OpenCache(path string) (*Cache, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening round cache: %w", err)
	}
	c := &Cache{database: database}
	if err := c.checkVersion(); err != nil {
		database.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.database.Close()
}

// Migrated reports whether opening the cache triggered a version-mismatch
// clear, and if so, a one-line migration notice the caller should surface
// exactly once (§4.11, §8).
func (c *Cache) Migrated() (bool, string) {
	return c.migration != "", c.migration
}

func (c *Cache) checkVersion() error {
	var raw string
	err := c.database.QueryRow(`SELECT value FROM schema_meta WHERE key = 'round_cache_version'`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.setVersion()
	case err != nil:
		return fmt.Errorf("reading round cache version: %w", err)
	}

	if raw == fmt.Sprintf("%d", CacheVersion) {
		return nil
	}

	if _, err := c.database.Exec(`DELETE FROM round_cache`); err != nil {
		return fmt.Errorf("clearing round cache on version migration: %w", err)
	}
	c.migration = fmt.Sprintf("round cache version changed (%s -> %d); cleared all entries", raw, CacheVersion)
	return c.setVersion()
}

func (c *Cache) setVersion() error {
	_, err := c.database.Exec(
		`INSERT INTO schema_meta(key, value) VALUES('round_cache_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		fmt.Sprintf("%d", CacheVersion),
	)
	return err
}

// Get returns the cached entry for {round, model, fingerprint}, or
// (zero, false, nil) on a clean miss. A read failure is treated as a miss
// per §7 ("Cache error ... treated as cache miss/skip").
func (c *Cache) Get(ctx context.Context, round int, model, fingerprint string) (CacheEntry, bool, error) {
	row := c.database.QueryRowContext(ctx,
		`SELECT status, output_json, round_hash, run_id, version FROM round_cache
		 WHERE round_number = ? AND model = ? AND fingerprint = ?`,
		round, model, fingerprint,
	)
	var entry CacheEntry
	entry.RoundNumber, entry.Model, entry.Fingerprint = round, model, fingerprint
	if err := row.Scan(&entry.Status, &entry.OutputJSON, &entry.RoundHash, &entry.RunID, &entry.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CacheEntry{}, false, nil
		}
		return CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// Put writes entry, overwriting any prior entry at the same key
// (last-writer-wins, per §4.11: "no concurrent-writer protection beyond
// last-writer-wins"). A write failure is non-fatal to the caller; it is
// the Round Runner's job to proceed without a cached write (§7). Put
// always writes, independent of Get — this is what lets `no-cache` mode
// (§4.11: "Skips reads; still performs writes, so the next normal run
// reads a warm cache") work: the Round Runner simply skips calling Get.
func (c *Cache) Put(ctx context.Context, entry CacheEntry) error {
	entry.Version = CacheVersion
	_, err := c.database.ExecContext(ctx,
		`INSERT INTO round_cache(round_number, model, fingerprint, version, status, output_json, round_hash, run_id)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(round_number, model, fingerprint) DO UPDATE SET
		   version = excluded.version,
		   status = excluded.status,
		   output_json = excluded.output_json,
		   round_hash = excluded.round_hash,
		   run_id = excluded.run_id,
		   written_at = datetime('now')`,
		entry.RoundNumber, entry.Model, entry.Fingerprint, entry.Version, entry.Status, entry.OutputJSON, entry.RoundHash, entry.RunID,
	)
	return err
}

// EncodeOutput marshals a round's typed output to the JSON string stored
// alongside its cache entry.
func EncodeOutput(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding round output for cache: %w", err)
	}
	return string(b), nil
}

// DecodeOutput unmarshals a cached round's JSON string into dst.
func DecodeOutput(data string, dst any) error {
	return json.Unmarshal([]byte(data), dst)
}

// AppendIgnorePattern adds the cache directory to repoRoot's .gitignore if
// it isn't already present, idempotently. The generate command calls it
// right after opening the cache, before any round writes to it. Failure is
// logged by the caller, not fatal — the cache itself
// still works even if the repo ends up tracking it.
func AppendIgnorePattern(repoRoot, cacheDirRelPath string) error {
	gitignorePath := filepath.Join(repoRoot, ".gitignore")

	existing, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	pattern := cacheDirRelPath
	if !filepath.IsAbs(pattern) {
		pattern = filepath.ToSlash(pattern)
	}
	for _, line := range splitLines(string(existing)) {
		if line == pattern {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(pattern + "\n")
	return err
}

// CacheStats summarizes the round cache's contents for the cache inspection
// subcommand.
type CacheStats struct {
	TotalEntries int
	OKEntries    int
	Degraded     int
	ByRound      map[int]int
}

// Stats reports the round cache's current contents.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	stats := CacheStats{ByRound: make(map[int]int)}
	rows, err := c.database.QueryContext(ctx, `SELECT round_number, status FROM round_cache`)
	if err != nil {
		return stats, fmt.Errorf("reading round cache stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var round int
		var status string
		if err := rows.Scan(&round, &status); err != nil {
			return stats, fmt.Errorf("scanning round cache row: %w", err)
		}
		stats.TotalEntries++
		stats.ByRound[round]++
		if status == "ok" {
			stats.OKEntries++
		} else {
			stats.Degraded++
		}
	}
	return stats, rows.Err()
}

// Clear removes every entry from the round cache, leaving the schema and
// version marker intact.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.database.ExecContext(ctx, `DELETE FROM round_cache`)
	if err != nil {
		return fmt.Errorf("clearing round cache: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
