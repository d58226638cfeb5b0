package discover

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/config"
)

// DefaultMaxFileSize is the maximum file size whose content is read (2 MiB).
// Files larger than this are still discovered and counted in file-tree
// stats, but their content is skipped.
const DefaultMaxFileSize int64 = 2 << 20

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path           string // Absolute path on disk.
	RelPath        string // Path relative to the repository root.
	Size           int64
	Language       string
	ContentHash    string // SHA-256 hex digest; empty if ContentSkipped.
	IsTest         bool
	IsBinary       bool
	ContentSkipped bool // true when IsBinary or Size > max file size
	IsManifest     bool
	Pinned         bool // matched contextWindow.pin
	Boosted        bool // matched contextWindow.boost
}

// Options controls the behaviour of Walk.
type Options struct {
	RootDir     string
	Include     []string
	Exclude     []string
	Pin         []string
	Boost       []string
	MaxFileSize int64
}

// OptionsFromConfig builds discovery Options from the resolved Config.
func OptionsFromConfig(rootDir string, cfg *config.Config) Options {
	return Options{
		RootDir: rootDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
		Pin:     cfg.ContextWindow.Pin,
		Boost:   cfg.ContextWindow.Boost,
	}
}

// Walk traverses the directory tree rooted at opts.RootDir and returns
// metadata for every file that passes the ignore engine: the always-excluded
// directory set, .gitignore semantics, and the include/exclude glob lists.
// Binary files and files over the size ceiling are still returned (for
// file-tree stats) but marked ContentSkipped.
func Walk(opts Options) ([]FileInfo, error) {
	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, fmt.Errorf("discover: resolve root: %w", err)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	gitignorePatterns := loadGitignore(filepath.Join(root, ".gitignore"))

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if name != "." && config.AlwaysExcludedDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if matchesGitignore(relPath, gitignorePatterns) {
			return nil
		}
		if !MatchesInclude(relPath, opts.Include) {
			return nil
		}
		if MatchesExclude(relPath, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		binary := isBinary(path)
		oversized := info.Size() > maxSize
		skip := binary || oversized

		var hash string
		if !skip {
			hash, err = hashFile(path)
			if err != nil {
				skip = true
			}
		}

		files = append(files, FileInfo{
			Path:           path,
			RelPath:        relPath,
			Size:           info.Size(),
			Language:       DetectLanguage(name),
			ContentHash:    hash,
			IsTest:         isTestFile(name, relPath),
			IsBinary:       binary,
			ContentSkipped: skip,
			IsManifest:     IsManifest(relPath),
			Pinned:         MatchesAny(relPath, opts.Pin),
			Boosted:        MatchesAny(relPath, opts.Boost),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("discover: traversal: %w", err)
	}

	return files, nil
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// isTestFile returns true if the filename or path looks like a test file.
func isTestFile(name, relPath string) bool {
	lower := strings.ToLower(name)

	if strings.HasSuffix(lower, "_test.go") {
		return true
	}
	if strings.HasPrefix(lower, "test_") || strings.HasSuffix(lower, "_test.py") {
		return true
	}
	for _, suffix := range []string{".test.js", ".test.ts", ".test.tsx", ".spec.js", ".spec.ts", ".spec.tsx"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	relSlash := strings.ToLower(relPath)
	if strings.Contains(relSlash, "/test/") || strings.Contains(relSlash, "/tests/") ||
		strings.HasPrefix(relSlash, "test/") || strings.HasPrefix(relSlash, "tests/") {
		return true
	}

	return false
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks if a relative path matches any gitignore pattern.
func matchesGitignore(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)

		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")

		if !strings.Contains(pattern, "/") {
			parts := strings.Split(normalized, "/")
			for i, part := range parts {
				if matched, _ := filepath.Match(pattern, part); matched {
					// A directory-only pattern matches any component but
					// the last, which is the file itself.
					if !dirOnly || i < len(parts)-1 {
						return true
					}
				}
			}
			base := filepath.Base(normalized)
			if matched, _ := filepath.Match(pattern, base); matched && !dirOnly {
				return true
			}
		} else {
			if matched, _ := filepath.Match(pattern, normalized); matched {
				return true
			}
		}
	}
	return false
}
