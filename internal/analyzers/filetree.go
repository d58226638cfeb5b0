package analyzers

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ziadkadry99/handoverdoc/internal/discover"
)

// entryPointNames are recognized entry-point filenames across language
// ecosystems; the File Scorer treats a match as strong evidence.
var entryPointNames = map[string]bool{
	"main.go":    true,
	"main.py":    true,
	"__main__.py": true,
	"index.js":  true,
	"index.ts":  true,
	"main.rs":   true,
	"Main.java": true,
	"app.py":    true,
	"server.js": true,
	"server.ts": true,
}

// IsEntryPoint reports whether relPath looks like a recognized entry point.
// Exported so the File Scorer can reuse the same evidence without importing
// the whole file-tree analyzer.
func IsEntryPoint(relPath string) bool {
	return entryPointNames[filepath.Base(relPath)]
}

// AnalyzeFileTree builds the repository shape summary: totals, extension
// histogram, the largest files, and a directory tree capped to 3 levels.
func AnalyzeFileTree(ctx AnalysisContext) FileTreeResult {
	result := FileTreeResult{
		ExtensionCounts: make(map[string]int),
	}

	dirs := make(map[string]bool)
	langCounts := make(map[string]int)

	for _, f := range ctx.Files {
		result.TotalFiles++
		result.TotalBytes += f.Size
		ext := strings.ToLower(filepath.Ext(f.RelPath))
		if ext != "" {
			result.ExtensionCounts[ext]++
		}
		if f.Language != "" && f.Language != "unknown" {
			langCounts[f.Language]++
		}

		dir := filepath.Dir(f.RelPath)
		for dir != "." && dir != "/" && dir != "" {
			dirs[dir] = true
			dir = filepath.Dir(dir)
		}

		if !f.ContentSkipped {
			if n, err := countLines(f.Path); err == nil {
				result.TotalLines += n
			}
		}

		result.LargestFiles = append(result.LargestFiles, LargestFile{RelPath: f.RelPath, Size: f.Size})
	}
	result.TotalDirs = len(dirs)

	sort.Slice(result.LargestFiles, func(i, j int) bool {
		return result.LargestFiles[i].Size > result.LargestFiles[j].Size
	})
	const topN = 10
	if len(result.LargestFiles) > topN {
		result.LargestFiles = result.LargestFiles[:topN]
	}

	var bestLang string
	var bestCount int
	for lang, count := range langCounts {
		if count > bestCount {
			bestLang, bestCount = lang, count
		}
	}
	result.PrimaryLanguage = bestLang

	result.Tree = buildTree(ctx.Files, 3)

	return result
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n, nil
}

// buildTree constructs a directory tree capped to maxDepth levels from the
// repo root; files beyond the cap are rolled up into their depth-maxDepth
// ancestor directory.
func buildTree(files []discover.FileInfo, maxDepth int) []TreeNode {
	type node struct {
		children map[string]*node
		isDir    bool
	}
	root := &node{children: make(map[string]*node), isDir: true}

	for _, f := range files {
		parts := strings.Split(filepath.ToSlash(f.RelPath), "/")
		cur := root
		depth := 0
		for i, part := range parts {
			if depth >= maxDepth {
				break
			}
			isLast := i == len(parts)-1
			child, ok := cur.children[part]
			if !ok {
				child = &node{children: make(map[string]*node), isDir: !isLast}
				cur.children[part] = child
			}
			cur = child
			depth++
		}
	}

	var convert func(n *node) []TreeNode
	convert = func(n *node) []TreeNode {
		var names []string
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)

		var out []TreeNode
		for _, name := range names {
			child := n.children[name]
			out = append(out, TreeNode{
				Name:     name,
				IsDir:    child.isDir,
				Children: convert(child),
			})
		}
		return out
	}

	return convert(root)
}
