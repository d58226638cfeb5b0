package analyzers

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// todoMarkers is the fixed marker set from spec §4.2, mapped to category.
var todoMarkers = map[string]TODOCategory{
	"TODO":       CategoryTasks,
	"FIXME":      CategoryBugs,
	"HACK":       CategoryDebt,
	"XXX":        CategoryBugs,
	"NOTE":       CategoryNotes,
	"WARN":       CategoryNotes,
	"DEPRECATED": CategoryDebt,
	"REVIEW":     CategoryTasks,
	"OPTIMIZE":   CategoryOptimization,
	"TEMP":       CategoryDebt,
}

var issueRefPattern = regexp.MustCompile(`(#\d+|[A-Z][A-Z0-9]+-\d+)`)

var markerLinePattern = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX|NOTE|WARN|DEPRECATED|REVIEW|OPTIMIZE|TEMP)\b[:\s]*(.*)`)

// AnalyzeTODOs scans every non-content-skipped file for the fixed marker
// set and extracts any issue references in the trailing comment text.
func AnalyzeTODOs(ctx AnalysisContext) TODOResult {
	result := TODOResult{Counts: make(map[TODOCategory]int)}

	for _, f := range ctx.Files {
		if f.ContentSkipped {
			continue
		}

		file, err := os.Open(f.Path)
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			m := markerLinePattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			marker := strings.ToUpper(m[1])
			category := todoMarkers[marker]
			match := TODOMatch{
				Marker:    marker,
				Category:  category,
				Text:      strings.TrimSpace(m[2]),
				RelPath:   f.RelPath,
				Line:      lineNo,
				IssueRefs: issueRefPattern.FindAllString(line, -1),
			}
			result.Matches = append(result.Matches, match)
			result.Counts[category]++
		}
		file.Close()
	}

	return result
}
