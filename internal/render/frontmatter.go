package render

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	RunID       string    `yaml:"run_id,omitempty"`
	Status      string    `yaml:"status"`
	Reason      string    `yaml:"reason,omitempty"`
}

// withFrontMatter prepends a YAML front matter block (status, generation
// timestamp, and the pipeline run id that produced it) to body, the shape
// every rendered document shares regardless of which round produced its
// content.
func withFrontMatter(generatedAt time.Time, runID string, status Status, reason, body string) (string, error) {
	fm := frontMatter{GeneratedAt: generatedAt, RunID: runID, Status: string(status), Reason: reason}
	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshalling front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
