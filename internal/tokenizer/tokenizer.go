// Package tokenizer estimates token counts for packer and round-prompt
// budgeting. Anthropic and most OpenAI-compatible chat models do not
// publish an offline tokenizer, so cl100k_base is used as a deliberate
// approximation everywhere — good enough for budget enforcement, not
// billing-accurate.
package tokenizer

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in a string. Implementations must be safe for
// concurrent use since the packer and round runner call it from multiple
// goroutines.
type Counter interface {
	Count(text string) int
}

// estimatorCounter is the zero-dependency fallback: roughly four
// characters per token, the same rule of thumb used across the pack when
// a full tokenizer isn't available.
type estimatorCounter struct{}

func (estimatorCounter) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// NewEstimator returns the character-count approximation. Used when a
// tiktoken encoding fails to load (offline, no cache, unknown encoding).
func NewEstimator() Counter {
	return estimatorCounter{}
}

// tiktokenCounter wraps a loaded BPE encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

var (
	once       sync.Once
	shared     Counter
	sharedInit error
)

// New returns a process-wide shared Counter backed by the cl100k_base
// encoding, falling back to the character estimator if the encoding
// cannot be loaded (e.g. no network access and no local cache on first
// run).
func New() Counter {
	once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			sharedInit = err
			shared = NewEstimator()
			return
		}
		shared = tiktokenCounter{encoding: enc}
	})
	return shared
}

// LoadError returns the error from the one-time tiktoken load, if New()
// fell back to the estimator. Exposed so the CLI can log a warning once at
// startup instead of silently degrading accuracy.
func LoadError() error {
	return sharedInit
}

func (t tiktokenCounter) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
