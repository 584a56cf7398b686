package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tiktoken counts tokens with an OpenAI BPE encoding. Local models tokenize
// differently, so the count is an approximation used only as an input budget.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

// New constructs a counter for the given encoding name, e.g. "cl100k_base".
func New(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &Tiktoken{encoding: enc}, nil
}

// Count implements analyzer.TokenCounter.
func (t *Tiktoken) Count(text string) (int, error) {
	return len(t.encoding.Encode(text, nil, nil)), nil
}
