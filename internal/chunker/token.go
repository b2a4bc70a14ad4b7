package chunker

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter measures text in model tokens. Implementations must return the
// same count for the same text on every call.
type Counter interface {
	Count(text string) int
}

// CounterFunc adapts a plain function to Counter.
type CounterFunc func(text string) int

func (f CounterFunc) Count(text string) int { return f(text) }

// EstimateTokens gives a rough token count using the ~1.33 tokens/word heuristic.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// Estimator counts with EstimateTokens.
var Estimator = CounterFunc(EstimateTokens)

// WordCounter counts whitespace-separated words. Tests use it because the
// counts are easy to reason about.
var WordCounter = CounterFunc(func(text string) int {
	return len(strings.Fields(text))
})

// TiktokenCounter counts byte-pair-encoding tokens.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the named encoding, e.g. "cl100k_base".
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load token encoding %s: %w", encoding, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewCounter returns the counter for an encoding name. "estimate" selects
// the word heuristic; anything else is loaded as a tiktoken encoding.
func NewCounter(encoding string) (Counter, error) {
	switch encoding {
	case "estimate":
		return Estimator, nil
	case "words":
		return WordCounter, nil
	case "":
		return NewTiktokenCounter("cl100k_base")
	default:
		return NewTiktokenCounter(encoding)
	}
}
