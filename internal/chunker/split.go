package chunker

import "strings"

// splitText breaks an oversized text element into pieces of at most
// target tokens, cutting at sentence boundaries and falling back to word
// boundaries for sentences that are too long on their own. A single word
// longer than the target becomes its own piece.
func splitText(text string, target int, counter Counter) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}
	}
	add := func(part string, tokens int) {
		if currentTokens > 0 && currentTokens+tokens > target {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(part)
		currentTokens += tokens
	}

	for _, sent := range splitSentences(text) {
		sentTokens := counter.Count(sent)
		if sentTokens <= target {
			add(sent, sentTokens)
			continue
		}
		for _, word := range strings.Fields(sent) {
			add(word, counter.Count(word))
		}
	}
	flush()

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
