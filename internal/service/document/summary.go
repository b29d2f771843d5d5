package document

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ExcerptChars is the length of the leading excerpt in a Summary.
const ExcerptChars = 500

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
)

// Summary holds simple statistics over extracted text.
type Summary struct {
	WordCount      int    `json:"word_count"`
	SentenceCount  int    `json:"sentence_count"`
	ParagraphCount int    `json:"paragraph_count"`
	Excerpt        string `json:"excerpt"`
}

// Summarize computes word, sentence and paragraph counts plus a leading excerpt. It accepts any
// input, including the empty string.
func Summarize(text string) Summary {
	excerpt, truncated := Truncate(text, ExcerptChars)
	if truncated {
		excerpt += "..."
	}
	return Summary{
		WordCount:      len(wordPattern.FindAllStringIndex(text, -1)),
		SentenceCount:  len(sentencePattern.FindAllStringIndex(text, -1)),
		ParagraphCount: len(strings.Split(text, "\n\n")),
		Excerpt:        excerpt,
	}
}

// Truncate returns the first limit characters of text and whether anything was cut.
func Truncate(text string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	return string([]rune(text)[:limit]), true
}
