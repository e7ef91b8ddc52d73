package service

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scorer decides whether a keyword occurs in lower-cased text.
// Ranking logic only depends on this answer, so matching strategies can be swapped freely.
type Scorer interface {
	Matches(text, keyword string) bool
}

// SubstringScorer matches keywords anywhere in the text, including inside longer words
type SubstringScorer struct{}

// Matches implements Scorer
func (SubstringScorer) Matches(text, keyword string) bool {
	return keyword != "" && strings.Contains(text, keyword)
}

// WordScorer matches keywords only when they are bounded by non-alphanumeric runes,
// so "ac" no longer fires on "backyard"
type WordScorer struct{}

// Matches implements Scorer
func (WordScorer) Matches(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], keyword)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(keyword)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NewScorer returns the scorer registered under name, falling back to substring matching
func NewScorer(name string) Scorer {
	switch strings.ToLower(name) {
	case "word", "token":
		return WordScorer{}
	default:
		return SubstringScorer{}
	}
}
