package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when a model answer holds nothing that decodes as JSON
var ErrNoJSON = errors.New("no JSON found in model output")

var (
	fencedJSON      = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedAny       = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey     = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	maxErrorExcerpt = 100
)

// ParseModelJSON decodes JSON out of a language model answer. It accepts:
// - pure JSON
// - JSON inside a markdown code fence
// - a JSON object or array surrounded by prose
// - JSON with trailing commas, unquoted keys or single quotes
func ParseModelJSON(input string, target any) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("%w: empty input", ErrNoJSON)
	}

	candidates := []func(string) string{
		func(s string) string { return s },
		fromCodeFence,
		fromSurroundingText,
		repairJSON,
	}
	for _, extract := range candidates {
		snippet := extract(input)
		if snippet == "" {
			continue
		}
		if err := json.Unmarshal([]byte(snippet), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrNoJSON, truncate(input, maxErrorExcerpt))
}

func fromCodeFence(input string) string {
	if m := fencedJSON.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAny.FindStringSubmatch(input); len(m) > 1 {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}
	return ""
}

func fromSurroundingText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if s := balanced(input[start:], '{', '}'); s != "" {
			return s
		}
	}
	if start := strings.Index(input, "["); start >= 0 {
		if s := balanced(input[start:], '[', ']'); s != "" {
			return s
		}
	}
	return ""
}

// balanced returns the prefix of input up to the bracket closing its first open bracket
func balanced(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}
	return ""
}

// repairJSON fixes the mistakes models commonly make when emitting JSON
func repairJSON(input string) string {
	s := input
	if extracted := fromCodeFence(s); extracted != "" {
		s = extracted
	} else if extracted := fromSurroundingText(s); extracted != "" {
		s = extracted
	}
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = singleToDoubleQuotes(s)
	return controlChars.ReplaceAllString(s, "")
}

// singleToDoubleQuotes swaps single quotes that delimit values, leaving apostrophes alone
func singleToDoubleQuotes(input string) string {
	var b strings.Builder
	inDouble := false
	escape := false
	var prev rune

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if i == 0 || strings.ContainsRune(":,[{", prev) || nextIsDelimiter(input[i+1:]) {
				ch = '"'
			}
		}
		b.WriteRune(ch)
		if ch != ' ' {
			prev = ch
		}
	}
	return b.String()
}

func nextIsDelimiter(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\n")
	return rest == "" || strings.ContainsAny(rest[:1], ":,]}")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
