package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// ExtractJSON cleans model output down to the JSON payload it carries.
// Models wrap JSON in markdown code fences or surrounding prose even when
// asked for bare JSON, so this scans for balanced object or array
// boundaries, skipping braces inside string literals.
//
// It is a boundary heuristic, not a JSON parser. Incomplete output is
// returned unchanged so a truncated response fails downstream decoding
// with the original text attached.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if matches := codeBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	firstBrace := strings.Index(text, "{")
	firstBracket := strings.Index(text, "[")
	if firstBrace == -1 && firstBracket == -1 {
		return text
	}

	var start int
	var closing rune
	if firstBracket == -1 || (firstBrace != -1 && firstBrace < firstBracket) {
		start = firstBrace
		closing = '}'
	} else {
		start = firstBracket
		closing = ']'
	}

	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		char := rune(text[i])

		if inString {
			if char == '\\' {
				i++
				continue
			}
			if char == '"' {
				inString = false
			}
			continue
		}

		switch char {
		case '"':
			inString = true
		case '{':
			if closing == '}' {
				depth++
			}
		case '}':
			if closing == '}' {
				depth--
				if depth == 0 {
					if candidate := text[start : i+1]; isCompleteJSON(candidate) {
						return candidate
					}
				}
			}
		case '[':
			if closing == ']' {
				depth++
			}
		case ']':
			if closing == ']' {
				depth--
				if depth == 0 {
					if candidate := text[start : i+1]; isCompleteJSON(candidate) {
						return candidate
					}
				}
			}
		}
	}

	if depth > 0 || inString {
		// Unbalanced delimiters or an unclosed string. Keep the original
		// text rather than emitting a fragment.
		return text
	}

	return text[start:]
}

func isCompleteJSON(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return false
	}
	if (text[0] == '{' && text[len(text)-1] == '}') ||
		(text[0] == '[' && text[len(text)-1] == ']') {
		var v any
		return json.Unmarshal([]byte(text), &v) == nil
	}
	return false
}
