package usecase

import (
	"encoding/json"
	"strings"

	chatdomain "vida-backend/internal/chat/domain"
)

// ModelOutput is the tagged result of parsing one model turn: either a
// structured action set or freeform text. Exactly one side is set.
type ModelOutput struct {
	Structured *chatdomain.ActionSet
	Freeform   string
}

// ParseModelOutput normalizes raw model text. Strict parse first, then
// a tolerant repair pass, then the freeform fallback. It never fails.
func ParseModelOutput(raw string) ModelOutput {
	if as, ok := tryUnmarshal(raw); ok {
		return ModelOutput{Structured: as}
	}

	if as, ok := tryUnmarshal(RepairJSON(raw)); ok {
		return ModelOutput{Structured: as}
	}

	return ModelOutput{Freeform: strings.TrimSpace(stripFences(raw))}
}

func tryUnmarshal(text string) (*chatdomain.ActionSet, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}
	var as chatdomain.ActionSet
	if err := json.Unmarshal([]byte(text), &as); err != nil {
		return nil, false
	}
	return &as, true
}

// RepairJSON applies tolerant fixes to almost-JSON model output:
// markdown fences, prose around the outer object, trailing commas,
// raw newlines inside strings, and truncated/unbalanced braces.
func RepairJSON(raw string) string {
	text := stripFences(raw)

	// Trim prose around the outermost object
	start := strings.Index(text, "{")
	if start == -1 {
		return strings.TrimSpace(text)
	}
	end := strings.LastIndex(text, "}")
	if end > start {
		text = text[start : end+1]
	} else {
		// No closing brace at all: keep the tail, the balancing pass
		// will close it
		text = text[start:]
	}

	text = escapeControlChars(text)
	text = stripTrailingCommas(text)
	text = balanceBrackets(text)
	text = stripTrailingCommas(text)
	return text
}

// stripTrailingCommas removes commas that sit right before a closing
// brace or bracket. String literals are walked, not pattern-matched,
// so a literal ",}" inside a value is left alone.
func stripTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var pending []rune // comma plus following whitespace, fate undecided
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			b.WriteRune(r)
			continue
		}

		if len(pending) > 0 {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				pending = append(pending, r)
				continue
			}
			if r == '}' || r == ']' {
				// Trailing comma: keep the whitespace, drop the comma
				for _, p := range pending[1:] {
					b.WriteRune(p)
				}
			} else {
				for _, p := range pending {
					b.WriteRune(p)
				}
			}
			pending = nil
		}

		switch r {
		case ',':
			pending = []rune{r}
			continue
		case '"':
			inString = true
		}
		b.WriteRune(r)
	}
	for _, p := range pending {
		b.WriteRune(p)
	}
	return b.String()
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

// escapeControlChars escapes raw newlines and tabs that models leave
// inside string literals.
func escapeControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			case r == '\r':
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// balanceBrackets closes unterminated strings and appends the closers
// a truncated completion dropped.
func balanceBrackets(text string) string {
	var stack []rune
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == r {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		text += `"`
	}
	// Truncation often ends mid-pair; drop a dangling comma or colon
	// before closing
	trimmed := strings.TrimRight(text, " \t\n")
	if strings.HasSuffix(trimmed, ",") || strings.HasSuffix(trimmed, ":") {
		if strings.HasSuffix(trimmed, ":") {
			trimmed += "null"
		} else {
			trimmed = strings.TrimSuffix(trimmed, ",")
		}
		text = trimmed
	}
	for i := len(stack) - 1; i >= 0; i-- {
		text += string(stack[i])
	}
	return text
}
