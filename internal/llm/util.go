// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock strips everything around the JSON payload of an LLM response.
// Models wrap JSON in ```json fences or conversational preambles even when
// instructed not to, so this handles fences, leading prose, and trailing prose.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	// Locate the first JSON value and cut away surrounding prose
	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")

	start := objIdx
	extract := extractJSONObject
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start = arrIdx
		extract = extractJSONArray
	}
	if start == -1 {
		return text
	}

	if payload := extract(text[start:]); payload != "" {
		return payload
	}
	return text
}

// extractJSONObject returns the balanced JSON object at the start of s,
// or "" if s does not begin with one. Braces inside strings are ignored.
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced JSON array at the start of s,
// or "" if s does not begin with one.
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, closing byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// characters inside strings never affect depth
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return ""
}
