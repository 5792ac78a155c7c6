package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/penny/internal/common"
)

var sqlPattern = regexp.MustCompile(`(?is)\bselect\b[^;]*;`)

// ExtractObject returns the first balanced {...} span in text that is valid JSON.
func ExtractObject(text string) (json.RawMessage, error) {
	return extractJSON(text, '{', '}')
}

// ExtractArray returns the first balanced [...] span in text that is valid JSON.
func ExtractArray(text string) (json.RawMessage, error) {
	return extractJSON(text, '[', ']')
}

// DecodeObject extracts the first JSON object in text and unmarshals it into v.
func DecodeObject(text string, v any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnparseableResponse, err)
	}
	return nil
}

// DecodeArray extracts the first JSON array in text and unmarshals it into v.
func DecodeArray(text string, v any) error {
	raw, err := ExtractArray(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnparseableResponse, err)
	}
	return nil
}

// ExtractSQL returns the text from the first SELECT keyword through the next
// semicolon, inclusive.
func ExtractSQL(text string) (string, error) {
	match := sqlPattern.FindString(cleanMarkdownWrapper(text))
	if match == "" {
		return "", fmt.Errorf("%w: no SELECT statement found", common.ErrUnparseableResponse)
	}
	return strings.TrimSpace(match), nil
}

func extractJSON(text string, open, closing byte) (json.RawMessage, error) {
	for start := strings.IndexByte(text, open); start >= 0; {
		if end := balancedEnd(text, start, open, closing); end >= 0 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}

		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, fmt.Errorf("%w: no JSON %c%c found", common.ErrUnparseableResponse, open, closing)
}

// balancedEnd returns the index of the delimiter closing the one at start, or -1.
// Delimiters inside JSON strings are ignored.
func balancedEnd(text string, start int, open, closing byte) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// cleanMarkdownWrapper removes markdown code block wrappers from model output.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	if idx := strings.Index(content, "\n"); idx != -1 {
		content = content[idx+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
