package biz

import (
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/mktud1/arq503/internal/pkg/errors"
)

// minUsefulChars is the minimum count of non-whitespace characters a
// completion must carry before payload recovery is even attempted.
const minUsefulChars = 10

// RecoverJSON pulls the JSON payload out of a raw completion. The model
// may wrap the payload in a markdown code fence or surround it with prose;
// recovery slices from the first opening bracket to the last terminator of
// the same class. A terminator character appearing in trailing prose makes
// the slice over-extend and the candidate fail validation; that run then
// fails rather than guessing at a repair.
func RecoverJSON(raw string) (string, error) {
	text := stripCodeFence(raw)

	if countNonSpace(text) < minUsefulChars {
		return "", errors.Newf(errors.ErrMalformedModelOutput,
			"response carries fewer than %d useful characters", minUsefulChars)
	}

	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start, terminator := objStart, byte('}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, terminator = arrStart, ']'
	}
	if start == -1 {
		return "", errors.New(errors.ErrMalformedModelOutput, "no JSON object or array found")
	}

	end := strings.LastIndexByte(text, terminator)
	if end <= start {
		return "", errors.New(errors.ErrMalformedModelOutput, "unterminated JSON payload")
	}

	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", errors.New(errors.ErrMalformedModelOutput, "recovered payload is not valid JSON")
	}

	return candidate, nil
}

// stripCodeFence removes a wrapping markdown fence, tolerating a language
// tag on the opening line.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if nl := strings.IndexByte(text, '\n'); nl != -1 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}

	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}

	return strings.TrimSpace(text)
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
