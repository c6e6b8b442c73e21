package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedReply means no JSON object could be recovered from a reply.
var ErrMalformedReply = errors.New("no valid JSON found in model reply")

var (
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	fencePattern  = regexp.MustCompile("```(?:json)?\\s*")
)

// ExtractJSON decodes the first JSON object found in text into v. It tries
// the whole reply, then the outermost brace span, then that span with
// markdown fences removed.
func ExtractJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if json.Unmarshal([]byte(text), v) == nil {
		return nil
	}
	span := objectPattern.FindString(text)
	if span == "" {
		return ErrMalformedReply
	}
	if json.Unmarshal([]byte(span), v) == nil {
		return nil
	}
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(span, ""))
	if json.Unmarshal([]byte(cleaned), v) == nil {
		return nil
	}
	return ErrMalformedReply
}
