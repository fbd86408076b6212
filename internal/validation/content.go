// Package validation holds input checks shared by the services.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Length bounds, counted in runes after trimming surrounding whitespace.
const (
	PostMinLength     = 1
	PostMaxLength     = 5000
	CommentMinLength  = 1
	CommentMaxLength  = 1000
	QuestionMinLength = 10
	QuestionMaxLength = 1000
	AnswerMinLength   = 1
	AnswerMaxLength   = 2000
	MessageMinLength  = 1
	MessageMaxLength  = 2000
	MediaURLMaxLength = 2048
)

// Text trims value and checks that its rune count lies within [min, max].
// It returns the trimmed text.
func Text(field, value string, min, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0 && min > 0:
		return "", fmt.Errorf("%s is required", field)
	case n < min:
		return "", fmt.Errorf("%s must be at least %d characters", field, min)
	case n > max:
		return "", fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return trimmed, nil
}

// MediaURL accepts an empty string or an absolute http(s) URL with a host.
func MediaURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > MediaURLMaxLength {
		return "", fmt.Errorf("media_url must be at most %d characters", MediaURLMaxLength)
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("media_url must be an absolute http(s) URL")
	}
	return trimmed, nil
}
