// Package textnorm holds the text filters applied to extracted body text and
// outline titles before they are matched against each other.
package textnorm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidInput is returned by PunctuationValue for values that are neither
// a string nor a list of strings.
var ErrInvalidInput = errors.New("input must be a string or a list of strings")

// The right single quotation mark is rewritten first so it always becomes an
// apostrophe, whatever the table below says.
var apostrophe = strings.NewReplacer("’", "'")

var fullWidth = strings.NewReplacer(
	"，", ",",
	"。", ".",
	"！", "!",
	"？", "?",
	"：", ":",
	"；", ";",
	"“", "\"",
	"”", "\"",
	"‘", "'",
	"’", "'",
	"（", "(",
	"）", ")",
	"【", "[",
	"】", "]",
	"《", "<",
	"》", ">",
)

// Punctuation maps East-Asian full-width punctuation to ASCII.
func Punctuation(s string) string {
	return fullWidth.Replace(apostrophe.Replace(s))
}

// PunctuationAll applies Punctuation to every element and returns a new slice.
func PunctuationAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Punctuation(s)
	}
	return out
}

// PunctuationValue normalizes a dynamically typed value such as one decoded
// from JSON or YAML: a string, a []string, or a []any holding only strings.
func PunctuationValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return Punctuation(x), nil
	case []string:
		return PunctuationAll(x), nil
	case []any:
		out := make([]string, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T: %w", i, item, ErrInvalidInput)
			}
			out[i] = Punctuation(s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T: %w", v, ErrInvalidInput)
	}
}

var (
	// blankRun is a newline, any whitespace (including further newlines),
	// then a newline.
	blankRun     = regexp.MustCompile(`\n[\s\v\p{Z}\x{85}]*\n`)
	newlineFlood = regexp.MustCompile(`\n{3,}`)
)

// CollapseNewlines reduces every run of blank lines to a single blank line.
func CollapseNewlines(s string) string {
	s = blankRun.ReplaceAllString(s, "\n\n")
	return newlineFlood.ReplaceAllString(s, "\n\n")
}
