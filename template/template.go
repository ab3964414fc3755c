// Package template scans query templates for {name} placeholders and rewrites
// them into driver-level positional parameters.
package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every MalformedTemplateError.
var ErrMalformed = errors.New("malformed template")

// MalformedTemplateError reports a '{' that is never closed, or a placeholder
// that shares a string literal with other text.
type MalformedTemplateError struct {
	Text   string
	Offset int
	Reason string
}

func (e *MalformedTemplateError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unterminated placeholder"
	}
	return fmt.Sprintf("%s at offset %d in %q", reason, e.Offset, e.Text)
}

func (e *MalformedTemplateError) Is(target error) bool {
	return target == ErrMalformed
}

// PlaceholderFunc returns the driver placeholder for the n-th (1-based) argument.
type PlaceholderFunc = func(n int) string

// token is one {name} occurrence. start and end cover the braces, and the
// surrounding quotes when the placeholder was written as '{name}'.
type token struct {
	name       string
	start, end int
}

// scan walks text tracking single-quoted literals, where a doubled quote is an
// escaped quote. A placeholder may stand alone or fill a whole literal. Any
// other placeholder inside a literal is an error, since the driver would see
// it as text.
func scan(text string) ([]token, error) {
	tokens := make([]token, 0)
	quote := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\'':
			switch {
			case quote < 0:
				quote = i
			case i+1 < len(text) && text[i+1] == '\'':
				i++
			default:
				quote = -1
			}
		case '{':
			closing := strings.IndexByte(text[i+1:], '}')
			if closing < 0 {
				return nil, &MalformedTemplateError{Text: text, Offset: i}
			}
			closing += i + 1

			t := token{name: text[i+1 : closing], start: i, end: closing + 1}
			if quote >= 0 {
				if quote != i-1 || closing+1 >= len(text) || text[closing+1] != '\'' {
					return nil, &MalformedTemplateError{Text: text, Offset: i, Reason: "placeholder inside a string literal"}
				}
				t.start--
				t.end++
				quote = -1
			}
			tokens = append(tokens, t)
			i = t.end - 1
		}
	}
	return tokens, nil
}

// Extract returns the placeholder names of text in the order they occur.
// Repeated names are returned once per occurrence. Braces do not nest: a
// placeholder runs from '{' to the first '}' after it.
func Extract(text string) ([]string, error) {
	tokens, err := scan(text)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = t.name
	}
	return names, nil
}

// Rewrite replaces the i-th placeholder occurrence of text with ph(i). A
// placeholder written as a quoted literal, '{name}', loses its quotes as
// well so the value is bound as a parameter rather than compared as text.
func Rewrite(text string, ph PlaceholderFunc) (string, error) {
	tokens, err := scan(text)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for i, t := range tokens {
		sb.WriteString(text[last:t.start])
		sb.WriteString(ph(i + 1))
		last = t.end
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}
