// Package tokenizer splits normalized document text into terms. Text is
// expected to be lower-cased already; the tokenizer only cuts it on runs of
// non-word characters.
package tokenizer

import (
	"strings"
	"unicode"
)

// Options controls how the splitter treats the empty strings produced by
// leading, trailing or whole-text separators.
type Options struct {
	// KeepEmpty keeps "" as a term, matching a naive regexp split on \W+.
	KeepEmpty bool
}

// IsWordRune reports whether r belongs to a term: a letter, a number or an
// underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Split breaks text into terms in order of appearance. Duplicates are kept.
func Split(text string, opts Options) []string {
	if !opts.KeepEmpty {
		return strings.FieldsFunc(text, func(r rune) bool {
			return !IsWordRune(r)
		})
	}

	terms := make([]string, 0, len(text)/6+1)
	start := 0
	inSep := false
	for i, r := range text {
		if IsWordRune(r) {
			if inSep {
				start = i
				inSep = false
			}
			continue
		}
		if !inSep {
			terms = append(terms, text[start:i])
			inSep = true
		}
	}
	if inSep {
		terms = append(terms, "")
	} else {
		terms = append(terms, text[start:])
	}
	return terms
}
