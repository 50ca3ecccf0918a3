package humanize

import (
	"strings"

	"github.com/gertd/go-pluralize"
)

var inflector = pluralize.NewClient()

// Plural inflects noun to agree with count. A count of exactly one (or minus
// one) keeps the singular. Multi-word nouns inflect their last word; the
// inflector keeps the word's case.
func Plural(noun string, count float64) string {
	if noun == "" || count == 1 || count == -1 {
		return noun
	}

	idx := strings.LastIndexByte(noun, ' ')
	head, word := noun[:idx+1], noun[idx+1:]
	if word == "" {
		return noun
	}
	return head + inflector.Plural(word)
}
