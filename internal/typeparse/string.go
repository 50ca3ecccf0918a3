package typeparse

import "strings"

// String is a string that compares case-insensitively.
type String string

// Equal reports whether s and other are equal under Unicode case folding.
func (s String) Equal(other string) bool {
	return strings.EqualFold(string(s), other)
}

// Contains reports whether substr is within s, ignoring case.
func (s String) Contains(substr string) bool {
	return strings.Contains(strings.ToLower(string(s)), strings.ToLower(substr))
}

// HasPrefix reports whether s begins with prefix, ignoring case.
func (s String) HasPrefix(prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(string(s[:len(prefix)]), prefix)
}

func (s String) String() string { return string(s) }
