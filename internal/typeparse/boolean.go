// Package typeparse coerces loosely typed input into Go values.
package typeparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotBoolean is returned when a value is in neither the truthy nor the falsey set.
var ErrNotBoolean = errors.New("typeparse: value is not a boolean")

var (
	defaultTruthy = []string{"true", "t", "yes", "y", "1"}
	defaultFalsey = []string{"false", "f", "no", "n", "0"}
)

// BoolOptions adjust the accepted spellings. Matching is case-insensitive.
type BoolOptions struct {
	TruthyAdditional []string
	TruthyExclude    []string
	FalseyAdditional []string
	FalseyExclude    []string
	FalseOnNotFound  bool // unrecognized values parse as false instead of erroring
}

// ParseBool interprets value, which may be a bool, an integer or a string.
func ParseBool(value any, opts BoolOptions) (bool, error) {
	var s string
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		s = v
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case uint:
		s = strconv.FormatUint(uint64(v), 10)
	case fmt.Stringer:
		s = v.String()
	default:
		return false, fmt.Errorf("%w: unsupported type %T", ErrNotBoolean, value)
	}

	key := strings.ToLower(strings.TrimSpace(s))
	if buildSet(defaultTruthy, opts.TruthyAdditional, opts.TruthyExclude)[key] {
		return true, nil
	}
	if buildSet(defaultFalsey, opts.FalseyAdditional, opts.FalseyExclude)[key] {
		return false, nil
	}
	if opts.FalseOnNotFound {
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrNotBoolean, s)
}

func buildSet(defaults, additional, exclude []string) map[string]bool {
	set := make(map[string]bool, len(defaults)+len(additional))
	for _, v := range defaults {
		set[v] = true
	}
	for _, v := range additional {
		set[strings.ToLower(v)] = true
	}
	for _, v := range exclude {
		delete(set, strings.ToLower(v))
	}
	return set
}
