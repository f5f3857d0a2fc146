package entities

import (
	"regexp"
	"strings"
)

// WildcardMatch reports whether candidate matches pattern. The comparison is
// case-insensitive and `*` matches zero or more characters; every other
// character, regex metacharacters included, matches literally. An empty
// pattern or candidate never matches.
func WildcardMatch(pattern, candidate string) bool {
	if pattern == "" || candidate == "" {
		return false
	}

	segments := strings.Split(strings.ToLower(pattern), "*")
	for i, segment := range segments {
		segments[i] = regexp.QuoteMeta(segment)
	}

	expression, err := regexp.Compile("^" + strings.Join(segments, ".*") + "$")
	if err != nil {
		return false
	}
	return expression.MatchString(strings.ToLower(candidate))
}
