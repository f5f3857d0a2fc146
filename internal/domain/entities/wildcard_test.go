//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

func TestWildcardMatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		pattern   string
		candidate string
		expected  bool
	}{
		{"trailing star matches a suffix", "foo-*", "foo-bar", true},
		{"trailing star does not match elsewhere", "foo-*", "bar-foo", false},
		{"lone star matches anything", "*", "anything-at-all", true},
		{"star matches zero characters", "foo*", "foo", true},
		{"inner star", "@types/*-utils", "@types/string-utils", true},
		{"matching ignores case", "Express", "eXpReSs", true},
		{"no star requires exact match", "react", "react-dom", false},
		{"regex metacharacters are literal", "lodash.merge", "lodashXmerge", false},
		{"literal dot still matches itself", "lodash.merge", "lodash.merge", true},
		{"plus is literal", "c++*", "c++lib", true},
		{"empty pattern never matches", "", "foo", false},
		{"empty candidate never matches", "*", "", false},
	}

	for _, tc := range cases {
		t.Run("should handle "+tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			result := entities.WildcardMatch(tc.pattern, tc.candidate)

			// then
			assert.Equal(t, tc.expected, result)
		})
	}
}
