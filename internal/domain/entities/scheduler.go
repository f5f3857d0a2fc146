package entities

import (
	"math/rand/v2"
	"sync"
)

// MaxVulnerableFirst bounds how many vulnerable dependencies are pulled to
// the front of a schedule so security work cannot consume a whole run.
const MaxVulnerableFirst = 10

// UpdateScheduler orders allowed dependencies for processing. It is shared
// by every policy entry of a run, so Order is safe for concurrent use.
type UpdateScheduler struct {
	mu     sync.Mutex
	random *rand.Rand
}

// NewUpdateScheduler builds a scheduler drawing randomness from source.
// Pass a seeded source in tests.
func NewUpdateScheduler(source rand.Source) *UpdateScheduler {
	return &UpdateScheduler{random: rand.New(source)}
}

// Order returns a random sample of at most MaxVulnerableFirst vulnerable
// dependencies followed by every non-vulnerable dependency in random order.
// The whole list is shuffled, not just the leftovers, so repeated runs that
// hit a time budget do not always start with the same dependencies.
func (s *UpdateScheduler) Order(
	allowed []Dependency,
	isVulnerable func(Dependency) bool,
) []Dependency {
	shuffled := make([]Dependency, len(allowed))
	copy(shuffled, allowed)
	s.mu.Lock()
	s.random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()

	var vulnerable, rest []Dependency
	for _, dependency := range shuffled {
		if isVulnerable(dependency) {
			vulnerable = append(vulnerable, dependency)
		} else {
			rest = append(rest, dependency)
		}
	}

	if len(vulnerable) > MaxVulnerableFirst {
		vulnerable = vulnerable[:MaxVulnerableFirst]
	}

	ordered := make([]Dependency, 0, len(vulnerable)+len(rest))
	ordered = append(ordered, vulnerable...)
	return append(ordered, rest...)
}
