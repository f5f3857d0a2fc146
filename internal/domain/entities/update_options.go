package entities

import "strings"

// UpdateOptions holds the runtime options of a single decision run.
type UpdateOptions struct {
	Repository          Repository
	DependencyNames     []string // Lower-cased `--dep` override; empty means "schedule"
	DryRun              bool
	SecurityUpdatesOnly bool
	Verbose             bool
}

// ParseDependencyNames splits a `--dep` CSV value into lower-cased names.
func ParseDependencyNames(csv string) []string {
	var names []string
	for _, part := range strings.Split(csv, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// HasDependencyOverride reports whether explicit dependency names were given.
func (o UpdateOptions) HasDependencyOverride() bool {
	return len(o.DependencyNames) > 0
}

// Requested reports whether name is part of the `--dep` override.
func (o UpdateOptions) Requested(name string) bool {
	lowered := strings.ToLower(name)
	for _, candidate := range o.DependencyNames {
		if candidate == lowered {
			return true
		}
	}
	return false
}
