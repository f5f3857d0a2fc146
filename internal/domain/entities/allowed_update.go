package entities

// IsAllowedUpdate reports whether any of the policy's allow rules permits the
// dependency to be updated.
func IsAllowedUpdate(
	rules []AllowedUpdate,
	advisories []SecurityAdvisory,
	dependency Dependency,
	scheme VersionScheme,
) bool {
	for _, rule := range rules {
		if ruleMatches(rule, advisories, dependency, scheme) {
			return true
		}
	}
	return false
}

func ruleMatches(
	rule AllowedUpdate,
	advisories []SecurityAdvisory,
	dependency Dependency,
	scheme VersionScheme,
) bool {
	updateType := defaultString(rule.UpdateType, UpdateTypeAll)
	if updateType == UpdateTypeSecurity && !IsVulnerable(advisories, dependency, scheme) {
		return false
	}

	namePattern := defaultString(rule.DependencyName, "*")
	if !WildcardMatch(namePattern, dependency.Name) {
		return false
	}

	return dependencyTypeMatches(defaultString(rule.DependencyType, DependencyTypeAll), dependency)
}

func dependencyTypeMatches(dependencyType string, dependency Dependency) bool {
	switch dependencyType {
	case DependencyTypeAll:
		return true
	case DependencyTypeIndirect:
		return !dependency.TopLevel()
	case DependencyTypeDirect:
		return dependency.TopLevel()
	case DependencyTypeProduction:
		return dependency.TopLevel() && dependency.Production
	case DependencyTypeDevelopment:
		return dependency.TopLevel() && !dependency.Production
	default:
		return false
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
