package policy

import (
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// ValidatorRepository validates policy documents against the embedded schema
// and the cross-field rules, then transforms them into PolicyConfig entries.
type ValidatorRepository struct {
	schemas *schemaSet
	lookup  entities.VersionSchemeLookup
}

// NewValidatorRepository creates a validator using lookup to parse ignore
// condition requirements.
func NewValidatorRepository(lookup entities.VersionSchemeLookup) (repositories.PolicyRepository, error) {
	schemas, err := newSchemaSet(schemaV2)
	if err != nil {
		return nil, err
	}
	return &ValidatorRepository{schemas: schemas, lookup: lookup}, nil
}

// ValidateAndTransform runs every validation stage in order and stops at the
// first stage that reports violations. Each stage reports all of its own.
func (r *ValidatorRepository) ValidateAndTransform(content []byte) (*entities.PolicyDocument, error) {
	root, err := decodeDocument(content)
	if err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, &entities.ConfigUnparseableError{
			Reason: "top level entity must be an Object, not a " + kindName(root),
		}
	}

	tree, _ := toTree(root).(map[string]interface{})
	stages := []func(map[string]interface{}) ([]entities.Violation, error){
		r.validateTopLevel,
		validateUniqueUpdates,
		r.validateUpdates,
		r.validateRegistries,
		validateRegistryReferences,
		r.validateIgnoreConditions,
	}
	for _, stage := range stages {
		violations, stageErr := stage(tree)
		if stageErr != nil {
			return nil, stageErr
		}
		if len(violations) > 0 {
			return nil, &entities.ConfigInvalidError{Violations: violations}
		}
	}

	document, err := transform(root)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Validated policy with %d update entries and %d registries",
		len(document.Updates), len(document.Registries))
	return document, nil
}

func (r *ValidatorRepository) validateTopLevel(tree map[string]interface{}) ([]entities.Violation, error) {
	return r.schemas.validate("top_level", tree, "")
}

func validateUniqueUpdates(tree map[string]interface{}) ([]entities.Violation, error) {
	type updateKey struct {
		ecosystem, directory, targetBranch string
		hasTargetBranch                    bool
	}

	var violations []entities.Violation
	seen := make(map[updateKey]bool)
	for index, update := range updateEntries(tree) {
		targetBranch, hasTargetBranch := update["target-branch"].(string)
		key := updateKey{
			ecosystem:       stringField(update, "package-ecosystem"),
			directory:       stringField(update, "directory"),
			targetBranch:    targetBranch,
			hasTargetBranch: hasTargetBranch,
		}
		if !seen[key] {
			seen[key] = true
			continue
		}

		pointer := fmt.Sprintf("#/updates/%d", index)
		violations = append(violations, entities.Violation{
			Pointer: pointer,
			Message: fmt.Sprintf("The property '%s' is a duplicate. Update configs must have a unique "+
				"combination of 'package-ecosystem', 'directory', and 'target-branch'", pointer),
		})
	}
	return violations, nil
}

func (r *ValidatorRepository) validateUpdates(tree map[string]interface{}) ([]entities.Violation, error) {
	var violations []entities.Violation
	for index, update := range updateEntries(tree) {
		found, err := r.schemas.validate(
			stringField(update, "package-ecosystem"), update, fmt.Sprintf("/updates/%d", index),
		)
		if err != nil {
			return nil, err
		}
		violations = append(violations, found...)
	}
	return violations, nil
}

func (r *ValidatorRepository) validateRegistries(tree map[string]interface{}) ([]entities.Violation, error) {
	registries, _ := tree["registries"].(map[string]interface{})

	var violations []entities.Violation
	for _, name := range sortedKeys(registries) {
		registry, _ := registries[name].(map[string]interface{})
		found, err := r.schemas.validate(stringField(registry, "type"), registry, "/registries/"+name)
		if err != nil {
			return nil, err
		}
		violations = append(violations, found...)
	}
	return violations, nil
}

func validateRegistryReferences(tree map[string]interface{}) ([]entities.Violation, error) {
	defined, _ := tree["registries"].(map[string]interface{})

	var violations []entities.Violation
	for index, update := range updateEntries(tree) {
		names, isList := update["registries"].([]interface{})
		if !isList {
			continue
		}
		pointer := fmt.Sprintf("#/updates/%d/registries", index)
		for _, raw := range names {
			name, _ := raw.(string)
			if _, ok := defined[name]; ok {
				continue
			}
			violations = append(violations, entities.Violation{
				Pointer: pointer,
				Message: fmt.Sprintf("The property '%s' includes the %q registry which is not defined "+
					"in the top-level 'registries' definition", pointer, name),
			})
		}
	}
	return violations, nil
}

func (r *ValidatorRepository) validateIgnoreConditions(tree map[string]interface{}) ([]entities.Violation, error) {
	var violations []entities.Violation
	for index, update := range updateEntries(tree) {
		alias := stringField(update, "package-ecosystem")
		ecosystem, _ := entities.CanonicalEcosystem(alias)
		scheme, err := r.lookup.SchemeFor(ecosystem)
		if err != nil {
			return nil, err
		}

		conditions, _ := update["ignore"].([]interface{})
		for position, raw := range conditions {
			condition, _ := raw.(map[string]interface{})
			if ignoreVersionsValid(condition["versions"], scheme) {
				continue
			}
			pointer := fmt.Sprintf("#/updates/%d/ignore/%d/versions", index, position)
			violations = append(violations, entities.Violation{
				Pointer: pointer,
				Message: fmt.Sprintf("The property '%s' is an invalid version requirement "+
					"for a %s ignore condition", pointer, alias),
			})
		}
	}
	return violations, nil
}

func ignoreVersionsValid(versions interface{}, scheme entities.VersionScheme) bool {
	for _, requirement := range flattenStrings(versions) {
		if _, err := scheme.ParseRequirement(requirement); err != nil {
			return false
		}
	}
	return true
}

func updateEntries(tree map[string]interface{}) []map[string]interface{} {
	raw, _ := tree["updates"].([]interface{})
	entries := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		entry, _ := item.(map[string]interface{})
		entries = append(entries, entry)
	}
	return entries
}

func stringField(fields map[string]interface{}, key string) string {
	value, _ := fields[key].(string)
	return value
}

// flattenStrings accepts a single string or a list of strings.
func flattenStrings(value interface{}) []string {
	switch typed := value.(type) {
	case string:
		return []string{typed}
	case []interface{}:
		values := make([]string, 0, len(typed))
		for _, item := range typed {
			if text, ok := item.(string); ok {
				values = append(values, text)
			}
		}
		return values
	default:
		return nil
	}
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
