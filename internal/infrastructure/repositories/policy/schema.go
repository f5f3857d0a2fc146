package policy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

//go:embed schema/v2.json
var schemaV2 []byte

const rootContext = "(root)"

// allOfSummary is the extra error gojsonschema adds next to the errors of the
// failing branches of an allOf.
const allOfSummary = "number_all_of"

// schemaSet compiles one gojsonschema.Schema per definition on first use.
type schemaSet struct {
	mu          sync.Mutex
	draft       interface{}
	definitions map[string]interface{}
	compiled    map[string]*gojsonschema.Schema
}

func newSchemaSet(raw []byte) (*schemaSet, error) {
	var document map[string]interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("failed to parse embedded policy schema: %w", err)
	}
	definitions, ok := document["definitions"].(map[string]interface{})
	if !ok {
		return nil, errors.New("embedded policy schema has no definitions")
	}
	return &schemaSet{
		draft:       document["$schema"],
		definitions: definitions,
		compiled:    make(map[string]*gojsonschema.Schema),
	}, nil
}

func (s *schemaSet) definition(name string) (*gojsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if compiled, ok := s.compiled[name]; ok {
		return compiled, nil
	}
	if _, ok := s.definitions[name]; !ok {
		return nil, fmt.Errorf("policy schema has no definition %q", name)
	}

	root := map[string]interface{}{
		"$schema":     s.draft,
		"definitions": s.definitions,
		"$ref":        "#/definitions/" + name,
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root))
	if err != nil {
		return nil, fmt.Errorf("failed to compile policy schema %q: %w", name, err)
	}
	s.compiled[name] = compiled
	return compiled, nil
}

// validate checks value against a definition and returns the violations with
// their pointers rooted under prefix (e.g. "/updates/2").
func (s *schemaSet) validate(name string, value interface{}, prefix string) ([]entities.Violation, error) {
	compiled, err := s.definition(name)
	if err != nil {
		return nil, err
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("failed to validate against %q: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]entities.Violation, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		if resultErr.Type() == allOfSummary {
			continue
		}
		pointer := pointerFor(prefix, resultErr.Context().String("/"))
		violations = append(violations, entities.Violation{
			Pointer: pointer,
			Message: describe(pointer, resultErr),
		})
	}
	return violations, nil
}

func pointerFor(prefix, context string) string {
	path := prefix + strings.TrimPrefix(context, rootContext)
	if path == "" {
		return "#/"
	}
	return "#" + path
}

func describe(pointer string, resultErr gojsonschema.ResultError) string {
	if resultErr.Type() == "required" {
		return fmt.Sprintf(
			"The property '%s' did not contain a required property of '%v'",
			pointer, resultErr.Details()["property"],
		)
	}
	return fmt.Sprintf("The property '%s' %s", pointer, lowerFirst(resultErr.Description()))
}

func lowerFirst(text string) string {
	if text == "" {
		return text
	}
	return strings.ToLower(text[:1]) + text[1:]
}
