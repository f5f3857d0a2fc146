package terraform

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const (
	lockFile = ".terraform.lock.hcl"

	groupProviders  = "required_providers"
	groupModules    = "module"
	groupGitModules = "git_module"
)

var (
	exactVersion   = regexp.MustCompile(`^=?\s*v?\d+\.\d+\.\d+$`)
	moduleFallback = regexp.MustCompile(`(?s)module\s+"([^"]+)"\s*\{[^}]*source\s*=\s*"([^"]+)"`)
)

//nolint:gochecknoglobals // static HCL schemas
var (
	rootSchema = &hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{
		{Type: "terraform"},
		{Type: "module", LabelNames: []string{"name"}},
	}}
	terraformSchema = &hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{{Type: "required_providers"}}}
	lockSchema      = &hcl.BodySchema{Blocks: []hcl.BlockHeaderSchema{
		{Type: "provider", LabelNames: []string{"address"}},
	}}
)

// scanner accumulates dependencies across the .tf files of one directory.
type scanner struct {
	byName map[string]*entities.Dependency
	locked map[string]string
}

func scanFiles(files []entities.DependencyFile) []entities.Dependency {
	s := &scanner{byName: make(map[string]*entities.Dependency), locked: make(map[string]string)}
	for _, file := range files {
		if file.Name == lockFile {
			s.scanLock(file)
		}
	}
	for _, file := range files {
		if strings.HasSuffix(file.Name, ".tf") {
			s.scanConfig(file)
		}
	}

	dependencies := make([]entities.Dependency, 0, len(s.byName))
	for _, dependency := range s.byName {
		dependencies = append(dependencies, *dependency)
	}
	sort.Slice(dependencies, func(i, j int) bool { return dependencies[i].Name < dependencies[j].Name })
	return dependencies
}

func (s *scanner) add(name, version, requirement, file, group string) {
	dependency, seen := s.byName[name]
	if !seen {
		dependency = &entities.Dependency{
			Name:           name,
			Version:        version,
			PackageManager: entities.EcosystemTerraform,
			Production:     true,
		}
		s.byName[name] = dependency
	}
	dependency.Requirements = append(dependency.Requirements, entities.Requirement{
		Requirement: requirement,
		File:        file,
		Groups:      []string{group},
	})
}

func (s *scanner) scanLock(file entities.DependencyFile) {
	parsed, diags := hclparse.NewParser().ParseHCL([]byte(file.Content), file.Name)
	if diags.HasErrors() {
		return
	}
	content, _, _ := parsed.Body.PartialContent(lockSchema)
	for _, block := range content.Blocks {
		attributes, _ := block.Body.JustAttributes()
		if version, ok := stringAttribute(attributes, "version"); ok {
			s.locked[registryAddress(block.Labels[0])] = version
		}
	}
}

// scanConfig falls back to a regex scan of module blocks when the file is
// not valid HCL.
func (s *scanner) scanConfig(file entities.DependencyFile) {
	parsed, diags := hclparse.NewParser().ParseHCL([]byte(file.Content), file.Name)
	if diags.HasErrors() {
		s.scanWithRegex(file)
		return
	}

	content, _, diags := parsed.Body.PartialContent(rootSchema)
	if diags.HasErrors() {
		s.scanWithRegex(file)
		return
	}
	for _, block := range content.Blocks {
		switch block.Type {
		case "terraform":
			s.scanRequiredProviders(block, file.Name)
		case "module":
			attributes, _ := block.Body.JustAttributes()
			source, ok := stringAttribute(attributes, "source")
			if !ok {
				continue
			}
			version, _ := stringAttribute(attributes, "version")
			s.addModule(source, version, file.Name)
		}
	}
}

func (s *scanner) scanRequiredProviders(block *hcl.Block, file string) {
	content, _, _ := block.Body.PartialContent(terraformSchema)
	for _, providers := range content.Blocks {
		attributes, _ := providers.Body.JustAttributes()
		for localName, attribute := range attributes {
			value, diags := attribute.Expr.Value(nil)
			if diags.HasErrors() {
				continue
			}
			source, requirement := providerRequirement(localName, value)
			if requirement == "" {
				continue
			}
			s.add(source, s.locked[source], requirement, file, groupProviders)
		}
	}
}

// providerRequirement reads both the object form and the legacy string form,
// where the source is implied to be hashicorp/<local name>.
func providerRequirement(localName string, value cty.Value) (string, string) {
	source := "hashicorp/" + localName
	if value.Type() == cty.String {
		return source, value.AsString()
	}
	if !value.Type().IsObjectType() {
		return source, ""
	}
	if value.Type().HasAttribute("source") {
		if attribute := value.GetAttr("source"); attribute.Type() == cty.String && attribute.IsKnown() {
			source = registryAddress(attribute.AsString())
		}
	}
	if !value.Type().HasAttribute("version") {
		return source, ""
	}
	version := value.GetAttr("version")
	if version.Type() != cty.String || !version.IsKnown() {
		return source, ""
	}
	return source, version.AsString()
}

func (s *scanner) addModule(source, version, file string) {
	if isGitModule(source) {
		if ref := gitRef(source); ref != "" {
			s.add(withoutRef(source), ref, ref, file, groupGitModules)
		}
		return
	}
	if version == "" || strings.Count(registryAddress(source), "/") != 2 {
		return
	}
	pinned := ""
	if exactVersion.MatchString(version) {
		pinned = strings.TrimSpace(strings.TrimPrefix(version, "="))
	}
	s.add(registryAddress(source), pinned, version, file, groupModules)
}

func (s *scanner) scanWithRegex(file entities.DependencyFile) {
	for _, match := range moduleFallback.FindAllStringSubmatch(file.Content, -1) {
		if isGitModule(match[2]) {
			s.addModule(match[2], "", file.Name)
		}
	}
}

func stringAttribute(attributes hcl.Attributes, name string) (string, bool) {
	attribute, ok := attributes[name]
	if !ok {
		return "", false
	}
	value, diags := attribute.Expr.Value(&hcl.EvalContext{})
	if diags.HasErrors() || value.Type() != cty.String || !value.IsKnown() {
		return "", false
	}
	return value.AsString(), true
}
