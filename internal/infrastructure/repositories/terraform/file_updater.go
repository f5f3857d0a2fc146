package terraform

import (
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

var sourceAttribute = regexp.MustCompile(`source\s*=\s*"([^"]+)"`)

// updateFiles edits module blocks, required_providers entries and the
// dependency lock file with hclwrite, leaving the rest of each file intact.
func updateFiles(dependencies []entities.Dependency, files []entities.DependencyFile) ([]entities.UpdatedFile, error) {
	parsed := make(map[string]*hclwrite.File, len(files))
	for _, file := range files {
		document, diags := hclwrite.ParseConfig([]byte(file.Content), file.Name, hcl.InitialPos)
		if diags.HasErrors() {
			continue
		}
		parsed[file.Name] = document
	}

	for _, dependency := range dependencies {
		for i, requirement := range dependency.Requirements {
			document, ok := parsed[requirement.File]
			if !ok || i >= len(dependency.PreviousRequirements) {
				continue
			}
			previous := dependency.PreviousRequirements[i].Requirement
			if previous == requirement.Requirement {
				continue
			}
			switch group(requirement) {
			case groupProviders:
				updateRequiredProvider(document.Body(), dependency.Name, previous, requirement.Requirement)
			case groupModules:
				updateModules(document.Body(), dependency.Name, func(block *hclwrite.Block) {
					block.Body().SetAttributeValue("version", cty.StringVal(requirement.Requirement))
				})
			case groupGitModules:
				updateModules(document.Body(), dependency.Name, func(block *hclwrite.Block) {
					source := attributeString(block.Body().GetAttribute("source"))
					block.Body().SetAttributeValue("source", cty.StringVal(withRef(source, requirement.Requirement)))
				})
			}
		}

		if lock, ok := parsed[lockFile]; ok && dependency.HasVersion() && dependency.Version != dependency.PreviousVersion {
			updateLock(lock.Body(), dependency)
		}
	}

	var updated []entities.UpdatedFile
	for _, file := range files {
		document, ok := parsed[file.Name]
		if !ok {
			continue
		}
		if content := string(document.Bytes()); content != file.Content {
			updated = append(updated, entities.UpdatedFile{Name: file.Name, Content: content})
		}
	}
	return updated, nil
}

func group(requirement entities.Requirement) string {
	if len(requirement.Groups) == 0 {
		return ""
	}
	return requirement.Groups[0]
}

func updateModules(body *hclwrite.Body, name string, update func(*hclwrite.Block)) {
	for _, block := range body.Blocks() {
		if block.Type() != "module" {
			continue
		}
		source := attributeString(block.Body().GetAttribute("source"))
		if registryAddress(source) == name || withoutRef(source) == name {
			update(block)
		}
	}
}

// updateRequiredProvider rewrites the version string in place: entries are
// object expressions that hclwrite cannot address attribute by attribute.
func updateRequiredProvider(body *hclwrite.Body, name, previous, requirement string) {
	for _, block := range body.Blocks() {
		if block.Type() != "terraform" {
			continue
		}
		for _, providers := range block.Body().Blocks() {
			if providers.Type() != groupProviders {
				continue
			}
			for localName, attribute := range providers.Body().Attributes() {
				tokens := attribute.Expr().BuildTokens(nil)
				source := "hashicorp/" + localName
				if match := sourceAttribute.FindSubmatch(tokens.Bytes()); match != nil {
					source = registryAddress(string(match[1]))
				}
				if source != name {
					continue
				}
				for _, token := range tokens {
					if token.Type == hclsyntax.TokenQuotedLit && string(token.Bytes) == previous {
						token.Bytes = []byte(requirement)
						break
					}
				}
			}
		}
	}
}

// updateLock moves the locked version and drops the hashes; `terraform init`
// records fresh ones.
func updateLock(body *hclwrite.Body, dependency entities.Dependency) {
	for _, block := range body.Blocks() {
		if block.Type() != "provider" || len(block.Labels()) == 0 || registryAddress(block.Labels()[0]) != dependency.Name {
			continue
		}
		block.Body().SetAttributeValue("version", cty.StringVal(dependency.Version))
		if block.Body().GetAttribute("constraints") != nil && len(dependency.Requirements) > 0 {
			block.Body().SetAttributeValue("constraints", cty.StringVal(dependency.Requirements[0].Requirement))
		}
		block.Body().RemoveAttribute("hashes")
	}
}

func attributeString(attribute *hclwrite.Attribute) string {
	if attribute == nil {
		return ""
	}
	raw := strings.TrimSpace(string(attribute.Expr().BuildTokens(nil).Bytes()))
	return strings.Trim(raw, `"`)
}
