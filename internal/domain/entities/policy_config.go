package entities

// Allowed update types.
const (
	UpdateTypeAll      = "all"
	UpdateTypeSecurity = "security"
)

// Allowed dependency types.
const (
	DependencyTypeAll         = "all"
	DependencyTypeDirect      = "direct"
	DependencyTypeIndirect    = "indirect"
	DependencyTypeProduction  = "production"
	DependencyTypeDevelopment = "development"
)

// PolicyConfig is the validated, normalised form of one `updates` entry of a
// policy document. It is built once per run and never mutated afterwards.
type PolicyConfig struct {
	Ecosystem    string
	Directory    string
	TargetBranch string
	Schedule     Schedule

	DefaultReviewers *Reviewers
	DefaultAssignees []string
	DefaultMilestone *int
	CustomLabels     []string

	LockfileOnly               bool
	RequirementsUpdateStrategy string

	AllowedUpdates   []AllowedUpdate
	IgnoreConditions []IgnoreCondition
	Registries       RegistryRefs

	CommitMessage         CommitMessage
	OpenPullRequestsLimit *int
	RebaseStrategy        string
	BranchNameSeparator   string
	Vendor                bool

	InsecureExternalCodeExecution string
}

// Schedule is carried through untouched; the engine only needs it to exist.
type Schedule struct {
	Interval string
	Time     string
	Day      string
	Timezone string
}

// Reviewers splits `reviewers` into users and "org/team" slugs.
type Reviewers struct {
	UserReviewers []string
	TeamReviewers []string
}

// CommitMessage holds the `commit-message` options.
type CommitMessage struct {
	Prefix            string
	PrefixDevelopment string
	IncludeScope      *bool
}

// AllowedUpdate is a single `allow` rule.
type AllowedUpdate struct {
	UpdateType     string
	DependencyName string
	DependencyType string
}

// IgnoreCondition carries exactly one version requirement.
type IgnoreCondition struct {
	DependencyName     string
	VersionRequirement string
}

// RegistryRefs is either the "*" wildcard or a list of registry names.
type RegistryRefs struct {
	Wildcard bool
	Names    []string
}

// Registry is one entry of the top-level `registries` map.
type Registry struct {
	Name         string
	Type         string
	URL          string
	Username     string
	Password     string
	Key          string
	Token        string
	Organization string
	ReplacesBase bool
}

// Key returns the (ecosystem, directory, target branch) identity of the entry.
func (p PolicyConfig) Key() string {
	return p.Ecosystem + "|" + p.Directory + "|" + p.TargetBranch
}

// IgnoredVersionsFor returns the version requirements of every ignore
// condition whose name pattern matches the dependency name.
func (p PolicyConfig) IgnoredVersionsFor(dependencyName string) []string {
	var ignored []string
	for _, condition := range p.IgnoreConditions {
		if WildcardMatch(condition.DependencyName, dependencyName) {
			ignored = append(ignored, condition.VersionRequirement)
		}
	}
	return ignored
}

// RejectsExternalCode reports whether parsers must avoid running manifest code.
func (p PolicyConfig) RejectsExternalCode() bool {
	return p.InsecureExternalCodeExecution != "allow"
}

// PolicyDocument is a fully validated policy file.
type PolicyDocument struct {
	Updates    []PolicyConfig
	Registries map[string]Registry
}
