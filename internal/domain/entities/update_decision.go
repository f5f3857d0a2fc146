package entities

// UnlockStrategy is how much of the requirement graph an update may loosen.
type UnlockStrategy string

const (
	UnlockNone       UnlockStrategy = "none"
	UnlockOwn        UnlockStrategy = "own"
	UnlockAll        UnlockStrategy = "all"
	UnlockImpossible UnlockStrategy = "update_not_possible"
)

// UnlockLevel is the argument UpdateChecker.CanUpdate accepts.
type UnlockLevel string

const (
	LevelNone UnlockLevel = "none"
	LevelOwn  UnlockLevel = "own"
	LevelAll  UnlockLevel = "all"
)

// Level returns the checker level matching a feasible strategy.
func (s UnlockStrategy) Level() UnlockLevel {
	switch s {
	case UnlockOwn:
		return LevelOwn
	case UnlockAll:
		return LevelAll
	default:
		return LevelNone
	}
}

// Outcome describes why a decision ended the way it did.
type Outcome string

const (
	OutcomeUpdated           Outcome = "updated"
	OutcomeUpToDate          Outcome = "up_to_date"
	OutcomeNotVulnerable     Outcome = "not_vulnerable"
	OutcomeVersionUnknown    Outcome = "version_unknown"
	OutcomeUpdateNotPossible Outcome = "update_not_possible"
	OutcomePeerCanUpdate     Outcome = "peer_can_update"
	OutcomeError             Outcome = "error"
)

// ConflictingDependency explains why an update is blocked.
type ConflictingDependency struct {
	Name        string
	Explanation string
}

// UpdateDecision is the terminal result for one scheduled dependency.
type UpdateDecision struct {
	Dependency              Dependency
	UnlockStrategy          UnlockStrategy
	ConflictingDependencies []ConflictingDependency
	IsSecurityFix           bool

	Outcome              Outcome
	Vulnerable           bool
	LatestVersion        string
	LatestAllowedVersion string
	UpdatedDependencies  []Dependency
	UpdatedFiles         []UpdatedFile
	Err                  error
}

// Emitted reports whether the decision belongs in the final report. Peer
// vetoed decisions are dropped: the peer's own turn drives its update.
func (d UpdateDecision) Emitted() bool {
	return d.Outcome != OutcomePeerCanUpdate
}

// PolicyReport groups the decisions for one policy entry, in schedule order.
type PolicyReport struct {
	Policy    PolicyConfig
	Files     []DependencyFile
	Decisions []UpdateDecision
	Err       error // set when the entry stopped before its schedule finished
}
