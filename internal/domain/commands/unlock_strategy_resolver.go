package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// Unlock machine states. The check_* states ask the checker; the others are final.
const (
	stateCheckNone  = "check_none"
	stateCheckOwn   = "check_own"
	stateCheckAll   = "check_all"
	stateNone       = "none"
	stateOwn        = "own"
	stateAll        = "all"
	stateImpossible = "impossible"

	eventFeasible   = "feasible"
	eventInfeasible = "infeasible"
)

//nolint:gochecknoglobals // static lookup tables
var (
	checkLevels = map[string]entities.UnlockLevel{
		stateCheckNone: entities.LevelNone,
		stateCheckOwn:  entities.LevelOwn,
		stateCheckAll:  entities.LevelAll,
	}

	finalStrategies = map[string]entities.UnlockStrategy{
		stateNone:       entities.UnlockNone,
		stateOwn:        entities.UnlockOwn,
		stateAll:        entities.UnlockAll,
		stateImpossible: entities.UnlockImpossible,
	}
)

// unlockContext is the statekit machine context; the machine itself only
// routes events, the checker calls happen in Resolve.
type unlockContext struct {
	Dependency string
}

// PeerCheckerFunc builds a fresh checker for a peer in its pre-update form.
type PeerCheckerFunc func(peer entities.Dependency) repositories.UpdateChecker

// UnlockStrategyResolver decides how far requirements must be loosened for a
// dependency to move, and whether a peer should drive the update instead.
type UnlockStrategyResolver struct{}

// NewUnlockStrategyResolver creates a resolver.
func NewUnlockStrategyResolver() *UnlockStrategyResolver {
	return &UnlockStrategyResolver{}
}

// Resolve walks the unlock machine for one dependency. Lockfile-only policies
// and checkers that cannot unlock requirements only try NONE. An IMPOSSIBLE
// outcome carries the checker's conflicting dependencies as reported.
func (it *UnlockStrategyResolver) Resolve(
	ctx context.Context,
	checker repositories.UpdateChecker,
	lockfileOnly bool,
) (entities.UnlockStrategy, []entities.ConflictingDependency, error) {
	initial := stateCheckOwn
	if lockfileOnly || !checker.RequirementsUnlockedOrCanBe() {
		initial = stateCheckNone
	}

	interpreter, err := newUnlockInterpreter(initial, checker.Dependency().Name)
	if err != nil {
		return "", nil, err
	}

	for {
		current := string(interpreter.State().Value)
		if strategy, final := finalStrategies[current]; final {
			if strategy != entities.UnlockImpossible {
				return strategy, nil, nil
			}
			conflicts, conflictErr := checker.ConflictingDependencies(ctx)
			if conflictErr != nil {
				return "", nil, fmt.Errorf("failed to list conflicting dependencies: %w", conflictErr)
			}
			return strategy, conflicts, nil
		}

		level, ok := checkLevels[current]
		if !ok {
			return "", nil, fmt.Errorf("unlock machine stuck in state %q", current)
		}
		feasible, checkErr := checker.CanUpdate(ctx, level)
		if checkErr != nil {
			return "", nil, fmt.Errorf("failed to check update at level %q: %w", level, checkErr)
		}

		event := eventInfeasible
		if feasible {
			event = eventFeasible
		}
		interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
		if string(interpreter.State().Value) == current {
			return "", nil, fmt.Errorf("unlock machine rejected %q in state %q", event, current)
		}
	}
}

// VetoedByPeer reports whether any other dependency in the update set can be
// updated on its own at OWN level, starting from its pre-update form. Such a
// peer's own turn in the schedule drives the update instead.
func (it *UnlockStrategyResolver) VetoedByPeer(
	ctx context.Context,
	target entities.Dependency,
	updated []entities.Dependency,
	newChecker PeerCheckerFunc,
) (bool, error) {
	for _, peer := range updated {
		if peer.Name == target.Name {
			continue
		}
		canUpdate, err := newChecker(peer.PreUpdate()).CanUpdate(ctx, entities.LevelOwn)
		if err != nil {
			return false, fmt.Errorf("failed to check peer %q: %w", peer.Name, err)
		}
		if canUpdate {
			return true, nil
		}
	}
	return false, nil
}

func newUnlockInterpreter(initial, dependency string) (*statekit.Interpreter[unlockContext], error) {
	builder := statekit.NewMachine[unlockContext]("unlock-machine").
		WithInitial(statekit.StateID(initial)).
		WithContext(unlockContext{Dependency: dependency})

	builder.State(stateCheckNone).
		On(eventFeasible).Target(stateNone).
		On(eventInfeasible).Target(stateImpossible).
		Done()

	builder.State(stateCheckOwn).
		On(eventFeasible).Target(stateOwn).
		On(eventInfeasible).Target(stateCheckAll).
		Done()

	builder.State(stateCheckAll).
		On(eventFeasible).Target(stateAll).
		On(eventInfeasible).Target(stateImpossible).
		Done()

	for _, final := range []string{stateNone, stateOwn, stateAll, stateImpossible} {
		builder.State(statekit.StateID(final)).Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build unlock machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return interpreter, nil
}
