package commands

import (
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// Validate is the interface for the validate command.
type Validate interface {
	Execute(content []byte) (*entities.PolicyDocument, error)
}

// ValidateCommand checks a policy document without touching any repository.
type ValidateCommand struct {
	policy repositories.PolicyRepository
}

// NewValidateCommand creates a new ValidateCommand.
func NewValidateCommand(policy repositories.PolicyRepository) *ValidateCommand {
	return &ValidateCommand{policy: policy}
}

// Execute validates content and returns the transformed document.
func (it *ValidateCommand) Execute(content []byte) (*entities.PolicyDocument, error) {
	document, err := it.policy.ValidateAndTransform(content)
	if err != nil {
		return nil, err
	}

	for _, update := range document.Updates {
		logger.Infof("[%s] %s: %d allow rules, %d ignore conditions",
			update.Ecosystem, update.Directory, len(update.AllowedUpdates), len(update.IgnoreConditions))
	}
	return document, nil
}
