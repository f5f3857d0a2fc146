//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/commands"
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// StubUpdateCommand is a stub implementation of commands.Update.
type StubUpdateCommand struct {
	Reports          []entities.PolicyReport
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastOptions      entities.UpdateOptions
}

var _ commands.Update = (*StubUpdateCommand)(nil)

func (s *StubUpdateCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	options entities.UpdateOptions,
) ([]entities.PolicyReport, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastOptions = options
	return s.Reports, s.ExecuteErr
}

// StubValidateCommand is a stub implementation of commands.Validate.
type StubValidateCommand struct {
	Document    *entities.PolicyDocument
	ExecuteErr  error
	LastContent []byte
}

var _ commands.Validate = (*StubValidateCommand)(nil)

func (s *StubValidateCommand) Execute(content []byte) (*entities.PolicyDocument, error) {
	s.LastContent = content
	return s.Document, s.ExecuteErr
}

// StubImportAdvisoriesCommand is a stub implementation of commands.ImportAdvisories.
type StubImportAdvisoriesCommand struct {
	Imported         int
	ExecuteCallCount int
	ExecuteErr       error
	LastSettings     *entities.Settings
}

var _ commands.ImportAdvisories = (*StubImportAdvisoriesCommand)(nil)

func (s *StubImportAdvisoriesCommand) Execute(_ context.Context, settings *entities.Settings) (int, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	return s.Imported, s.ExecuteErr
}
