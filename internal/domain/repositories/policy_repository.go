package repositories

import "github.com/rios0rios0/updatewarden/internal/domain/entities"

// PolicyRepository validates a raw policy document and transforms it into the
// typed model. Untyped data never crosses this boundary.
type PolicyRepository interface {
	// ValidateAndTransform fails with *entities.ConfigUnparseableError or
	// *entities.ConfigInvalidError.
	ValidateAndTransform(content []byte) (*entities.PolicyDocument, error)
}
