package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// RemoteFile is re-exported from gitforge. It is one entry of a directory
// listing: Path is relative to the repository root.
type RemoteFile = gitforgeEntities.File
