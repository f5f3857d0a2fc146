//go:build unit

package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

func TestPresentCandidates(t *testing.T) {
	t.Parallel()

	t.Run("should keep listed files in candidate order and skip directories", func(t *testing.T) {
		t.Parallel()

		// given
		listing := []entities.RemoteFile{
			{Path: "web/package-lock.json", ObjectID: "b2"},
			{Path: "web/node_modules", IsDir: true},
			{Path: "web/package.json", ObjectID: "a1"},
		}

		// when
		present := repositories.PresentCandidates(listing,
			[]string{"package.json", "node_modules", "yarn.lock", "package-lock.json"})

		// then
		assert.Equal(t, []string{"package.json", "package-lock.json"}, present)
	})

	t.Run("should return nothing for an empty listing", func(t *testing.T) {
		t.Parallel()

		// given
		var listing []entities.RemoteFile

		// when
		present := repositories.PresentCandidates(listing, []string{"go.mod"})

		// then
		assert.Empty(t, present)
	})
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	t.Run("should join without a leading slash", func(t *testing.T) {
		t.Parallel()

		// given
		directory := "/web"

		// when
		joined := repositories.FilePath(directory, "package.json")

		// then
		assert.Equal(t, "web/package.json", joined)
		assert.Empty(t, repositories.FilePath("/", ""))
	})
}
