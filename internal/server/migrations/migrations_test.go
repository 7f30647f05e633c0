package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_images.sql"}, files)

	for _, name := range files {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(b), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(b), "-- +goose Down"), name)
	}
}

func TestImagesCascadeOnOwnerDelete(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00002_create_images.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "REFERENCES users(id) ON DELETE CASCADE")
	assert.Contains(t, string(b), "idx_images_user_id")
}
