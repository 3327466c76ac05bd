package database

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/coedash?sslmode=disable", MigrateURL("postgres://u:p@db:5432/coedash?sslmode=disable"))
	assert.Equal(t, "pgx5://db/coedash", MigrateURL("postgresql://db/coedash"))
	assert.Equal(t, "pgx5://db/x", MigrateURL("pgx5://db/x"))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, names, "migrations/000001_init.up.sql")
	assert.Contains(t, names, "migrations/000001_init.down.sql")
}
