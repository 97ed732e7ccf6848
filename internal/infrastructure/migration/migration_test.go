package migration

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, "sql/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 3)

	for _, f := range files {
		b, err := migrations.ReadFile(f)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(b), "-- +goose Up"), f)
		assert.Contains(t, string(b), "-- +goose Down", f)
	}
}

func TestRunMigrations(t *testing.T) {
	origDialect, origUp := gooseSetDialect, gooseUpContext
	t.Cleanup(func() { gooseSetDialect, gooseUpContext = origDialect, origUp })

	var dialect, dir string
	gooseSetDialect = func(d string) error { dialect = d; return nil }
	gooseUpContext = func(_ context.Context, _ *sql.DB, d string) error { dir = d; return nil }

	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
	assert.Equal(t, "pgx", dialect)
	assert.Equal(t, "sql", dir)

	gooseUpContext = func(context.Context, *sql.DB, string) error { return errors.New("lock timeout") }
	err := RunMigrations(context.Background(), nil, zap.NewNop())
	assert.ErrorContains(t, err, "lock timeout")
}
