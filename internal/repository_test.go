package internal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firodj/soramap/models"
)

func newTestRepository(t *testing.T) *SQLRepository {
	repo, err := NewSQLRepository("file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestRepositoryMigrate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, "SELECT 1")
	assert.NoError(t, err)

	assert.NoError(t, repo.Migrate(ctx), "migrate twice")
}

func TestRepositorySaveImport(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	doc := NewSoraDocument(nil, nil)
	doc.MapFile = "GALE01.map"
	res := applyString(t, doc, sampleMap)

	imp, err := repo.SaveImport(ctx, doc, res)
	require.NoError(t, err)
	assert.NotEmpty(t, imp.ID)
	assert.Equal(t, 5, imp.Functions)
	assert.Equal(t, 1, imp.Data)

	imports, err := repo.Imports(ctx)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "GALE01.map", imports[0].MapFile)

	funs, err := repo.Symbols(ctx, imp.ID, models.KindFunction)
	require.NoError(t, err)
	require.Len(t, funs, 5)
	assert.Equal(t, "__start", funs[0].Name)
	assert.Equal(t, uint32(0x80003100), funs[0].Address)
	assert.Equal(t, uint32(0x114), funs[0].Size)

	data, err := repo.Symbols(ctx, imp.ID, models.KindData)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "@stringBase0", data[0].Name)

	all, err := repo.Symbols(ctx, imp.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 5+1+6)

	other, err := repo.Symbols(ctx, uuid.NewString(), "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRepositorySaveEmptyImport(t *testing.T) {
	repo := newTestRepository(t)

	imp, err := repo.SaveImport(context.Background(), NewSoraDocument(nil, nil), ApplyResult{})
	require.NoError(t, err)

	all, err := repo.Symbols(context.Background(), imp.ID, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
