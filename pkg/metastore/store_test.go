package metastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptobox/cryptobox/pkg/errs"
)

func TestCreateSchema_RefusesTwice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir+"/metadata.db", true)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.CreateSchema())

	err = store.CreateSchema()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.AlreadyExists))
}

func TestValidateSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir+"/metadata.db", true)
	require.NoError(t, err)
	defer store.Close()

	// No schema yet: validation must fail.
	err = store.ValidateSchema()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.IsDamaged))

	require.NoError(t, store.CreateSchema())
	assert.NoError(t, store.ValidateSchema())
}

func TestDropAndRecreateSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir+"/metadata.db", true)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.CreateSchema())
	root := FileSystemRow{ID: RootID, Name: "/", Type: ElementTypeFolder, Created: 1, Modified: 1}
	require.NoError(t, InsertElement(store.Q(), &root))

	require.NoError(t, store.DropSchema())
	require.NoError(t, store.CreateSchema())

	row, err := GetElementByID(store.Q(), RootID)
	assert.Nil(t, row)
	assert.True(t, errs.Is(err, errs.NotFound))
}
