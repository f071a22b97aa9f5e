package payloadstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := dir + "/payload.dat"

	store, err := Create(path, "correct horse battery staple")
	require.NoError(t, err)

	data := []byte("hello, encrypted world")
	offset, err := store.Append(data)
	require.NoError(t, err)
	require.Equal(t, int64(0), offset)

	settings := store.GetDataToSave()
	require.NoError(t, store.Close())

	reopened, err := Open(path, "correct horse battery staple", settings)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ReadAt(0, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestOpen_WrongPasswordYieldsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := dir + "/payload.dat"

	store, err := Create(path, "the right password")
	require.NoError(t, err)
	data := []byte("secret payload bytes")
	_, err = store.Append(data)
	require.NoError(t, err)
	settings := store.GetDataToSave()
	require.NoError(t, store.Close())

	reopened, err := Open(path, "the wrong password", settings)
	require.NoError(t, err) // Open itself never validates the password.
	defer reopened.Close()

	got, err := reopened.ReadAt(0, int64(len(data)))
	require.NoError(t, err)
	require.NotEqual(t, data, got, "wrong key must not decrypt to the original plaintext")
}

func TestWriteAt_RejectsNonContiguousOffset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Create(dir+"/payload.dat", "password123")
	require.NoError(t, err)
	defer store.Close()

	err = store.WriteAt(10, []byte("gap"))
	require.Error(t, err)
}

func TestResetPassword_ReEncryptsUnderNewKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := dir + "/payload.dat"

	store, err := Create(path, "old-password")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.ResetPassword("new-password"))
	settings := store.GetDataToSave()

	data := []byte("written after reset")
	_, err = store.Append(data)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path, "new-password", settings)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ReadAt(0, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, got)
}
