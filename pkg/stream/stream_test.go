package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// fakePayload is a minimal PayloadAppender: new streams land at the offset
// it reports, growing as the test advances it.
type fakePayload struct{ size int64 }

func (f *fakePayload) Size() int64 { return f.size }

func newTestStore(t *testing.T) *metastore.Store {
	t.Helper()
	dir := t.TempDir()
	store, err := metastore.Open(dir+"/metadata.db", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateSchema())
	root := metastore.FileSystemRow{ID: metastore.RootID, Name: "/", Type: metastore.ElementTypeFolder, Created: 1, Modified: 1}
	require.NoError(t, metastore.InsertElement(store.Q(), &root))
	return store
}

func TestAllocate_AppendsWhenNoFreeStreams(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	payload := &fakePayload{}
	a := New(store.Q(), payload, ClusterSizeMin)

	rows, err := a.Allocate(1, 100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(0), rows[0].Start)
	require.Equal(t, ClusterSizeMin.Bytes(), rows[0].Size)
	require.Equal(t, int64(0), rows[0].Used)
}

func TestAllocate_AdoptsFreeStreamsBeforeAppending(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	payload := &fakePayload{}
	a := New(store.Q(), payload, ClusterSizeMin)

	// File 1 allocates and then frees a stream, making it adoptable.
	first, err := a.Allocate(1, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	payload.size = first[0].Size
	require.NoError(t, FreeAllOfFile(store.Q(), 1))

	// The never-written stream already has used=0 and is adoptable as is;
	// also simulate a stream that was actually written to, then freed.
	require.NoError(t, metastore.SetStreamUsed(store.Q(), first[0].ID, 5))
	require.NoError(t, FreeAllOfFile(store.Q(), 1))

	// File 2 should adopt file 1's freed stream instead of appending a new one.
	second, err := a.Allocate(2, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, int64(2), second[0].FileID)

	streams, err := metastore.StreamsOfFile(store.Q(), 1)
	require.NoError(t, err)
	require.Empty(t, streams, "file 1 no longer owns the adopted stream")
}

func TestAllocate_AppendsRemainderAfterPartialAdoption(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	payload := &fakePayload{}
	a := New(store.Q(), payload, ClusterSizeMin)

	rows, err := a.Allocate(1, ClusterSizeMin.Bytes())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	payload.size = rows[0].Size
	require.NoError(t, metastore.SetStreamUsed(store.Q(), rows[0].ID, rows[0].Size))
	require.NoError(t, FreeAllOfFile(store.Q(), 1))

	// Needs more than the single freed cluster covers: adopt it, then
	// append a fresh cluster-rounded stream for the remainder.
	needed := ClusterSizeMin.Bytes() + 1
	acquired, err := a.Allocate(2, needed)
	require.NoError(t, err)
	require.Len(t, acquired, 2)
	require.Equal(t, rows[0].ID, acquired[0].ID)
	require.Equal(t, int64(0), acquired[1].StreamOrder-acquired[0].StreamOrder-1, "appended stream follows the adopted one in order")
}

func TestClusterLevel_BytesAndValid(t *testing.T) {
	t.Parallel()

	require.True(t, ClusterSizeMin.Valid())
	require.True(t, ClusterSize64K.Valid())
	require.True(t, ClusterSizeMax.Valid())
	require.False(t, ClusterLevel(99).Valid())
	require.Equal(t, int64(64*1024), ClusterSize64K.Bytes())
}
