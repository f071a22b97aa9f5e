package container_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cryptobox/cryptobox/pkg/container"
	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/progress"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

// stopAfter is a progress.Observer that aborts the operation once its
// OnProgressUpdated callback has fired stopAt times, simulating a caller
// that cancels a long read/write partway through.
type stopAfter struct {
	stopAt int
	calls  int
}

func (s *stopAfter) OnProgressUpdated(float64) progress.Decision {
	s.calls++
	if s.calls >= s.stopAt {
		return progress.Stop
	}
	return progress.Continue
}
func (s *stopAfter) OnWarning(error) progress.Decision { return progress.Continue }
func (s *stopAfter) OnError(error) progress.Decision   { return progress.Continue }

func mustCreate(t *testing.T, prefs namespace.Preferences) (*container.Container, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := container.Create(dir, "hunter2-hunter2", prefs)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, dir
}

func TestCreate_RefusesExistingContainer(t *testing.T) {
	t.Parallel()

	prefs := container.DefaultPreferences()
	_, dir := mustCreate(t, prefs)

	_, err := container.Create(dir, "another-password", prefs)
	require.Error(t, err)
}

func TestCreateOpenClose_RoundTrip(t *testing.T) {
	t.Parallel()

	prefs := namespace.Preferences{TransactionalWrite: true, ClusterLevel: stream.ClusterSizeMin}
	c, dir := mustCreate(t, prefs)
	require.NoError(t, c.Close())

	reopened, err := container.Open(dir, "hunter2-hunter2")
	require.NoError(t, err)
	defer reopened.Close()

	info, err := reopened.Info()
	require.NoError(t, err)
	require.Equal(t, dir, info.Path)
	require.True(t, info.Preferences.TransactionalWrite)
}

func TestOpen_WrongPasswordStillOpensButGarblesContent(t *testing.T) {
	t.Parallel()

	prefs := container.DefaultPreferences()
	c, dir := mustCreate(t, prefs)

	root := c.GetRoot()
	f, err := root.CreateFile("secret.txt", "")
	require.NoError(t, err)
	_, err = f.Write(bytes.NewReader([]byte("top secret")), 10, progress.NopObserver{})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	reopened, err := container.Open(dir, "totally-wrong-password")
	require.NoError(t, err)
	defer reopened.Close()

	elem, err := reopened.GetElement("/secret.txt")
	require.NoError(t, err)
	require.NotNil(t, elem)
	file := &namespace.File{Element: *elem}
	var buf bytes.Buffer
	_, err = file.Read(&buf, 10, progress.NopObserver{})
	require.NoError(t, err)
	require.NotEqual(t, []byte("top secret"), buf.Bytes())
}

func TestRoot_CreateAndLookupChildren(t *testing.T) {
	t.Parallel()

	c, _ := mustCreate(t, container.DefaultPreferences())
	root := c.GetRoot()
	require.True(t, root.IsRoot())

	folder, err := root.CreateFolder("docs", "tag")
	require.NoError(t, err)
	path, err := folder.Path()
	require.NoError(t, err)
	require.Equal(t, "/docs", path)

	_, err = folder.CreateFile("readme.txt", "")
	require.NoError(t, err)

	again, err := root.CreateFolder("docs", "dup")
	require.Nil(t, again)
	require.Error(t, err)

	elem, err := c.GetElement("/docs/readme.txt")
	require.NoError(t, err)
	require.NotNil(t, elem)
	typ, err := elem.Type()
	require.NoError(t, err)
	require.Equal(t, namespace.TypeFile, typ)
}

func TestFile_NonTransactionalOverwrite(t *testing.T) {
	t.Parallel()

	c, _ := mustCreate(t, container.DefaultPreferences())
	root := c.GetRoot()
	f, err := root.CreateFile("data.bin", "")
	require.NoError(t, err)

	first := []byte("the original content, quite a bit longer than the second")
	n, err := f.Write(bytes.NewReader(first), int64(len(first)), progress.NopObserver{})
	require.NoError(t, err)
	require.Equal(t, int64(len(first)), n)

	size, err := f.Size()
	require.NoError(t, err)
	require.Equal(t, int64(len(first)), size)

	second := []byte("short")
	n, err = f.Write(bytes.NewReader(second), int64(len(second)), progress.NopObserver{})
	require.NoError(t, err)
	require.Equal(t, int64(len(second)), n)

	size, err = f.Size()
	require.NoError(t, err)
	require.Equal(t, int64(len(second)), size)

	var buf bytes.Buffer
	_, err = f.Read(&buf, size, progress.NopObserver{})
	require.NoError(t, err)
	require.Equal(t, second, buf.Bytes())
}

func TestFile_NonTransactionalWrite_AbortLeavesPartialContent(t *testing.T) {
	t.Parallel()

	c, _ := mustCreate(t, container.DefaultPreferences())
	root := c.GetRoot()
	f, err := root.CreateFile("big.bin", "")
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("x"), 200000)
	obs := &stopAfter{stopAt: 1}
	n, err := f.Write(bytes.NewReader(payload), int64(len(payload)), obs)
	require.Error(t, err)
	var aborted *progress.Aborted
	require.True(t, errors.As(err, &aborted))
	require.Less(t, n, int64(len(payload)))
	require.Greater(t, n, int64(0))

	usage, err := f.GetSpaceUsageInfo()
	require.NoError(t, err)
	require.Equal(t, n, usage.SpaceUsed)
}

func TestFile_TransactionalWrite_AbortPreservesPriorContent(t *testing.T) {
	t.Parallel()

	prefs := namespace.Preferences{TransactionalWrite: true, ClusterLevel: stream.ClusterSizeMin}
	c, _ := mustCreate(t, prefs)
	root := c.GetRoot()
	f, err := root.CreateFile("important.bin", "")
	require.NoError(t, err)

	original := []byte("content that must survive an aborted transactional write")
	_, err = f.Write(bytes.NewReader(original), int64(len(original)), progress.NopObserver{})
	require.NoError(t, err)

	replacement := bytes.Repeat([]byte("y"), 200000)
	obs := &stopAfter{stopAt: 1}
	_, err = f.Write(bytes.NewReader(replacement), int64(len(replacement)), obs)
	require.Error(t, err)

	size, err := f.Size()
	require.NoError(t, err)
	require.Equal(t, int64(len(original)), size)

	var buf bytes.Buffer
	_, err = f.Read(&buf, size, progress.NopObserver{})
	require.NoError(t, err)
	require.Equal(t, original, buf.Bytes())
}

func TestMoveAndRemove(t *testing.T) {
	t.Parallel()

	c, _ := mustCreate(t, container.DefaultPreferences())
	root := c.GetRoot()

	a, err := root.CreateFolder("a", "")
	require.NoError(t, err)
	b, err := root.CreateFolder("b", "")
	require.NoError(t, err)
	file, err := a.CreateFile("note.txt", "")
	require.NoError(t, err)

	require.NoError(t, file.MoveToEntry(b))
	newPath, err := file.Path()
	require.NoError(t, err)
	require.Equal(t, "/b/note.txt", newPath)

	require.NoError(t, b.Element.Remove())
	exists := b.Exists()
	require.False(t, exists)

	fileExists := file.Exists()
	require.False(t, fileExists, "removing b recursively removes its child note.txt")
}

func TestSymlinkAndDirectLink(t *testing.T) {
	t.Parallel()

	c, _ := mustCreate(t, container.DefaultPreferences())
	root := c.GetRoot()

	target, err := root.CreateFile("target.txt", "")
	require.NoError(t, err)

	sym, err := root.CreateSymLink("link-to-target", "", "/target.txt")
	require.NoError(t, err)
	resolved, err := sym.Target(root)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	require.True(t, resolved.IsTheSame(&target.Element))

	direct, err := root.CreateDirectLink("direct-to-target", "", &target.Element)
	require.NoError(t, err)
	directTarget, err := direct.Target()
	require.NoError(t, err)
	require.NotNil(t, directTarget)
	require.True(t, directTarget.IsTheSame(&target.Element))

	require.NoError(t, target.Remove())
	afterRemoval, err := direct.Target()
	require.NoError(t, err)
	require.Nil(t, afterRemoval, "a direct link to a removed element reports a nil target")
}
