package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesPrimaryCode(t *testing.T) {
	t.Parallel()

	err := New(NotFound, "no such element")
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, AlreadyExists))
}

func TestIs_WalksInnerChain(t *testing.T) {
	t.Parallel()

	inner := New(IsDamaged, "schema missing")
	outer := Wrap(CantCreate, "failed to create schema", inner)

	assert.True(t, Is(outer, CantCreate))
	assert.True(t, Is(outer, IsDamaged), "Is must walk the Inner chain to find sub-codes")
	assert.False(t, Is(outer, NotFound))
}

func TestIs_FalseForPlainErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, Is(errors.New("plain"), Internal))
	assert.False(t, Is(nil, NotFound))
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NotFound, CodeOf(New(NotFound, "x")))
	assert.Equal(t, Internal, CodeOf(errors.New("plain")))
}

func TestWithPath_ClonesWithoutMutatingOriginal(t *testing.T) {
	t.Parallel()

	base := New(NotFound, "missing")
	withPath := base.WithPath("/foo/bar")

	assert.Empty(t, base.Path)
	assert.Equal(t, "/foo/bar", withPath.Path)
}

func TestUnwrap_ExposesInner(t *testing.T) {
	t.Parallel()

	inner := New(IsDamaged, "bad")
	outer := Wrap(CantOpen, "open failed", inner)

	require.Equal(t, inner, errors.Unwrap(outer))
}

func TestError_MessageIncludesCodeAndPath(t *testing.T) {
	t.Parallel()

	err := New(NotFound, "no such file").WithPath("/a/b.txt")
	msg := err.Error()
	assert.Contains(t, msg, "NotFound")
	assert.Contains(t, msg, "/a/b.txt")
}
