package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptobox/cryptobox/pkg/namespace"
)

func TestTypeLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		typ  namespace.Type
		want string
	}{
		{namespace.TypeFolder, "dir"},
		{namespace.TypeFile, "file"},
		{namespace.TypeSymLink, "link"},
		{namespace.TypeDirectLink, "dlink"},
		{namespace.Type(99), "?"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, typeLabel(tc.typ))
	}
}
