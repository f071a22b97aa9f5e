package metastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSavepointName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prev string
		want string
	}{
		{"", "a"},
		{"a", "b"},
		{"y", "z"},
		{"z", "aa"},
		{"za", "zb"},
		{"zz", "aaa"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, nextSavepointName(c.prev))
	}
}

func TestSavepointReleaseAndRollback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(dir+"/metadata.db", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if err := store.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}

	root := FileSystemRow{ID: RootID, ParentID: 0, Name: "/", Type: ElementTypeFolder, Created: 1, Modified: 1}
	if err := InsertElement(store.Q(), &root); err != nil {
		t.Fatalf("InsertElement: %v", err)
	}

	// Rollback discards changes made inside the savepoint.
	sp, err := store.BeginSavepoint()
	if err != nil {
		t.Fatalf("BeginSavepoint: %v", err)
	}
	child := FileSystemRow{ParentID: RootID, Name: "discarded", Type: ElementTypeFolder, Created: 2, Modified: 2}
	if err := InsertElement(sp.Tx(), &child); err != nil {
		t.Fatalf("InsertElement in savepoint: %v", err)
	}
	if err := sp.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	row, err := GetChild(store.Q(), RootID, "discarded")
	if err != nil {
		t.Fatalf("GetChild: %v", err)
	}
	assert.Nil(t, row, "rolled-back insert must not be visible")

	// Release commits changes made inside the savepoint.
	sp2, err := store.BeginSavepoint()
	if err != nil {
		t.Fatalf("BeginSavepoint: %v", err)
	}
	kept := FileSystemRow{ParentID: RootID, Name: "kept", Type: ElementTypeFolder, Created: 3, Modified: 3}
	if err := InsertElement(sp2.Tx(), &kept); err != nil {
		t.Fatalf("InsertElement in savepoint: %v", err)
	}
	if err := sp2.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	row2, err := GetChild(store.Q(), RootID, "kept")
	if err != nil {
		t.Fatalf("GetChild: %v", err)
	}
	if assert.NotNil(t, row2, "released insert must be visible") {
		assert.Equal(t, "kept", row2.Name)
	}
}
