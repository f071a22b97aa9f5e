package namespace

import "github.com/cryptobox/cryptobox/pkg/metastore"

// Resolve walks an absolute path from the container root, binding
// (parent_id, name) at each component (spec.md §4.3). It returns (nil,
// nil) if any step has no matching row — callers distinguish "does not
// exist" from other errors via that nil, nil result, matching Exists()'s
// contract elsewhere in this package.
func Resolve(root *Folder, path string) (*Element, error) {
	components, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	q := root.res.Metastore().Q()
	var parentID int64 = 0
	var lastID int64

	for _, comp := range components {
		row, err := metastore.GetChild(q, parentID, comp)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		parentID = row.ID
		lastID = row.ID
	}

	elem := newElement(root.res, lastID)
	return &elem, nil
}
