package namespace

import (
	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// MoveToEntry reparents the element under newParent, updating only
// parent_id (spec.md §4.3). Forbidden if:
//
//	(a) the element is the root,
//	(b) newParent is the element itself,
//	(c) newParent is a descendant of the element,
//	(d) newParent already contains a sibling with the same name,
//	(e) newParent equals the current parent (rejected as a no-op, per
//	    spec.md's explicit choice to keep Move side-effectful by contract).
func (e *Element) MoveToEntry(newParent *Folder) error {
	if err := e.res.CheckAlive(); err != nil {
		return err
	}
	if e.IsRoot() {
		return errs.New(errs.ActionIsForbidden, "cannot move root")
	}
	if newParent == nil {
		return errs.New(errs.WrongParameters, "newParent must not be nil")
	}
	if e.id == newParent.id {
		return errs.New(errs.ActionIsForbidden, "cannot move an element into itself")
	}

	row, err := e.mustRow()
	if err != nil {
		return err
	}
	if row.ParentID == newParent.id {
		return errs.New(errs.ActionIsForbidden, "element is already a child of newParent")
	}

	isDescendant, err := newParent.IsChildOf(e)
	if err != nil {
		return err
	}
	if isDescendant {
		return errs.New(errs.ActionIsForbidden, "cannot move an element into its own descendant")
	}

	sibling, err := metastore.GetChild(e.res.Metastore().Q(), newParent.id, row.Name)
	if err != nil {
		return err
	}
	if sibling != nil {
		return errs.New(errs.AlreadyExists, "newParent already has a child with this name").WithPath(row.Name)
	}

	return metastore.UpdateParent(e.res.Metastore().Q(), e.id, newParent.id)
}

// Remove destroys the element. Folders are removed recursively along with
// their descendants; every removed File's streams are deleted outright
// (spec.md §3 Lifecycle — see DESIGN.md for why this implementation
// deletes rather than merely frees them). The root cannot be removed.
func (e *Element) Remove() error {
	if err := e.res.CheckAlive(); err != nil {
		return err
	}
	if e.IsRoot() {
		return errs.New(errs.ActionIsForbidden, "cannot remove root")
	}
	return e.removeRecursive()
}

func (e *Element) removeRecursive() error {
	row, err := e.mustRow()
	if err != nil {
		return err
	}

	if row.Type == metastore.ElementTypeFolder {
		children, err := metastore.ListChildren(e.res.Metastore().Q(), e.id)
		if err != nil {
			return err
		}
		for _, child := range children {
			childElem := newElement(e.res, child.ID)
			if err := childElem.removeRecursive(); err != nil {
				return err
			}
		}
	}

	if row.Type == metastore.ElementTypeFile {
		if err := metastore.DeleteStreamsOfFile(e.res.Metastore().Q(), e.id); err != nil {
			return err
		}
	}

	return metastore.DeleteElement(e.res.Metastore().Q(), e.id)
}
