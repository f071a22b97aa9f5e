// Package namespace implements the Namespace Tree (C3) and, on File, the
// File I/O Engine (C5): folder/file/link entities, path resolution,
// move/rename/remove with invariants, and transactional/non-transactional
// content read and write.
package namespace

import (
	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// Type re-exports the element type enum so callers don't need to import
// metastore directly for type switches.
type Type = metastore.ElementType

const (
	TypeFolder     = metastore.ElementTypeFolder
	TypeFile       = metastore.ElementTypeFile
	TypeSymLink    = metastore.ElementTypeSymLink
	TypeDirectLink = metastore.ElementTypeDirectLink
)

// Properties is the small bag of user-visible, user-writable metadata
// every Element carries: creation/modification time and a free-form tag.
type Properties struct {
	created  int64
	modified int64
	tag      string
}

func (p Properties) Created() int64  { return p.created }
func (p Properties) Modified() int64 { return p.modified }
func (p Properties) Tag() string     { return p.tag }

// Element is the common supertype of Folder, File, SymLink, and
// DirectLink. It holds only an id and a back-reference to Resources;
// every other attribute is fetched live from the metadata store so that
// Exists()/Name()/Path() always reflect the committed state, even after a
// concurrent (from another Element handle) rename or move.
type Element struct {
	res Resources
	id  int64
}

func newElement(res Resources, id int64) Element {
	return Element{res: res, id: id}
}

// NewElementByID returns a handle to the element with the given id, for
// use by the container package's Container.GetElementByID. The handle is
// returned even if id does not currently exist; callers distinguish via
// Exists().
func NewElementByID(res Resources, id int64) *Element {
	e := newElement(res, id)
	return &e
}

// ID returns the element's container-unique identifier.
func (e *Element) ID() int64 { return e.id }

func (e *Element) row() (*metastore.FileSystemRow, error) {
	if err := e.res.CheckAlive(); err != nil {
		return nil, err
	}
	row, err := metastore.GetElementByID(e.res.Metastore().Q(), e.id)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Exists reports whether this element's id is still present in the
// metadata store (it may have been removed through another handle).
func (e *Element) Exists() bool {
	row, err := e.row()
	return err == nil && row != nil
}

// Type returns the element's persisted type.
func (e *Element) Type() (Type, error) {
	row, err := e.mustRow()
	if err != nil {
		return metastore.ElementTypeUnknown, err
	}
	return row.Type, nil
}

// Name returns the element's current name ("/" for root).
func (e *Element) Name() (string, error) {
	row, err := e.mustRow()
	if err != nil {
		return "", err
	}
	return row.Name, nil
}

// IsRoot reports whether this element is the well-known root folder.
func (e *Element) IsRoot() bool {
	return e.id == metastore.RootID
}

// Path reconstructs the absolute path by walking parent_id links up to the
// root, per spec.md §4.3.
func (e *Element) Path() (string, error) {
	var names []string
	cur := e.id
	for {
		row, err := metastore.GetElementByID(e.res.Metastore().Q(), cur)
		if err != nil {
			return "", err
		}
		if cur == metastore.RootID {
			break
		}
		names = append(names, row.Name)
		cur = row.ParentID
		if cur == 0 && names[len(names)-1] != Separator {
			// Defensive: a non-root element whose parent chain hits 0
			// without passing through RootID is a damaged container
			// (invariant 4).
			return "", errs.New(errs.IsDamaged, "parent chain does not terminate at root")
		}
	}
	if len(names) == 0 {
		return Separator, nil
	}
	path := ""
	for i := len(names) - 1; i >= 0; i-- {
		path += Separator + names[i]
	}
	return path, nil
}

// IsTheSame reports whether other refers to the same element (same id).
func (e *Element) IsTheSame(other *Element) bool {
	return other != nil && e.id == other.id
}

// IsChildOf walks the parent chain from e up to the root, reporting
// whether maybeAncestor appears in it. The root is never a child of
// anything, and e.IsChildOf(e) is false: only strict ancestors count.
func (e *Element) IsChildOf(maybeAncestor *Element) (bool, error) {
	cur := e.id
	for cur != metastore.RootID {
		row, err := metastore.GetElementByID(e.res.Metastore().Q(), cur)
		if err != nil {
			return false, err
		}
		if row.ParentID == maybeAncestor.id {
			return true, nil
		}
		if row.ParentID == 0 && row.ID != metastore.RootID {
			return false, errs.New(errs.IsDamaged, "parent chain does not terminate at root")
		}
		cur = row.ParentID
	}
	return false, nil
}

// GetParentEntry returns the parent Folder. Fails with ActionIsForbidden
// for the root, which has no parent.
func (e *Element) GetParentEntry() (*Folder, error) {
	row, err := e.mustRow()
	if err != nil {
		return nil, err
	}
	if e.IsRoot() {
		return nil, errs.New(errs.ActionIsForbidden, "root has no parent")
	}
	f := Folder{Element: newElement(e.res, row.ParentID)}
	return &f, nil
}

// GetProperties fetches the element's current created/modified/tag triple.
func (e *Element) GetProperties() (Properties, error) {
	row, err := e.mustRow()
	if err != nil {
		return Properties{}, err
	}
	return Properties{created: row.Created, modified: row.Modified, tag: row.Meta}, nil
}

// ResetProperties overwrites the element's tag and bumps modified to now.
// Idempotent: calling twice with the same tag leaves GetProperties().Tag()
// equal to tag both times (spec.md §8).
func (e *Element) ResetProperties(tag string) error {
	if err := e.res.CheckAlive(); err != nil {
		return err
	}
	now := e.res.Now().Unix()
	if err := metastore.UpdateProperties(e.res.Metastore().Q(), e.id, tag, now); err != nil {
		return err
	}
	return nil
}

// Rename changes the element's name among its current siblings. Forbidden
// for root, and forbidden if newParent (the current parent) already has a
// child named newName (invariant 2).
func (e *Element) Rename(newName string) error {
	if err := e.res.CheckAlive(); err != nil {
		return err
	}
	if e.IsRoot() {
		return errs.New(errs.ActionIsForbidden, "cannot rename root")
	}
	if err := validateName(newName); err != nil {
		return err
	}
	row, err := e.mustRow()
	if err != nil {
		return err
	}
	sibling, err := metastore.GetChild(e.res.Metastore().Q(), row.ParentID, newName)
	if err != nil {
		return err
	}
	if sibling != nil && sibling.ID != e.id {
		return errs.New(errs.AlreadyExists, "sibling with that name already exists").WithPath(newName)
	}
	return metastore.UpdateName(e.res.Metastore().Q(), e.id, newName)
}

func (e *Element) mustRow() (*metastore.FileSystemRow, error) {
	row, err := e.row()
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errs.New(errs.NotFound, "element does not exist")
	}
	return row, nil
}
