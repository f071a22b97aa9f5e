package namespace

import (
	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// Folder is an Element of type Folder: a container of named children.
type Folder struct {
	Element
}

// newFolder wraps an existing, already-persisted row as a Folder handle.
func newFolder(res Resources, id int64) *Folder {
	return &Folder{Element: newElement(res, id)}
}

// NewRootFolder returns a handle to the container's well-known root
// folder, for use by the container package's Container.GetRoot.
func NewRootFolder(res Resources) *Folder {
	return newFolder(res, metastore.RootID)
}

// CreateChild creates a new child Element of the given type under this
// folder, tagging it with meta. The child's name must be unique among the
// folder's current children (invariant 2) and must pass validateName.
func (f *Folder) CreateChild(name string, typ Type, meta string) (*Element, error) {
	if err := f.res.CheckAlive(); err != nil {
		return nil, err
	}
	if _, err := f.mustRow(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if typ != TypeFolder && typ != TypeFile && typ != TypeSymLink && typ != TypeDirectLink {
		return nil, errs.New(errs.WrongParameters, "unknown element type")
	}

	existing, err := metastore.GetChild(f.res.Metastore().Q(), f.id, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.New(errs.AlreadyExists, "sibling with that name already exists").WithPath(name)
	}

	now := f.res.Now().Unix()
	row := metastore.FileSystemRow{
		ParentID: f.id,
		Name:     name,
		Type:     typ,
		Created:  now,
		Modified: now,
		Meta:     meta,
	}
	if err := metastore.InsertElement(f.res.Metastore().Q(), &row); err != nil {
		return nil, err
	}
	elem := newElement(f.res, row.ID)
	return &elem, nil
}

// CreateFolder is CreateChild specialized to TypeFolder, returning a *Folder.
func (f *Folder) CreateFolder(name string, meta string) (*Folder, error) {
	elem, err := f.CreateChild(name, TypeFolder, meta)
	if err != nil {
		return nil, err
	}
	return &Folder{Element: *elem}, nil
}

// CreateFile is CreateChild specialized to TypeFile, returning a *File.
func (f *Folder) CreateFile(name string, meta string) (*File, error) {
	elem, err := f.CreateChild(name, TypeFile, meta)
	if err != nil {
		return nil, err
	}
	return &File{Element: *elem}, nil
}

// CreateSymLink is CreateChild specialized to TypeSymLink, returning a
// *SymLink pointed at target.
func (f *Folder) CreateSymLink(name string, meta string, target string) (*SymLink, error) {
	if err := validTargetPath(target); err != nil {
		return nil, err
	}
	elem, err := f.CreateChild(name, TypeSymLink, meta)
	if err != nil {
		return nil, err
	}
	if err := metastore.UpdateSpecificData(f.res.Metastore().Q(), elem.id, target); err != nil {
		return nil, err
	}
	return &SymLink{Element: *elem}, nil
}

// CreateDirectLink is CreateChild specialized to TypeDirectLink, returning
// a *DirectLink pointed at target.
func (f *Folder) CreateDirectLink(name string, meta string, target *Element) (*DirectLink, error) {
	if target == nil || !target.Exists() {
		return nil, errs.New(errs.NotFound, "direct link target does not exist")
	}
	elem, err := f.CreateChild(name, TypeDirectLink, meta)
	if err != nil {
		return nil, err
	}
	if err := metastore.UpdateSpecificData(f.res.Metastore().Q(), elem.id, formatTargetID(target.id)); err != nil {
		return nil, err
	}
	return &DirectLink{Element: *elem}, nil
}

// GetChild returns the named child, or nil if this folder has no such child.
func (f *Folder) GetChild(name string) (*Element, error) {
	if err := f.res.CheckAlive(); err != nil {
		return nil, err
	}
	row, err := metastore.GetChild(f.res.Metastore().Q(), f.id, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	elem := newElement(f.res, row.ID)
	return &elem, nil
}

// HasChildren reports whether this folder has at least one child.
func (f *Folder) HasChildren() (bool, error) {
	if err := f.res.CheckAlive(); err != nil {
		return false, err
	}
	count, err := metastore.CountChildren(f.res.Metastore().Q(), f.id)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Iterator returns the folder's children in stable (name-ordered) sequence.
func (f *Folder) Iterator() (*ChildIterator, error) {
	if err := f.res.CheckAlive(); err != nil {
		return nil, err
	}
	rows, err := metastore.ListChildren(f.res.Metastore().Q(), f.id)
	if err != nil {
		return nil, err
	}
	return &ChildIterator{res: f.res, rows: rows}, nil
}

// ChildIterator walks a Folder's children in order.
type ChildIterator struct {
	res   Resources
	rows  []metastore.FileSystemRow
	index int
}

// HasNext reports whether another child remains.
func (it *ChildIterator) HasNext() bool {
	return it.index < len(it.rows)
}

// Next returns the next child and its type, advancing the iterator.
func (it *ChildIterator) Next() (*Element, Type, error) {
	if !it.HasNext() {
		return nil, metastore.ElementTypeUnknown, errs.New(errs.WrongParameters, "no more children")
	}
	row := it.rows[it.index]
	it.index++
	elem := newElement(it.res, row.ID)
	return &elem, row.Type, nil
}
