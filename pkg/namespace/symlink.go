package namespace

import "github.com/cryptobox/cryptobox/pkg/metastore"

// SymLink is an Element of type SymLink: its specific_data is a UTF-8
// absolute target path that need not currently resolve (invariant 10).
type SymLink struct {
	Element
}

// TargetPath returns the raw target path string, or "" if none is set.
func (s *SymLink) TargetPath() (string, error) {
	row, err := s.mustRow()
	if err != nil {
		return "", err
	}
	return row.SpecificData, nil
}

// Target resolves the symlink's target path through the namespace tree at
// call time, returning nil if the target does not currently exist.
func (s *SymLink) Target(root *Folder) (*Element, error) {
	path, err := s.TargetPath()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	return Resolve(root, path)
}

// ChangeTarget overwrites the symlink's target path after validating it is
// a well-formed absolute path (spec.md invariant 10 / IsTargetPathValid).
func (s *SymLink) ChangeTarget(newTarget string) error {
	if err := s.res.CheckAlive(); err != nil {
		return err
	}
	if err := validTargetPath(newTarget); err != nil {
		return err
	}
	return metastore.UpdateSpecificData(s.res.Metastore().Q(), s.id, newTarget)
}
