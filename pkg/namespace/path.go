package namespace

import (
	"strings"

	"github.com/cryptobox/cryptobox/pkg/errs"
)

// Separator is the path component delimiter. Paths start with it; it is
// also, confusingly but per spec.md §3/§4.3, the literal name of the root
// folder.
const Separator = "/"

// validateName rejects the empty string, any string containing the
// separator, and the reserved name (the separator alone) — the three
// cases spec.md §4.3 names for ordinary (non-root) element names.
func validateName(name string) error {
	if name == "" {
		return errs.New(errs.WrongParameters, "name must not be empty")
	}
	if name == Separator {
		return errs.New(errs.WrongParameters, "name must not be the path separator")
	}
	if strings.Contains(name, Separator) {
		return errs.New(errs.WrongParameters, "name must not contain the path separator")
	}
	return nil
}

// splitPath breaks an absolute path into resolution components, with the
// root component represented by the separator itself — this mirrors the
// original resolver, which looks up (parent_id=0, name="/") as its first
// step because the root row's own name equals the separator.
//
// "/1st folder/first file" -> ["/", "1st folder", "first file"]
// "/"                      -> ["/"]
func splitPath(path string) ([]string, error) {
	if path == "" || !strings.HasPrefix(path, Separator) {
		return nil, errs.New(errs.WrongParameters, "path must be absolute").WithPath(path)
	}
	if path == Separator {
		return []string{Separator}, nil
	}
	trimmed := strings.TrimSuffix(path, Separator)
	parts := strings.Split(trimmed, Separator)
	// parts[0] is "" because trimmed starts with the separator.
	components := make([]string, 0, len(parts))
	components = append(components, Separator)
	for _, p := range parts[1:] {
		if p == "" {
			return nil, errs.New(errs.WrongParameters, "path contains an empty component").WithPath(path)
		}
		components = append(components, p)
	}
	return components, nil
}

// validTargetPath reports whether target is a well-formed SymLink target:
// an absolute path whose components are all individually valid names
// (spec.md invariant 10). The target need not currently resolve.
func validTargetPath(target string) error {
	if target == "" {
		return errs.New(errs.WrongParameters, "symlink target must not be empty")
	}
	if !strings.HasPrefix(target, Separator) {
		return errs.New(errs.ActionIsForbidden, "symlink target must be an absolute path").WithPath(target)
	}
	if target == Separator {
		return nil
	}
	trimmed := strings.TrimSuffix(target, Separator)
	for _, name := range strings.Split(trimmed, Separator)[1:] {
		if err := validateName(name); err != nil {
			return err
		}
	}
	return nil
}
