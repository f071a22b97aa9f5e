package namespace

import (
	"strconv"

	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
)

// DirectLink is an Element of type DirectLink: its specific_data is the
// textual decimal id of the target element (invariant 9). A target that
// no longer exists makes Target() return nil rather than failing the
// container — the link itself remains a valid, inspectable element.
type DirectLink struct {
	Element
}

func formatTargetID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseTargetID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// TargetID returns the raw target id and whether one is set.
func (d *DirectLink) TargetID() (int64, bool, error) {
	row, err := d.mustRow()
	if err != nil {
		return 0, false, err
	}
	id, ok := parseTargetID(row.SpecificData)
	return id, ok, nil
}

// Target fetches the target element by id, returning nil if no target id
// is set or the referenced element no longer exists (spec.md invariant 9).
func (d *DirectLink) Target() (*Element, error) {
	id, ok, err := d.TargetID()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	elem := newElement(d.res, id)
	if !elem.Exists() {
		return nil, nil
	}
	return &elem, nil
}

// ChangeTarget repoints the link at newTarget, which must currently exist.
func (d *DirectLink) ChangeTarget(newTarget *Element) error {
	if err := d.res.CheckAlive(); err != nil {
		return err
	}
	if newTarget == nil || !newTarget.Exists() {
		return errs.New(errs.NotFound, "direct link target does not exist")
	}
	return metastore.UpdateSpecificData(d.res.Metastore().Q(), d.id, formatTargetID(newTarget.id))
}
