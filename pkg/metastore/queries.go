package metastore

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/cryptobox/cryptobox/pkg/errs"
)

// Queryer is satisfied by both *gorm.DB (autocommit) and a *Savepoint's Tx(),
// so every helper below can run either standalone or inside a transaction.
type Queryer = *gorm.DB

// Q returns this Store's connection as a Queryer for standalone calls.
func (s *Store) Q() Queryer { return s.db }

// InsertElement inserts a new FileSystem row and returns it with ID populated.
func InsertElement(q Queryer, row *FileSystemRow) error {
	if err := q.Create(row).Error; err != nil {
		return MapError(err)
	}
	return nil
}

// GetElementByID fetches a FileSystem row by id.
func GetElementByID(q Queryer, id int64) (*FileSystemRow, error) {
	var row FileSystemRow
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.New(errs.NotFound, "element not found").WithPath(strconv.FormatInt(id, 10))
		}
		return nil, MapError(err)
	}
	return &row, nil
}

// GetChild fetches the FileSystem row of a named child of parentID. Returns
// (nil, nil) if there is no such child; returns IsDamaged if more than one
// row matches, per spec.md §4.3 path-resolution rule.
func GetChild(q Queryer, parentID int64, name string) (*FileSystemRow, error) {
	var rows []FileSystemRow
	if err := q.Where("parent_id = ? AND name = ?", parentID, name).Limit(2).Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		return nil, errs.New(errs.IsDamaged, "duplicate sibling name").WithPath(name)
	}
	return &rows[0], nil
}

// ListChildren returns all FileSystem rows with the given parent, ordered by
// name for a stable iteration order.
func ListChildren(q Queryer, parentID int64) ([]FileSystemRow, error) {
	var rows []FileSystemRow
	if err := q.Where("parent_id = ?", parentID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}
	return rows, nil
}

// UpdateParent changes an element's parent_id (MoveToEntry).
func UpdateParent(q Queryer, id, newParentID int64) error {
	res := q.Model(&FileSystemRow{}).Where("id = ?", id).Update("parent_id", newParentID)
	return MapError(res.Error)
}

// UpdateName changes an element's name (Rename).
func UpdateName(q Queryer, id int64, newName string) error {
	res := q.Model(&FileSystemRow{}).Where("id = ?", id).Update("name", newName)
	return MapError(res.Error)
}

// UpdateProperties updates meta/modified (ResetProperties).
func UpdateProperties(q Queryer, id int64, meta string, modified int64) error {
	res := q.Model(&FileSystemRow{}).Where("id = ?", id).Updates(map[string]any{
		"meta":     meta,
		"modified": modified,
	})
	return MapError(res.Error)
}

// UpdateModified touches only the modified timestamp (e.g. after a write).
func UpdateModified(q Queryer, id int64, modified int64) error {
	res := q.Model(&FileSystemRow{}).Where("id = ?", id).Update("modified", modified)
	return MapError(res.Error)
}

// UpdateSpecificData rewrites an element's specific_data blob (SymLink
// ChangeTarget / DirectLink ChangeTarget).
func UpdateSpecificData(q Queryer, id int64, data string) error {
	res := q.Model(&FileSystemRow{}).Where("id = ?", id).Update("specific_data", data)
	return MapError(res.Error)
}

// DeleteElement deletes a single FileSystem row by id.
func DeleteElement(q Queryer, id int64) error {
	res := q.Where("id = ?", id).Delete(&FileSystemRow{})
	return MapError(res.Error)
}

// CountChildren reports whether a folder has any children (HasChildren).
func CountChildren(q Queryer, parentID int64) (int64, error) {
	var count int64
	if err := q.Model(&FileSystemRow{}).Where("parent_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// ---- FileStreams ----

// InsertStream inserts a new FileStreams row and returns it with ID populated.
func InsertStream(q Queryer, row *FileStreamRow) error {
	if err := q.Create(row).Error; err != nil {
		return MapError(err)
	}
	return nil
}

// StreamsOfFile returns a file's streams ordered by (stream_order, id) per
// spec.md invariant 6.
func StreamsOfFile(q Queryer, fileID int64) ([]FileStreamRow, error) {
	var rows []FileStreamRow
	if err := q.Where("file_id = ?", fileID).Order("stream_order ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}
	return rows, nil
}

// FreeStreams returns every stream in the container with used = 0, ordered
// by descending size (ties by ascending id), the order Allocate adopts in.
func FreeStreams(q Queryer) ([]FileStreamRow, error) {
	var rows []FileStreamRow
	if err := q.Where("used = 0").Order("size DESC, id ASC").Find(&rows).Error; err != nil {
		return nil, MapError(err)
	}
	return rows, nil
}

// MaxStreamOrder returns the highest stream_order currently used by fileID,
// or -1 if the file owns no streams yet.
func MaxStreamOrder(q Queryer, fileID int64) (int64, error) {
	var row FileStreamRow
	err := q.Where("file_id = ?", fileID).Order("stream_order DESC").Limit(1).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return -1, nil
	}
	if err != nil {
		return 0, MapError(err)
	}
	return row.StreamOrder, nil
}

// AdoptStream reassigns an existing free stream to owner with the given
// stream_order (the Adoption operation from spec.md §4.4/GLOSSARY).
func AdoptStream(q Queryer, streamID, ownerFileID, streamOrder int64) error {
	res := q.Model(&FileStreamRow{}).Where("id = ?", streamID).Updates(map[string]any{
		"file_id":      ownerFileID,
		"stream_order": streamOrder,
	})
	return MapError(res.Error)
}

// SetStreamUsed updates a stream's used byte count.
func SetStreamUsed(q Queryer, streamID, used int64) error {
	res := q.Model(&FileStreamRow{}).Where("id = ?", streamID).Update("used", used)
	return MapError(res.Error)
}

// FreeStream marks a stream used=0 in place (Free operation). file_id is
// left unchanged ("used-in-file" per spec.md §4.5 non-transactional step 1).
// A removed File's streams are deleted instead (DeleteStreamsOfFile).
func FreeStream(q Queryer, streamID int64) error {
	return SetStreamUsed(q, streamID, 0)
}

// DeleteStreamsOfFile removes every FileStreams row owned by fileID, used
// when the owning File is removed (spec.md §3 Lifecycle: streams "are
// deleted only when the owning File is removed"). FileStreams.file_id is
// NOT NULL, so a removed file cannot leave dangling free-but-unowned rows
// without violating invariant 5 (every stream references an existing
// File); deleting the rows outright keeps that invariant unconditional at
// the cost of never reclaiming that exact byte range (see DESIGN.md).
func DeleteStreamsOfFile(q Queryer, fileID int64) error {
	res := q.Where("file_id = ?", fileID).Delete(&FileStreamRow{})
	return MapError(res.Error)
}

// DeleteStream deletes a single stream row by id.
func DeleteStream(q Queryer, id int64) error {
	res := q.Where("id = ?", id).Delete(&FileStreamRow{})
	return MapError(res.Error)
}

// ---- Settings ----

// GetSettings fetches the singleton Sets row (id=1), or (nil, nil) if absent.
func GetSettings(q Queryer) (*SettingsRow, error) {
	var row SettingsRow
	err := q.Where("id = 1").First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, MapError(err)
	}
	return &row, nil
}

// UpsertSettings writes (or overwrites) the id=1 Sets row.
func UpsertSettings(q Queryer, data []byte) error {
	row := SettingsRow{ID: 1, StorageDataSize: int64(len(data)), StorageData: data}
	if err := q.Save(&row).Error; err != nil {
		return MapError(err)
	}
	return nil
}
