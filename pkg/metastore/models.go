package metastore

// ElementType mirrors the `type` column of FileSystem. Unknown (0) is never
// persisted; it exists only as the zero value for in-memory structs.
type ElementType int

const (
	ElementTypeUnknown    ElementType = 0
	ElementTypeFolder     ElementType = 1
	ElementTypeFile       ElementType = 2
	ElementTypeSymLink    ElementType = 3
	ElementTypeDirectLink ElementType = 4
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeFolder:
		return "Folder"
	case ElementTypeFile:
		return "File"
	case ElementTypeSymLink:
		return "SymLink"
	case ElementTypeDirectLink:
		return "DirectLink"
	default:
		return "Unknown"
	}
}

// RootID is the well-known id of the root folder, reserved by the schema.
const RootID int64 = 1

// SettingsRow is the Sets(id, storage_data_size, storage_data) singleton,
// keyed by id=1, holding the Payload Store Adapter's opaque settings blob
// (cipher parameters, KDF salt, ...).
type SettingsRow struct {
	ID              int64 `gorm:"column:id;primaryKey"`
	StorageDataSize int64 `gorm:"column:storage_data_size"`
	StorageData     []byte `gorm:"column:storage_data"`
}

func (SettingsRow) TableName() string { return "Sets" }

// FileSystemRow is one row of the FileSystem table: a namespace Element
// (Folder, File, SymLink, or DirectLink).
type FileSystemRow struct {
	ID        int64       `gorm:"column:id;primaryKey"`
	ParentID  int64       `gorm:"column:parent_id;index:idx_parent_name"`
	Name      string      `gorm:"column:name;index:idx_parent_name"`
	Type      ElementType `gorm:"column:type"`
	Created   int64       `gorm:"column:created"`
	Modified  int64       `gorm:"column:modified"`
	Meta      string      `gorm:"column:meta"`
	SpecificData string   `gorm:"column:specific_data"`
}

func (FileSystemRow) TableName() string { return "FileSystem" }

// FileStreamRow is one row of the FileStreams table: a cluster-aligned byte
// range in the payload store, owned by exactly one File.
type FileStreamRow struct {
	ID          int64 `gorm:"column:id;primaryKey"`
	FileID      int64 `gorm:"column:file_id;index"`
	StreamOrder int64 `gorm:"column:stream_order"`
	Start       int64 `gorm:"column:start"`
	Size        int64 `gorm:"column:size"`
	Used        int64 `gorm:"column:used"`
}

func (FileStreamRow) TableName() string { return "FileStreams" }
