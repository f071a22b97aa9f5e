// Package container implements the Container Lifecycle (C6): opening,
// creating, and tearing down a single cryptobox file pair (metadata +
// payload), and the top-level read-only Element lookups built on top of
// the Namespace Tree.
package container

import (
	"os"
	"path/filepath"

	"github.com/cryptobox/cryptobox/internal/logger"
	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/metastore"
	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/payloadstore"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

const (
	metadataFileName = "metadata.db"
	payloadFileName  = "payload.dat"
)

// Container is a single open cryptobox: a metadata store, a payload
// store, and the in-memory DataUsagePreferences governing new writes.
type Container struct {
	dir string
	res *resources
}

// Info is the small read-only snapshot returned by Info(), matching the
// original's Container::GetInfo().
type Info struct {
	Path        string
	Preferences namespace.Preferences
}

func paths(dir string) (metaPath, payloadPath string) {
	return filepath.Join(dir, metadataFileName), filepath.Join(dir, payloadFileName)
}

// Create creates a brand-new container rooted at dir, which must not
// already contain a metadata or payload file (spec.md §4.6). defaults
// supplies the initial DataUsagePreferences; it is persisted into the
// settings blob immediately (Open Question Decision #2 — eager WriteSets).
func Create(dir string, password string, defaults namespace.Preferences) (*Container, error) {
	if !defaults.ClusterLevel.Valid() {
		return nil, errs.New(errs.WrongParameters, "invalid cluster level")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.CantCreate, "create container directory", err)
	}

	metaPath, payloadPath := paths(dir)
	if _, err := os.Stat(metaPath); err == nil {
		return nil, errs.New(errs.AlreadyExists, "container already exists").WithPath(dir)
	}
	if _, err := os.Stat(payloadPath); err == nil {
		return nil, errs.New(errs.AlreadyExists, "container already exists").WithPath(dir)
	}

	meta, err := metastore.Open(metaPath, true)
	if err != nil {
		return nil, err
	}
	if err := meta.CreateSchema(); err != nil {
		meta.Close()
		return nil, err
	}

	payl, err := payloadstore.Create(payloadPath, password)
	if err != nil {
		meta.Close()
		return nil, err
	}

	res := &resources{meta: meta, payl: payl, prefs: defaults}

	now := res.Now().Unix()
	root := metastore.FileSystemRow{
		ID:       metastore.RootID,
		ParentID: 0,
		Name:     namespace.Separator,
		Type:     metastore.ElementTypeFolder,
		Created:  now,
		Modified: now,
	}
	if err := metastore.InsertElement(meta.Q(), &root); err != nil {
		meta.Close()
		payl.Close()
		return nil, err
	}

	blob := encodeSettings(payl.GetDataToSave(), defaults)
	if err := metastore.UpsertSettings(meta.Q(), blob); err != nil {
		meta.Close()
		payl.Close()
		return nil, err
	}

	return &Container{dir: dir, res: res}, nil
}

// Open opens an existing container rooted at dir under password. It
// validates the metadata schema (non-fatally — spec.md Open Question
// Decision #1), then loads the persisted DataUsagePreferences and the
// payload adapter's settings before decrypting.
func Open(dir string, password string) (*Container, error) {
	metaPath, payloadPath := paths(dir)

	meta, err := metastore.Open(metaPath, false)
	if err != nil {
		return nil, err
	}
	if err := meta.ValidateSchema(); err != nil {
		logger.Warn("metadata schema validation failed", "path", dir, "error", err)
	}

	settingsRow, err := metastore.GetSettings(meta.Q())
	if err != nil {
		meta.Close()
		return nil, err
	}
	if settingsRow == nil {
		meta.Close()
		return nil, errs.New(errs.IsDamaged, "container is missing its settings row").WithPath(dir)
	}

	payloadSettings, prefs, err := decodeSettings(settingsRow.StorageData)
	if err != nil {
		meta.Close()
		return nil, err
	}

	payl, err := payloadstore.Open(payloadPath, password, payloadSettings)
	if err != nil {
		meta.Close()
		return nil, err
	}

	res := &resources{meta: meta, payl: payl, prefs: prefs}
	return &Container{dir: dir, res: res}, nil
}

// Close releases the underlying stores and marks every outstanding
// Element handle's CheckAlive as failing from now on.
func (c *Container) Close() error {
	defer c.res.markClosed()
	var firstErr error
	if err := c.res.meta.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.res.payl.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Clear drops and recreates the three metadata tables and truncates the
// payload store, then rebuilds the root row with its well-known id
// (spec.md §4.6) — Element handles holding that id remain "existing"
// across the call, by construction.
func (c *Container) Clear() error {
	if err := c.res.CheckAlive(); err != nil {
		return err
	}
	if err := c.res.meta.DropSchema(); err != nil {
		return err
	}
	if err := c.res.meta.CreateSchema(); err != nil {
		return err
	}
	if err := c.res.payl.ClearData(); err != nil {
		return err
	}

	now := c.res.Now().Unix()
	root := metastore.FileSystemRow{
		ID:       metastore.RootID,
		ParentID: 0,
		Name:     namespace.Separator,
		Type:     metastore.ElementTypeFolder,
		Created:  now,
		Modified: now,
	}
	if err := metastore.InsertElement(c.res.meta.Q(), &root); err != nil {
		return err
	}

	blob := encodeSettings(c.res.payl.GetDataToSave(), c.res.Preferences())
	return metastore.UpsertSettings(c.res.meta.Q(), blob)
}

// ResetPassword re-keys the payload store under newPassword and persists
// the new settings blob. Metadata (the FileSystem/FileStreams tables) is
// unaffected (spec.md §4.6).
func (c *Container) ResetPassword(newPassword string) error {
	if err := c.res.CheckAlive(); err != nil {
		return err
	}
	if err := c.res.payl.ResetPassword(newPassword); err != nil {
		return err
	}
	blob := encodeSettings(c.res.payl.GetDataToSave(), c.res.Preferences())
	return metastore.UpsertSettings(c.res.meta.Q(), blob)
}

// GetRoot returns the well-known root folder.
func (c *Container) GetRoot() *namespace.Folder {
	return namespace.NewRootFolder(c.res)
}

// GetElement looks up an element by absolute path, matching the original
// Container::GetElement(path) overload. Returns (nil, nil) if the path
// does not resolve to an existing element.
func (c *Container) GetElement(path string) (*namespace.Element, error) {
	if err := c.res.CheckAlive(); err != nil {
		return nil, err
	}
	return namespace.Resolve(c.GetRoot(), path)
}

// GetElementByID looks up an element by its container-unique id, matching
// the original Container::GetElement(id) overload.
func (c *Container) GetElementByID(id int64) (*namespace.Element, error) {
	if err := c.res.CheckAlive(); err != nil {
		return nil, err
	}
	elem := namespace.NewElementByID(c.res, id)
	if !elem.Exists() {
		return nil, nil
	}
	return elem, nil
}

// Info returns the container's path and current DataUsagePreferences.
func (c *Container) Info() (Info, error) {
	if err := c.res.CheckAlive(); err != nil {
		return Info{}, err
	}
	return Info{Path: c.dir, Preferences: c.res.Preferences()}, nil
}

// GetDataUsagePreferences returns the container's current write-mode and
// cluster-size preferences.
func (c *Container) GetDataUsagePreferences() (namespace.Preferences, error) {
	if err := c.res.CheckAlive(); err != nil {
		return namespace.Preferences{}, err
	}
	return c.res.Preferences(), nil
}

// SetDataUsagePreferences updates the container's DataUsagePreferences and
// persists them into the settings blob immediately (spec.md §4.6: "in
// memory; serialized into the settings blob only during controlled save
// points" — Set is itself that controlled point).
func (c *Container) SetDataUsagePreferences(prefs namespace.Preferences) error {
	if err := c.res.CheckAlive(); err != nil {
		return err
	}
	if !prefs.ClusterLevel.Valid() {
		return errs.New(errs.WrongParameters, "invalid cluster level")
	}
	c.res.setPreferences(prefs)
	blob := encodeSettings(c.res.payl.GetDataToSave(), prefs)
	return metastore.UpsertSettings(c.res.meta.Q(), blob)
}

// DefaultPreferences returns the preferences a freshly Create'd container
// uses unless the caller supplies its own: non-transactional writes at
// the minimum cluster size, matching the original's conservative default.
func DefaultPreferences() namespace.Preferences {
	return namespace.Preferences{
		TransactionalWrite: false,
		ClusterLevel:       stream.ClusterSizeMin,
	}
}
