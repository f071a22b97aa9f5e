package container

import (
	"encoding/json"

	"github.com/cryptobox/cryptobox/pkg/errs"
	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

// settingsBlob is the JSON-encoded payload of the Sets singleton row: the
// Payload Store Adapter's opaque crypto settings plus the container's
// DataUsagePreferences, which spec.md §4.6 says are "serialized into the
// settings blob only during controlled save points" rather than kept in
// their own table.
type settingsBlob struct {
	PayloadSettings    []byte              `json:"payload_settings"`
	TransactionalWrite bool                `json:"transactional_write"`
	ClusterLevel       stream.ClusterLevel `json:"cluster_level"`
}

func encodeSettings(payloadSettings []byte, prefs namespace.Preferences) []byte {
	blob := settingsBlob{
		PayloadSettings:    payloadSettings,
		TransactionalWrite: prefs.TransactionalWrite,
		ClusterLevel:       prefs.ClusterLevel,
	}
	data, err := json.Marshal(blob)
	if err != nil {
		// Marshaling a struct of bytes/bool/int cannot fail.
		panic(err)
	}
	return data
}

func decodeSettings(data []byte) ([]byte, namespace.Preferences, error) {
	var blob settingsBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, namespace.Preferences{}, errs.Wrap(errs.IsDamaged, "decode settings blob", err)
	}
	if !blob.ClusterLevel.Valid() {
		return nil, namespace.Preferences{}, errs.New(errs.IsDamaged, "settings blob has an invalid cluster level")
	}
	prefs := namespace.Preferences{
		TransactionalWrite: blob.TransactionalWrite,
		ClusterLevel:       blob.ClusterLevel,
	}
	return blob.PayloadSettings, prefs, nil
}
