package config

import (
	"fmt"
	"strings"

	"github.com/cryptobox/cryptobox/pkg/namespace"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

var clusterLevelNames = map[string]stream.ClusterLevel{
	"min": stream.ClusterSizeMin,
	"64k": stream.ClusterSize64K,
	"256k": stream.ClusterSize256K,
	"1m":   stream.ClusterSize1M,
	"max":  stream.ClusterSizeMax,
}

// ClusterLevelFromName maps a config-file cluster-size name to its
// stream.ClusterLevel, case-insensitively.
func ClusterLevelFromName(name string) (stream.ClusterLevel, error) {
	level, ok := clusterLevelNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown cluster size %q (want one of min, 64k, 256k, 1m, max)", name)
	}
	return level, nil
}

// DataUsagePreferences converts the config-file-friendly DataUsageConfig
// into the namespace.Preferences a Container is created with.
func (c *Config) DataUsagePreferences() (namespace.Preferences, error) {
	level, err := ClusterLevelFromName(c.DataUsage.ClusterSize)
	if err != nil {
		return namespace.Preferences{}, err
	}
	return namespace.Preferences{
		TransactionalWrite: c.DataUsage.TransactionalWrite,
		ClusterLevel:       level,
	}, nil
}
