package commands

import (
	"github.com/cryptobox/cryptobox/pkg/config"
	"github.com/cryptobox/cryptobox/pkg/stream"
)

func clusterLevelFlag(name string) (stream.ClusterLevel, error) {
	return config.ClusterLevelFromName(name)
}
