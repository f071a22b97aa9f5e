package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "min", cfg.DataUsage.ClusterSize)
	assert.False(t, cfg.DataUsage.TransactionalWrite)
	assert.Equal(t, uint32(1), cfg.KDF.TimeCost)
	assert.Equal(t, uint32(64*1024), cfg.KDF.MemoryCostKiB)
	assert.Equal(t, uint8(4), cfg.KDF.Threads)
}

func TestApplyDefaults_UppercasesLevel(t *testing.T) {
	t.Parallel()

	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestValidate_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Logging.Level = "VERBOSE"
	require.Error(t, Validate(cfg))
}

func TestValidate_RejectsUnknownClusterSize(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.DataUsage.ClusterSize = "gigantic"
	require.Error(t, Validate(cfg))
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)
	require.NoError(t, Validate(cfg))
}

func TestClusterLevelFromName_CaseInsensitive(t *testing.T) {
	t.Parallel()

	level, err := ClusterLevelFromName("64K")
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), level.Bytes())

	_, err = ClusterLevelFromName("bogus")
	require.Error(t, err)
}

func TestDataUsagePreferences_ConvertsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{DataUsage: DataUsageConfig{TransactionalWrite: true, ClusterSize: "1m"}}
	prefs, err := cfg.DataUsagePreferences()
	require.NoError(t, err)
	assert.True(t, prefs.TransactionalWrite)
	assert.Equal(t, int64(1024*1024), prefs.ClusterLevel.Bytes())
}
