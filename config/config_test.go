package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProjectConfigRoundTrip ensures a written ProjectConfig is read back identically.
func TestProjectConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solink.json")

	projectConfig := GetDefaultProjectConfig()
	projectConfig.Artifact = "artifacts/contracts/Token.sol/Token.json"
	projectConfig.Libraries["Math"] = "0x000000000000000000000000000000000000a070"
	projectConfig.LinkDeployedBytecode = true
	projectConfig.Network.RPCURL = "http://127.0.0.1:8545"
	require.NoError(t, projectConfig.WriteToFile(path))

	readConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, projectConfig, readConfig)
	assert.NoError(t, readConfig.Validate())
}

// TestReadProjectConfigDefaults ensures fields absent from a config file keep their default values.
func TestReadProjectConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solink.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"artifact": "Token.json"}`), 0644))

	projectConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Token.json", projectConfig.Artifact)
	assert.Equal(t, 30, projectConfig.Network.Timeout)
	assert.Equal(t, zerolog.InfoLevel, projectConfig.Logging.Level)
}

// TestValidate ensures malformed configurations are rejected.
func TestValidate(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	assert.NoError(t, projectConfig.Validate())

	projectConfig.Libraries[""] = "0x000000000000000000000000000000000000a070"
	assert.Error(t, projectConfig.Validate())

	projectConfig = GetDefaultProjectConfig()
	projectConfig.Logging.Level = zerolog.Level(42)
	assert.Error(t, projectConfig.Validate())
}

// TestLibraryMapping ensures configured libraries override autolinked ones and that keys are never rewritten.
func TestLibraryMapping(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	projectConfig.Libraries["Math"] = "0x000000000000000000000000000000000000b000"
	projectConfig.Libraries["contracts/Math.sol:Math"] = "0x000000000000000000000000000000000000b001"

	autolink := &AutolinkConfig{
		LibraryAddresses: map[string]string{
			"Math":    "0x000000000000000000000000000000000000a070",
			"Strings": "0x000000000000000000000000000000000000a071",
		},
	}

	libraries := projectConfig.LibraryMapping(autolink)
	assert.Equal(t, map[string]string{
		"Math":                    "0x000000000000000000000000000000000000b000",
		"contracts/Math.sol:Math": "0x000000000000000000000000000000000000b001",
		"Strings":                 "0x000000000000000000000000000000000000a071",
	}, libraries)

	assert.Len(t, projectConfig.LibraryMapping(nil), 2)
}

// TestNewDetector ensures the chain cache is created within the configured cache directory.
func TestNewDetector(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	projectConfig.CacheDirectory = t.TempDir()

	detector, err := projectConfig.NewDetector()
	require.NoError(t, err)
	require.NoError(t, detector.Close())

	_, err = os.Stat(filepath.Join(projectConfig.CacheDirectory, ".solinkcache", "chains.db"))
	assert.NoError(t, err)
}
