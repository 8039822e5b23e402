package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShort(t *testing.T) {
	info := Info{Version: "0.1.0", GoVersion: "go1.23.3"}
	assert.Equal(t, "0.1.0", info.Short())

	info.GitCommit = "0123456789abcdef"
	assert.Equal(t, "0.1.0+0123456", info.Short())

	info.GitTreeDirty = true
	assert.Equal(t, "0.1.0+0123456-dirty", info.Short())

	// Malformed versions are printed verbatim
	info = Info{Version: "dev"}
	assert.Equal(t, "dev", info.Short())
}

func TestSemanticVersion(t *testing.T) {
	sv, err := GetInfo().SemanticVersion()
	require.NoError(t, err)
	assert.EqualValues(t, 0, sv.Major())

	_, err = Info{Version: "not-a-version"}.SemanticVersion()
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	info := Info{Version: "0.1.0", GitCommitTime: "2024-05-01T10:00:00Z", GoVersion: "go1.23.3"}
	out := info.String()
	assert.Contains(t, out, "solink version 0.1.0")
	assert.Contains(t, out, "2024-05-01 10:00:00 UTC")
	assert.Contains(t, out, "go1.23.3")
	assert.Equal(t, "unknown", Info{}.FormattedTime())
}

func TestApplyBuildInfo(t *testing.T) {
	buildInfo := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/crytic/solink", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "fedcba9876543210"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	t.Run("FromModuleAndVCS", func(t *testing.T) {
		var info Info
		applyBuildInfo(&info, buildInfo, true)
		assert.Equal(t, "0.3.1", info.Version)
		assert.Equal(t, "fedcba9876543210", info.GitCommit)
		assert.True(t, info.GitTreeDirty)
		assert.Equal(t, "0.3.1+fedcba9-dirty", info.Short())
	})

	t.Run("LdflagsTakePrecedence", func(t *testing.T) {
		info := Info{Version: "1.0.0", GitCommit: "0123456789abcdef"}
		applyBuildInfo(&info, buildInfo, false)
		assert.Equal(t, "1.0.0", info.Version)
		assert.Equal(t, "0123456789abcdef", info.GitCommit)
		assert.False(t, info.GitTreeDirty)
	})

	t.Run("DevelopmentBuild", func(t *testing.T) {
		var info Info
		applyBuildInfo(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)
		assert.Empty(t, info.Version)
	})
}
