package compilation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/crytic/solink/compilation/types"
	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"golang.org/x/exp/maps"
)

// ArtifactHashCacheFileName is the name of the file used to store the hash of the last linked artifact.
const ArtifactHashCacheFileName = ".solink-artifact-hash"

// ArtifactHashCache stores the hash of a linked artifact along with metadata.
type ArtifactHashCache struct {
	// Hash is the SHA-256 hash of the artifact bytecode and the library addresses it was linked with.
	Hash string `json:"hash"`
	// ContractName is the name of the contract that was linked.
	ContractName string `json:"contractName"`
	// Timestamp is when the hash was computed.
	Timestamp time.Time `json:"timestamp"`
}

// ComputeArtifactHash computes a SHA-256 hash of the artifact's bytecode together with the library mapping it is linked
// with. Library keys are hashed in sorted order so the result is deterministic.
func ComputeArtifactHash(artifact *types.Artifact, libraries map[string]string) string {
	hasher := sha256.New()

	hasher.Write([]byte(artifact.SourceName))
	hasher.Write([]byte(artifact.ContractName))
	hasher.Write([]byte(artifact.Bytecode))
	hasher.Write([]byte(artifact.DeployedBytecode))

	keys := maps.Keys(libraries)
	slices.Sort(keys)
	for _, key := range keys {
		// Separators keep ("ab", "c") and ("a", "bc") apart
		hasher.Write([]byte{0})
		hasher.Write([]byte(key))
		hasher.Write([]byte{0})
		hasher.Write([]byte(libraries[key]))
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// LoadArtifactHashCache loads the artifact hash cache from the specified directory.
// Returns nil if the cache file does not exist or cannot be parsed.
func LoadArtifactHashCache(directory string) *ArtifactHashCache {
	data, err := os.ReadFile(filepath.Join(directory, ArtifactHashCacheFileName))
	if err != nil {
		return nil
	}

	var cache ArtifactHashCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil
	}
	return &cache
}

// SaveArtifactHashCache saves the artifact hash cache to the specified directory.
// Returns an error if the cache cannot be written.
func SaveArtifactHashCache(directory string, cache *ArtifactHashCache) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(filepath.Join(directory, ArtifactHashCacheFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// NotifyArtifactHashStatus compares the hash of the artifact and library mapping about to be linked with the hash
// cached in cacheDirectory by the previous run, and logs whether the inputs changed. The cache is then updated.
func NotifyArtifactHashStatus(artifact *types.Artifact, libraries map[string]string, cacheDirectory string, logger *logging.Logger) {
	currentHash := ComputeArtifactHash(artifact, libraries)
	cachedHash := LoadArtifactHashCache(cacheDirectory)

	if cachedHash == nil || cachedHash.Hash != currentHash {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"linking a ", colors.GreenBold, "new", colors.Reset, " artifact and library set",
		)
	} else {
		logger.Info(
			colors.Bold, "artifacts: ", colors.Reset,
			"linking the ", colors.YellowBold, "same", colors.Reset,
			" artifact and library set as previously (last run: ", formatDuration(time.Since(cachedHash.Timestamp)), " ago)",
		)
	}

	newCache := &ArtifactHashCache{
		Hash:         currentHash,
		ContractName: artifact.ContractName,
		Timestamp:    time.Now(),
	}
	if err := SaveArtifactHashCache(cacheDirectory, newCache); err != nil {
		logger.Warn("Failed to save artifact hash cache", err)
	}
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
