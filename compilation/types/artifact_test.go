package types

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testUnlinkedBytecode returns a bytecode string of byteLength bytes with the placeholder for fqName at byte offset start.
func testUnlinkedBytecode(byteLength int, start int, fqName string) string {
	hexStr := strings.Repeat("60", byteLength)
	pattern := PlaceholderPattern(GenerateLibraryPlaceholder(fqName))
	return "0x" + hexStr[:start*2] + pattern + hexStr[start*2+len(pattern):]
}

func TestReadArtifactFromFile(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("HardhatLayout", func(t *testing.T) {
		bytecode := testUnlinkedBytecode(64, 10, "contracts/Math.sol:Math")
		content := `{
  "_format": "hh-sol-artifact-1",
  "contractName": "Token",
  "sourceName": "contracts/Token.sol",
  "abi": [],
  "bytecode": "` + bytecode + `",
  "deployedBytecode": "0x6080",
  "linkReferences": {"contracts/Math.sol": {"Math": [{"start": 10, "length": 20}]}},
  "deployedLinkReferences": {}
}`
		path := filepath.Join(tempDir, "Token.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		artifact, err := ReadArtifactFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hh-sol-artifact-1", artifact.Format)
		assert.Equal(t, "Token", artifact.ContractName)
		assert.Equal(t, "contracts/Token.sol", artifact.SourceName)
		assert.Equal(t, bytecode, artifact.Bytecode)
		assert.Equal(t, []LinkReference{{Start: 10, Length: 20}}, artifact.LinkReferences["contracts/Math.sol"]["Math"])
		assert.True(t, artifact.HasDeployedBytecode())
		assert.Empty(t, artifact.DeployedLinkReferences)
	})

	t.Run("FoundryLayout", func(t *testing.T) {
		bytecode := testUnlinkedBytecode(40, 0, "src/Math.sol:Math")
		content := `{
  "abi": [],
  "bytecode": {"object": "` + bytecode + `", "linkReferences": {"src/Math.sol": {"Math": [{"start": 0, "length": 20}]}}},
  "deployedBytecode": {"object": "` + bytecode + `", "linkReferences": {"src/Math.sol": {"Math": [{"start": 0, "length": 20}]}}}
}`
		path := filepath.Join(tempDir, "Vault.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		artifact, err := ReadArtifactFromFile(path)
		require.NoError(t, err)

		// Foundry artifacts do not carry a contract name, so it is derived from the file name
		assert.Equal(t, "Vault", artifact.ContractName)
		assert.Equal(t, bytecode, artifact.Bytecode)
		assert.Len(t, artifact.LinkReferences["src/Math.sol"]["Math"], 1)

		deployed := artifact.DeployedArtifact()
		assert.Equal(t, bytecode, deployed.Bytecode)
		assert.Equal(t, artifact.DeployedLinkReferences, deployed.LinkReferences)
	})

	t.Run("SolcObjectWithoutPrefix", func(t *testing.T) {
		var artifact Artifact
		err := json.Unmarshal([]byte(`{"contractName": "A", "bytecode": {"object": "6080"}}`), &artifact)
		require.NoError(t, err)
		assert.Equal(t, "0x6080", artifact.Bytecode)
		assert.NotNil(t, artifact.LinkReferences)
		assert.False(t, artifact.HasDeployedBytecode())
	})

	t.Run("RegionOutOfBounds", func(t *testing.T) {
		content := `{
  "contractName": "Broken",
  "bytecode": "0x6080",
  "linkReferences": {"contracts/Math.sol": {"Math": [{"start": 1, "length": 20}]}}
}`
		path := filepath.Join(tempDir, "Broken.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := ReadArtifactFromFile(path)
		require.Error(t, err)
		var linkErr *InvalidLinkReferenceError
		assert.True(t, errors.As(err, &linkErr))
		assert.Equal(t, "Math", linkErr.LibraryName)
		assert.Equal(t, 2, linkErr.BytecodeLength)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		path := filepath.Join(tempDir, "malformed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{invalid json`), 0644))

		_, err := ReadArtifactFromFile(path)
		assert.Error(t, err)
	})

	t.Run("FileNotExists", func(t *testing.T) {
		_, err := ReadArtifactFromFile(filepath.Join(tempDir, "nonexistent.json"))
		assert.Error(t, err)
	})
}

func TestValidateLinkReferences(t *testing.T) {
	bytecode := "0x" + strings.Repeat("00", 32)

	assert.NoError(t, ValidateLinkReferences(bytecode, LinkReferences{}))
	assert.NoError(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: 12, Length: 20}}}}))

	assert.Error(t, ValidateLinkReferences("6080", LinkReferences{}))
	assert.Error(t, ValidateLinkReferences("0x608", LinkReferences{}))
	assert.Error(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: 13, Length: 20}}}}))
	assert.Error(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: 0, Length: 19}}}}))
	assert.Error(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: -1, Length: 20}}}}))

	// Start values near the int limit must not wrap around the bounds check
	assert.Error(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: math.MaxInt - 7, Length: 20}}}}))
	assert.Error(t, ValidateLinkReferences(bytecode, LinkReferences{"A.sol": {"L": {{Start: math.MaxInt, Length: 20}}}}))
}
