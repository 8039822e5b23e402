package types

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetadataTrailer is a solc >= 0.6.0 metadata trailer: {"ipfs": <34 bytes>, "solc": 0.8.20} followed by its length.
var testMetadataTrailer = "a2646970667358221220" + strings.Repeat("ab", 32) + "64736f6c63430008140033"

func TestExtractContractMetadata(t *testing.T) {
	bytecode, err := hex.DecodeString("6080604052348015600f57600080fd5b50" + testMetadataTrailer)
	require.NoError(t, err)

	metadata := ExtractContractMetadata(bytecode)
	require.NotNil(t, metadata)

	bytecodeHash := metadata.ExtractBytecodeHash()
	assert.Len(t, bytecodeHash, 34)

	version := metadata.ExtractSolcVersion()
	require.NotNil(t, version)
	assert.Equal(t, "0.8.20", version.String())
}

func TestExtractContractMetadataMissing(t *testing.T) {
	bytecode, err := hex.DecodeString("6080604052348015600f57600080fd5b50")
	require.NoError(t, err)
	assert.Nil(t, ExtractContractMetadata(bytecode))

	assert.Nil(t, ContractMetadata{}.ExtractSolcVersion())
	assert.Nil(t, ContractMetadata{"solc": []byte{0, 8}}.ExtractSolcVersion())

	prerelease := ContractMetadata{"solc": "0.8.21-nightly.2023.6.1"}.ExtractSolcVersion()
	require.NotNil(t, prerelease)
	assert.Equal(t, int64(21), prerelease.Patch())
}
