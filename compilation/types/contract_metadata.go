package types

import (
	"bytes"
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/fxamacker/cbor"
)

// ContractMetadata is an CBOR-encoded structure describing contract information which is embedded within smart contract
// bytecode by the Solidity compiler (unless explicitly directed not to). Linking never touches it, so it is identical
// before and after library addresses are inserted.
// Reference: https://docs.soliditylang.org/en/v0.8.16/metadata.html
type ContractMetadata map[string]any

// metadataHashPrefixes defines patterns to use in search for CBOR-encoded contract metadata appended to the end of
// bytecode.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20},  // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
	{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22}, // a2 64 "ipfs" 0x58 0x22 (solc >= 0.6.0)
}

// byteCodeHashMetadataKeys defines the keys in the CBOR-encoded ContractMetadata which contain bytecode hashes.
var byteCodeHashMetadataKeys = [...]string{
	"bzzr0",
	"bzzr1",
	"ipfs",
}

// ExtractContractMetadata extracts contract metadata from provided byte code and returns it. If contract metadata
// could not be extracted, nil is returned.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	for _, metadataHashPrefix := range metadataHashPrefixes {
		metadataOffset := bytes.LastIndex(bytecode, metadataHashPrefix)
		if metadataOffset == -1 {
			continue
		}

		var metadata ContractMetadata
		if err := cbor.Unmarshal(bytecode[metadataOffset:], &metadata); err != nil {
			continue
		}
		return &metadata
	}
	return nil
}

// ExtractBytecodeHash extracts the bytecode hash from given contract metadata and returns the bytes representing the
// hash. If it could not be detected or extracted, nil is returned.
func (m ContractMetadata) ExtractBytecodeHash() []byte {
	for _, possibleMetadataKey := range byteCodeHashMetadataKeys {
		if bytecodeHashData, keyExists := m[possibleMetadataKey]; keyExists {
			if bytecodeHash, ok := bytecodeHashData.([]byte); ok {
				return bytecodeHash
			}
		}
	}
	return nil
}

// ExtractSolcVersion extracts the compiler version recorded under the "solc" key. Release builds store three bytes
// (major, minor, patch) while prerelease builds store the full version string. Returns nil if no version is recorded.
func (m ContractMetadata) ExtractSolcVersion() *semver.Version {
	raw, ok := m["solc"]
	if !ok {
		return nil
	}

	var versionStr string
	switch v := raw.(type) {
	case []byte:
		if len(v) != 3 {
			return nil
		}
		versionStr = fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
	case string:
		versionStr = v
	default:
		return nil
	}

	version, err := semver.NewVersion(versionStr)
	if err != nil {
		return nil
	}
	return version
}
