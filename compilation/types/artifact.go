package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/solink/utils"
	"github.com/pkg/errors"
)

// LinkReference describes a single region of bytecode which holds a library address placeholder. Offsets are byte
// offsets into the decoded bytecode, not offsets into its hex representation.
type LinkReference struct {
	// Start is the byte offset at which the placeholder begins.
	Start int `json:"start"`

	// Length is the byte length of the placeholder. For Solidity libraries this is always the size of an address.
	Length int `json:"length"`
}

// LinkReferences maps source file paths to library names to the regions of bytecode that reference the library.
type LinkReferences map[string]map[string][]LinkReference

// Artifact represents the compiled output of a single contract as emitted by Hardhat, Foundry or solc's standard-json
// interface. Bytecode strings are always "0x"-prefixed once parsed.
type Artifact struct {
	// Format describes the artifact format identifier (e.g. "hh-sol-artifact-1"), if provided.
	Format string `json:"_format,omitempty"`

	// ContractName is the name of the contract the artifact was produced for.
	ContractName string `json:"contractName"`

	// SourceName is the path of the source file that defines the contract.
	SourceName string `json:"sourceName,omitempty"`

	// Abi is the raw application binary interface of the contract.
	Abi json.RawMessage `json:"abi,omitempty"`

	// Bytecode is the hex-encoded init bytecode, possibly containing library placeholders.
	Bytecode string `json:"bytecode"`

	// DeployedBytecode is the hex-encoded runtime bytecode, possibly containing library placeholders.
	DeployedBytecode string `json:"deployedBytecode,omitempty"`

	// LinkReferences describes where library placeholders live in Bytecode.
	LinkReferences LinkReferences `json:"linkReferences"`

	// DeployedLinkReferences describes where library placeholders live in DeployedBytecode.
	DeployedLinkReferences LinkReferences `json:"deployedLinkReferences,omitempty"`
}

// bytecodeObject describes the nested bytecode layout used by Foundry and solc's standard-json output.
type bytecodeObject struct {
	Object         string         `json:"object"`
	LinkReferences LinkReferences `json:"linkReferences"`
}

// UnmarshalJSON parses an Artifact in either the Hardhat layout (bytecode strings with sibling link reference fields)
// or the Foundry/solc layout (bytecode objects carrying their own link references).
func (a *Artifact) UnmarshalJSON(b []byte) error {
	var raw struct {
		Format                 string          `json:"_format"`
		ContractName           string          `json:"contractName"`
		SourceName             string          `json:"sourceName"`
		Abi                    json.RawMessage `json:"abi"`
		Bytecode               json.RawMessage `json:"bytecode"`
		DeployedBytecode       json.RawMessage `json:"deployedBytecode"`
		LinkReferences         LinkReferences  `json:"linkReferences"`
		DeployedLinkReferences LinkReferences  `json:"deployedLinkReferences"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	bytecode, linkReferences, err := parseBytecodeField(raw.Bytecode, raw.LinkReferences)
	if err != nil {
		return fmt.Errorf("could not parse bytecode: %w", err)
	}
	deployedBytecode, deployedLinkReferences, err := parseBytecodeField(raw.DeployedBytecode, raw.DeployedLinkReferences)
	if err != nil {
		return fmt.Errorf("could not parse deployed bytecode: %w", err)
	}

	*a = Artifact{
		Format:                 raw.Format,
		ContractName:           raw.ContractName,
		SourceName:             raw.SourceName,
		Abi:                    raw.Abi,
		Bytecode:               bytecode,
		DeployedBytecode:       deployedBytecode,
		LinkReferences:         linkReferences,
		DeployedLinkReferences: deployedLinkReferences,
	}
	return nil
}

// parseBytecodeField decodes a bytecode field that is either a JSON string or a bytecode object. Link references found
// inside a bytecode object take precedence over the sibling ones.
func parseBytecodeField(field json.RawMessage, sibling LinkReferences) (string, LinkReferences, error) {
	field = bytes.TrimSpace(field)
	if len(field) == 0 || bytes.Equal(field, []byte("null")) {
		return "", nonNilLinkReferences(sibling), nil
	}

	if field[0] == '"' {
		var s string
		if err := json.Unmarshal(field, &s); err != nil {
			return "", nil, err
		}
		return normalizeBytecodeString(s), nonNilLinkReferences(sibling), nil
	}

	var obj bytecodeObject
	if err := json.Unmarshal(field, &obj); err != nil {
		return "", nil, err
	}
	if obj.LinkReferences == nil {
		obj.LinkReferences = sibling
	}
	return normalizeBytecodeString(obj.Object), nonNilLinkReferences(obj.LinkReferences), nil
}

// normalizeBytecodeString ensures a non-empty bytecode string carries a "0x" prefix. solc omits it.
func normalizeBytecodeString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}

func nonNilLinkReferences(refs LinkReferences) LinkReferences {
	if refs == nil {
		return make(LinkReferences)
	}
	return refs
}

// ReadArtifactFromFile reads and validates a JSON-serialized Artifact from the provided path. If the artifact does not
// name its contract (Foundry), the file name without extension is used.
func ReadArtifactFromFile(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var artifact Artifact
	if err = json.Unmarshal(b, &artifact); err != nil {
		return nil, errors.Wrapf(err, "could not parse artifact %s", path)
	}

	if artifact.ContractName == "" {
		artifact.ContractName = utils.GetFileNameWithoutExtension(path)
	}

	if err = artifact.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid artifact %s", path)
	}
	return &artifact, nil
}

// DeployedArtifact returns a view of the artifact whose Bytecode and LinkReferences are the runtime bytecode and its
// link references, so runtime code can be linked with the same tooling as init code.
func (a *Artifact) DeployedArtifact() *Artifact {
	return &Artifact{
		Format:         a.Format,
		ContractName:   a.ContractName,
		SourceName:     a.SourceName,
		Abi:            a.Abi,
		Bytecode:       a.DeployedBytecode,
		LinkReferences: nonNilLinkReferences(a.DeployedLinkReferences),
	}
}

// HasDeployedBytecode indicates whether the artifact carries runtime bytecode.
func (a *Artifact) HasDeployedBytecode() bool {
	return a.DeployedBytecode != "" && a.DeployedBytecode != "0x"
}

// Validate verifies the artifact's bytecode strings are well-formed and every link reference region lies within the
// bytecode it refers to. Returns an error if one occurs.
func (a *Artifact) Validate() error {
	if err := ValidateLinkReferences(a.Bytecode, a.LinkReferences); err != nil {
		return fmt.Errorf("bytecode: %w", err)
	}
	if a.DeployedBytecode == "" {
		return nil
	}
	if err := ValidateLinkReferences(a.DeployedBytecode, a.DeployedLinkReferences); err != nil {
		return fmt.Errorf("deployed bytecode: %w", err)
	}
	return nil
}

// ValidateLinkReferences verifies that bytecode is a "0x"-prefixed string of whole bytes and that every region in
// linkReferences is an address-sized slot inside it. Placeholder characters are not required to be hex.
func ValidateLinkReferences(bytecode string, linkReferences LinkReferences) error {
	if !strings.HasPrefix(bytecode, "0x") {
		return fmt.Errorf("bytecode is missing the 0x prefix")
	}
	if len(bytecode)%2 != 0 {
		return fmt.Errorf("bytecode has an odd number of hex characters")
	}

	byteLength := (len(bytecode) - 2) / 2
	for sourceName, libraries := range linkReferences {
		for libraryName, references := range libraries {
			for _, ref := range references {
				// Compared against the remaining length so a huge start cannot overflow
				if ref.Start < 0 || ref.Length != common.AddressLength || ref.Start > byteLength-ref.Length {
					return &InvalidLinkReferenceError{
						SourceName:     sourceName,
						LibraryName:    libraryName,
						Reference:      ref,
						BytecodeLength: byteLength,
					}
				}
			}
		}
	}
	return nil
}

// InvalidLinkReferenceError describes a link reference region that cannot be patched with an address.
type InvalidLinkReferenceError struct {
	SourceName     string
	LibraryName    string
	Reference      LinkReference
	BytecodeLength int
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidLinkReferenceError) Error() string {
	return fmt.Sprintf(
		"link reference for %s at byte %d with length %d is not an address-sized region within %d bytes of bytecode",
		FullyQualifiedName(e.SourceName, e.LibraryName), e.Reference.Start, e.Reference.Length, e.BytecodeLength,
	)
}
