package config

import (
	"encoding/json"
	"os"

	"github.com/crytic/solink/chain"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration used to link a contract artifact.
type ProjectConfig struct {
	// Artifact describes the path to the compiled contract artifact (Hardhat or Foundry layout) to link.
	Artifact string `json:"artifact"`

	// Libraries maps library names, either short (LibFoo) or fully-qualified (contracts/Foo.sol:LibFoo), to the
	// address they are deployed at.
	Libraries map[string]string `json:"libraries"`

	// AutolinkFile describes the path to a crytic-export combined_solc.link file whose library addresses are merged
	// into Libraries. If empty, no autolink file is read.
	AutolinkFile string `json:"autolinkFile"`

	// OutputPath describes the file the linked bytecode is written to. If empty, the bytecode is written to stdout.
	OutputPath string `json:"outputPath"`

	// LinkDeployedBytecode describes whether the deployed (runtime) bytecode should be linked alongside the init
	// bytecode.
	LinkDeployedBytecode bool `json:"linkDeployedBytecode"`

	// CacheDirectory describes the directory solink persists its caches in (chain detection results and the hash of
	// the last linked artifact). If empty, nothing is persisted.
	CacheDirectory string `json:"cacheDirectory"`

	// Network describes the configuration used to reach a node for chain detection.
	Network NetworkConfig `json:"networkConfig"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"loggingConfig"`
}

// NetworkConfig describes the configuration options used for chain detection.
type NetworkConfig struct {
	// RPCURL describes the JSON-RPC endpoint of the node to detect the chain of.
	RPCURL string `json:"rpcUrl"`

	// Timeout describes a time in seconds after which chain detection is aborted. Zero or negative values disable the
	// timeout.
	Timeout int `json:"timeout"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// NoColor describes whether console output should be uncolored.
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration over the defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Library keys must be non-empty. Addresses are not checked here, the linker reports every bad one at once.
	for key := range p.Libraries {
		if key == "" {
			return errors.Errorf("library names must not be empty")
		}
	}

	// Verify the log level is one zerolog knows about
	if p.Logging.Level < zerolog.TraceLevel || p.Logging.Level > zerolog.Disabled {
		return errors.Errorf("invalid log level %d", p.Logging.Level)
	}
	return nil
}

// LibraryMapping merges the autolinked library addresses (if any) with the configured Libraries, the latter taking
// precedence on identical keys. Keys are never rewritten, so a short and a fully-qualified key for the same library
// both survive the merge.
func (p *ProjectConfig) LibraryMapping(autolink *AutolinkConfig) map[string]string {
	libraries := make(map[string]string)
	if autolink != nil {
		for name, address := range autolink.LibraryAddresses {
			libraries[name] = address
		}
	}
	for name, address := range p.Libraries {
		libraries[name] = address
	}
	return libraries
}

// NewDetector creates a chain.Detector persisting its results in the configured cache directory, if any.
func (p *ProjectConfig) NewDetector() (*chain.Detector, error) {
	return chain.NewDetector(p.CacheDirectory)
}
