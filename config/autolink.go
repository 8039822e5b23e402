package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// AutolinkConfig represents the mapping from library names to their autolinked deployment addresses along with an
// optional deployment order. This is read from the crytic-export/combined_solc.link file.
type AutolinkConfig struct {
	// DeploymentOrder specifies the order in which the libraries were deployed.
	// If empty, no specific order is enforced.
	DeploymentOrder []string `json:"deployment_order"`

	// LibraryAddresses maps library names to their autolinked deployment addresses. Addresses are kept verbatim so
	// malformed ones are reported by the linker alongside every other invalid address.
	LibraryAddresses map[string]string `json:"library_addresses"`
}

// ReadAutolinkConfig reads the autolink configuration from the crytic-export/combined_solc.link file.
// The expected format is:
//
//	{
//	  "deployment_order": ["Library1", "Library2", "Library3"],
//	  "library_addresses": {
//	    "Library1": "0x000000000000000000000000000000000000a070",
//	    "Library2": "0x000000000000000000000000000000000000a071",
//	    "Library3": "0x000000000000000000000000000000000000a072"
//	  }
//	}
//
// Returns an AutolinkConfig struct or an error if reading or parsing fails.
func ReadAutolinkConfig(filePath string) (*AutolinkConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read autolink config file %s", filePath)
	}

	var autolinkConfig AutolinkConfig
	err = json.Unmarshal(data, &autolinkConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse autolink config JSON from %s", filePath)
	}

	if autolinkConfig.LibraryAddresses == nil {
		autolinkConfig.LibraryAddresses = make(map[string]string)
	}
	for name := range autolinkConfig.LibraryAddresses {
		if name == "" {
			return nil, errors.Errorf("autolink config %s contains an empty library name", filePath)
		}
	}
	return &autolinkConfig, nil
}
