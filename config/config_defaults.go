package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Artifact:             "",
		Libraries:            map[string]string{},
		AutolinkFile:         "",
		OutputPath:           "",
		LinkDeployedBytecode: false,
		CacheDirectory:       "",
		Network: NetworkConfig{
			RPCURL:  "",
			Timeout: 30,
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}
}
