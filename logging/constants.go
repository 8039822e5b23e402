package logging

// These constants are used to identify the various services that may do some logging
const (
	// LINKING_SERVICE is the constant used to identify the linking package
	LINKING_SERVICE = "linking"
	// CHAIN_SERVICE is the constant used to identify the chain package
	CHAIN_SERVICE = "chain"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)
