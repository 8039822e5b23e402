package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates that there was an error that was already logged to the user, so the top-level
	// should not print it again.
	ExitCodeHandledError = 6

	// ExitCodeLinkError indicates the library mapping could not be used to link an artifact (ambiguous, unnecessary,
	// overlapping, missing or invalid library links). The error has already been logged.
	ExitCodeLinkError = 7

	// ExitCodeChainError indicates the network behind an RPC endpoint could not be identified. The error has already
	// been logged.
	ExitCodeChainError = 8
)
