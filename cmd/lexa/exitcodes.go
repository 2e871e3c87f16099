package main

// Exit codes
const (
	ExitSuccess            = 0 // Success
	ExitError              = 1 // General error (invalid arguments, runtime failure, store write failure)
	ExitConfigError        = 2 // Configuration error (no workspace, invalid config)
	ExitDataError          = 3 // Data error (corrupt store, unsupported document format)
	ExitBackendUnavailable = 4 // Embedding backend not running or model missing
	ExitDimensionMismatch  = 5 // Embedding length differs from the store dimension
)
