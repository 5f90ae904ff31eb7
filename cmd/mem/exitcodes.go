package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable global config, bad setting)
	ExitDataError   = 3 // Data error (malformed import file, stale index)
)
