package defaults

// Exit codes for the gateway binaries.
const (
	ExitSuccess     = 0 // Clean exit
	ExitServeError  = 1 // Transport bind or serve failure
	ExitConfigError = 2 // Invalid configuration or arguments
)
