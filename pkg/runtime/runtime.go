package runtime

// Build information, overridden at link time via -ldflags.
var (
	Version   = "0.0.0-dev"
	GitCommit = "unknown"
	Timestamp = "unknown"
)
