package util

// set at build time via ldflags
var (
	GitCommit = ""
	BuildTime = ""
)
