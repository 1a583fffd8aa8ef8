// Package version carries the build identity stamped into the binary via
// -ldflags. The acquisition service logs it at startup and reports it on the
// stats endpoint so a recorded session can be tied back to the exact build
// that produced it.
package version

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is when the binary was built.
	BuildTime = "unknown"
)
