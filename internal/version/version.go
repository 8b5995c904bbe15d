// Package version provides build and version information for the openOii client.
package version

// Version is the current release version of the openOii client.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/alexjunanjing-2/openOii-doubao/internal/version.Version=x.y.z"
var Version = "0.1.0"
