// Package version holds build-time version information.
package version

// GitVersion is overridden at build time:
//
//	go build -ldflags "-X github.com/ikalevatykh/vmg30/pkg/version.GitVersion=$(git describe --tags)"
var GitVersion = "dev"
