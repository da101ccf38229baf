// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/Sohailsaifi/CodeFlow/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/Sohailsaifi/CodeFlow/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/Sohailsaifi/CodeFlow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/codeflow
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}
