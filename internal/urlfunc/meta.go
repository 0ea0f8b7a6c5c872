package urlfunc

import (
	"fmt"

	"github.com/roach88/sqliteurl/internal/lines"
)

const (
	// Version is the extension release.
	Version = "0.1.0"

	// SourceRef is reported by url_debug.
	SourceRef = "https://github.com/roach88/sqliteurl"
)

// BuildDate is stamped at link time:
//
//	go build -ldflags "-X github.com/roach88/sqliteurl/internal/urlfunc.BuildDate=2026-10-19"
var BuildDate = "unknown"

// VersionString implements url_version. Only the debug text carries a 'v'.
func VersionString() string {
	return Version
}

// Debug implements url_debug. The three-line layout is parsed by tooling and
// must not change.
func Debug() string {
	return fmt.Sprintf("Version: v%s\nDate: %s\nSource: %s", Version, BuildDate, SourceRef)
}

// LinesDebug implements lines_debug.
func LinesDebug() string {
	return lines.Debug(BuildDate, SourceRef)
}
