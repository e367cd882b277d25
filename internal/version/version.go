package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func GoVersion() string {
	return runtime.Version()
}

// String is the one-line form printed by `librarygrid version`.
func String() string {
	return fmt.Sprintf("librarygrid %s (commit %s, built %s, %s)", Version, Commit, BuildDate, GoVersion())
}
