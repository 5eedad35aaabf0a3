package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/dgallion1/docoutline/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, Commit, BuildDate, runtime.Version())
}
