// pkg/version/version.go - build information injected with -ldflags.

package version

import (
	"fmt"
	"runtime"
)

// These values are private which ensures they can only be set with the build flags.
var (
	version   = "dev"
	revision  = "unknown"
	buildDate = "unknown"
	appName   = "appstore"
)

// Info is a structure with version build information about the current application.
type Info struct {
	App       string `json:"app"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	GoVersion string `json:"goVersion"`
	BuildDate string `json:"buildDate"`
}

// Version returns a structure with the current version information.
func Version() Info {
	return Info{
		App:       appName,
		Version:   version,
		Revision:  revision,
		GoVersion: runtime.Version(),
		BuildDate: buildDate,
	}
}

// PrintFull prints the binary name and detailed version information.
func PrintFull(binary string) {
	v := Version()
	fmt.Printf("%s %s\n", binary, v.Version)
	fmt.Printf("  revision: \t%s\n", v.Revision)
	fmt.Printf("  build date: \t%s\n", v.BuildDate)
	fmt.Printf("  go version: \t%s\n", v.GoVersion)
}
