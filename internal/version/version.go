package version

import (
	"fmt"
	"runtime/debug"
)

// Populated at build time via -ldflags "-X logmux/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String reports the version, falling back to the module build info when
// the binary was installed with go install.
func String() string {
	base := Version
	commit := Commit
	if base == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				base = v
			}
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && commit == "" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	if commit != "" {
		base += fmt.Sprintf(" (%s)", commit)
	}
	if Date != "" {
		base += " " + Date
	}
	return base
}
