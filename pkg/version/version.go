package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in version output
const Name = "cgitscrape"

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

// readBuildInfo is replaced in tests
var readBuildInfo = debug.ReadBuildInfo

// Info contains version information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	Commit    string `json:"commit" yaml:"commit"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	OS        string `json:"os" yaml:"os"`
	Arch      string `json:"arch" yaml:"arch"`
}

// Get returns the current version info. Values not set via ldflags are
// taken from the module and VCS metadata the Go toolchain embeds.
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns a formatted version string
func (i Info) String() string {
	commit := i.Commit
	if i.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s %s/%s)",
		Name, i.Version, commit, i.BuildTime, i.GoVersion, i.OS, i.Arch)
}

// Short returns a short version string
func Short() string {
	return Get().Version
}

// Full returns a full version string
func Full() string {
	return Get().String()
}
