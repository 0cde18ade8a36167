package version

import (
	"runtime/debug"
)

var version = "dev"

// Version returns the current version string
func Version() string {
	if rev := Revision(); rev != "" {
		return version + " (" + rev + ")"
	}
	return version
}

// Revision returns the short VCS revision from build info, if linked.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 8 {
			return setting.Value[:8]
		}
	}
	return ""
}

// Info is the structured version report of the version command.
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"goVersion,omitempty"`
}

// GetInfo collects version details from build info.
func GetInfo() Info {
	info := Info{Version: version, Revision: Revision()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
	}
	return info
}
