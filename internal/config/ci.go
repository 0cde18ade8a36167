package config

import "github.com/gkampitakis/ciinfo"

// ColorEnabled returns whether terminal output should be styled based on the
// mode. "on" → true, "off" → false, "auto" → enabled when not running in CI.
func ColorEnabled(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default: // "auto"
		return !ciinfo.IsCI
	}
}

// CIName returns the detected CI provider name, or empty string if not in CI.
func CIName() string {
	if !ciinfo.IsCI {
		return ""
	}
	return ciinfo.Name
}
