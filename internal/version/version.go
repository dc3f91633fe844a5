package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the corogen CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders v with each numeric component in its own colour. Suffixes
// after the patch number are printed as is. The colours follow
// color.NoColor, so callers decide whether output is a terminal.
func Colored(v string) string {
	major, rest, ok := strings.Cut(v, ".")
	if !ok {
		return v
	}
	minor, rest, ok := strings.Cut(rest, ".")
	if !ok {
		return versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor)
	}
	patch, suffix := rest, ""
	for i, r := range rest {
		if r < '0' || r > '9' {
			patch, suffix = rest[:i], rest[i:]
			break
		}
	}
	return versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(patch) + suffix
}
