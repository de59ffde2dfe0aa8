// Package misc keeps build time stamped program identification.
package misc

// Set with -ldflags "-X gridcss/misc.version=... -X gridcss/misc.gitHash=..."
var (
	appName = "gridcss"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
