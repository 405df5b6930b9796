package version

import "fmt"

var (
	// AppVersion is set at build time via ldflags.
	AppVersion = "dev"

	// GitCommit is set at build time via ldflags.
	GitCommit = ""
)

func Version() string {
	if len(GitCommit) == 0 {
		return AppVersion
	}

	return fmt.Sprintf("%s (%s)", AppVersion, GitCommit)
}
