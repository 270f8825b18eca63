package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/relaybot/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/relaybot/internal/version.Commit=abc123
//	  -X github.com/soyeahso/relaybot/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const repoURL = "https://github.com/soyeahso/relaybot"

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("relaybot %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every platform API request, in the
// "DiscordBot (url, version)" form the API asks bots to use.
func UserAgent() string {
	return fmt.Sprintf("DiscordBot (%s, %s)", repoURL, Version)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
