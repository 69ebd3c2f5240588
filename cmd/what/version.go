package main

import (
	"fmt"
	"runtime"
)

var (
	version = "dev"
	commit  = "unknown"
)

// versionTemplate is rendered by cobra for --version.
func versionTemplate() string {
	return "what v{{.Version}}\n" +
		fmt.Sprintf("Commit: %s\n", commit) +
		fmt.Sprintf("Go version: %s\n", runtime.Version()) +
		fmt.Sprintf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
