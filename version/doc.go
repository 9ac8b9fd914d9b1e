// Package version reports the build version of the shownotes library and of
// binaries embedding it.
//
// Version and GitCommit can be set at link time:
//
//	go build -ldflags "-X github.com/kbukum/shownotes/version.Version=1.4.0"
//
// Otherwise they are read from the module build info.
package version
