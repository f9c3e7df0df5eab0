// Package version хранит сведения о сборке, заданные через -ldflags:
//
//	-X github.com/alejoevilches/laabuelachela/internal/version.version=v1.2.0
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return GetVersion(), GetCommit(), GetDate() }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает коммит сборки. Без -ldflags берётся vcs.revision из build info.
func GetCommit() string {
	if commit != "unknown" {
		return commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		return rev
	}
	return commit
}

// GetDate возвращает дату сборки.
func GetDate() string {
	if date != "unknown" {
		return date
	}
	if at := buildSetting("vcs.time"); at != "" {
		return at
	}
	return date
}

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", GetVersion(), GetCommit(), GetDate())
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}
