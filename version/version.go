// Package version reports how the cruxgen binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/teranos/cruxgen/rustdoc"
)

// Set with -ldflags "-X github.com/teranos/cruxgen/version.Version=v0.4.0 ...".
// When left empty, Get falls back to the module build info that
// 'go install' records.
var (
	Version   string
	Commit    string
	BuildTime string
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	// Accepted rustdoc format_version range unless configured otherwise
	RustdocFormats string `json:"rustdoc_formats"`
}

// Get returns the build information of the running binary.
func Get() Info {
	info := Info{
		Version:        Version,
		Commit:         Commit,
		BuildTime:      BuildTime,
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		RustdocFormats: rustdoc.DefaultFormatVersions,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.fill(bi)
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

// fill completes fields the linker flags left empty.
func (i *Info) fill(bi *debug.BuildInfo) {
	if i.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "" {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.BuildTime == "" {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
}

// ShortCommit is the first seven characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

func (i Info) String() string {
	s := "cruxgen " + i.Version
	if c := i.ShortCommit(); c != "" {
		s += " (" + c
		if i.Modified {
			s += "-dirty"
		}
		s += ")"
	}
	if i.BuildTime != "" {
		s += fmt.Sprintf(", built %s", i.BuildTime)
	}
	return s
}
