// Package bundle holds the web interface shipped inside the binary.
//
// The archive is regenerated from web/ with go generate. The version marker
// is embedded separately so it can be compared without decompressing.
package bundle

import (
	_ "embed"
)

//go:generate tar --owner=0 --group=0 --numeric-owner -C web -czf web.tar.gz index.html version.txt assets

//go:embed web.tar.gz
var webArchive []byte

//go:embed web/version.txt
var webVersion string

// VersionFile is the marker's path relative to the assets directory. The
// archive carries it as a regular entry.
const VersionFile = "version.txt"

// Bundle is an immutable compressed asset archive plus its version marker.
type Bundle struct {
	Archive []byte
	Version string
}

// Default returns the bundle compiled into this binary.
func Default() Bundle {
	return Bundle{
		Archive: webArchive,
		Version: webVersion,
	}
}

// Empty reports whether the bundle carries no archive bytes.
func (b Bundle) Empty() bool {
	return len(b.Archive) == 0
}
