// Package marker compares the embedded bundle version with the one on disk.
package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

type Status string

const (
	Match        Status = "match"
	Mismatch     Status = "mismatch"
	NotInstalled Status = "not-installed"
)

// Compare reads the marker file at path and compares its raw content with
// embedded. There is no trimming, case folding or version ordering: any
// textual difference is a Mismatch. A missing file is NotInstalled.
func Compare(embedded, path string) (Status, error) {
	installed, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NotInstalled, nil
	}
	if err != nil {
		return "", err
	}
	if installed == embedded {
		return Match, nil
	}
	return Mismatch, nil
}

// Read returns the marker content at path. The error wraps fs.ErrNotExist
// when there is no marker.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("marker: read %s: %w", path, err)
	}
	return string(data), nil
}
