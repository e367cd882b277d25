// Package testutil builds fixtures for tests that touch the installation
// directory.
package testutil

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Entry is one member of a test archive. A Dir entry ignores Body; a
// Symlink or Hardlink entry points at Link.
type Entry struct {
	Name     string
	Body     string
	Dir      bool
	Symlink  bool
	Hardlink bool
	Link     string
	Mode     int64
}

// File is shorthand for a regular file entry.
func File(name, body string) Entry {
	return Entry{Name: name, Body: body}
}

// TarGz returns a gzip-compressed tar archive holding entries in order.
func TarGz(t testing.TB, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode, ModTime: mtime}
		switch {
		case e.Dir:
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0755
			}
		case e.Symlink:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
		case e.Hardlink:
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.Link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
			if hdr.Mode == 0 {
				hdr.Mode = 0644
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("write body %s: %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

// Gzip compresses raw bytes without any tar framing.
func Gzip(t testing.TB, raw []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}
