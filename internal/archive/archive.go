// Package archive unpacks gzip-compressed tar streams into a directory tree.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
)

// Kind classifies why an extraction failed.
type Kind int

const (
	// KindDecompress means the gzip stream was corrupt or truncated.
	KindDecompress Kind = iota + 1
	// KindEntry means the tar framing could not be read.
	KindEntry
	// KindWrite means a directory, file or link could not be created.
	KindWrite
	// KindUnsafePath means an entry would resolve outside the destination.
	KindUnsafePath
)

func (k Kind) String() string {
	switch k {
	case KindDecompress:
		return "decompress"
	case KindEntry:
		return "read entry"
	case KindWrite:
		return "write"
	case KindUnsafePath:
		return "unsafe path"
	default:
		return "unknown"
	}
}

// ExtractionError reports the first failure of an extraction. Entry is empty
// when the failure happened before any entry was read.
type ExtractionError struct {
	Kind  Kind
	Entry string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("extract: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("extract: %s %s: %v", e.Kind, e.Entry, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrUnsafePath is wrapped by every KindUnsafePath error.
var ErrUnsafePath = errors.New("path escapes destination")

// Summary counts what an extraction produced.
type Summary struct {
	Files int
	Dirs  int
	Links int
	Bytes int64
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files, %d dirs, %d links (%s)", s.Files, s.Dirs, s.Links, humanize.Bytes(uint64(s.Bytes)))
}

// Extract decompresses data and writes every entry, in archive order, below
// dest. Existing files are overwritten; nothing is ever deleted. On error a
// partially written tree may remain.
//
// All writes go through an os.Root on dest, and an entry whose parent path
// runs through a symlink is rejected, so a chain of links laid down by
// earlier entries cannot reach outside dest.
func Extract(data []byte, dest string) (Summary, error) {
	return ExtractReader(bytes.NewReader(data), dest)
}

// ExtractReader is Extract for a streamed archive.
func ExtractReader(r io.Reader, dest string) (Summary, error) {
	var sum Summary

	gz, err := gzip.NewReader(r)
	if err != nil {
		return sum, &ExtractionError{Kind: KindDecompress, Err: err}
	}
	defer gz.Close()

	src := &trackingReader{r: gz}
	x := &extractor{dest: filepath.Clean(dest), tr: tar.NewReader(src), src: src}
	defer x.close()

	for {
		hdr, err := x.tr.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return sum, unsafePath(hdr.Name, err)
		}
		if err != nil {
			return sum, x.readErr("", err)
		}

		if err := x.entry(hdr, &sum); err != nil {
			return sum, err
		}
	}

	// tar stops at its end-of-archive blocks; the gzip trailer (and its
	// checksum) is only verified once the remainder is consumed.
	if _, err := io.Copy(io.Discard, src); err != nil {
		return sum, &ExtractionError{Kind: KindDecompress, Err: err}
	}

	return sum, nil
}

type extractor struct {
	dest string
	root *os.Root
	tr   *tar.Reader
	src  *trackingReader
}

// open creates dest and opens it as a root on the first entry that needs
// it, so a bad destination is reported against that entry.
func (x *extractor) open(entry string) error {
	if x.root != nil {
		return nil
	}
	if err := os.MkdirAll(x.dest, 0755); err != nil {
		return &ExtractionError{Kind: KindWrite, Entry: entry, Err: err}
	}
	root, err := os.OpenRoot(x.dest)
	if err != nil {
		return &ExtractionError{Kind: KindWrite, Entry: entry, Err: err}
	}
	x.root = root
	return nil
}

func (x *extractor) close() {
	if x.root != nil {
		x.root.Close()
	}
}

func unsafePath(entry string, cause any) error {
	return &ExtractionError{Kind: KindUnsafePath, Entry: entry, Err: fmt.Errorf("%w: %v", ErrUnsafePath, cause)}
}

func (x *extractor) entry(hdr *tar.Header, sum *Summary) error {
	name, ok := entryName(hdr.Name)
	if !ok {
		return &ExtractionError{Kind: KindUnsafePath, Entry: hdr.Name, Err: ErrUnsafePath}
	}
	if name == "" {
		// the archive's own root directory
		return nil
	}

	switch hdr.Typeflag {
	case tar.TypeDir, tar.TypeReg, tar.TypeSymlink, tar.TypeLink:
	default:
		// devices, fifos and the like have no place in a web bundle
		return nil
	}

	if err := x.open(hdr.Name); err != nil {
		return err
	}
	if err := x.checkParents(hdr.Name, name); err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := x.root.MkdirAll(name, 0755); err != nil {
			return &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
		}
		sum.Dirs++

	case tar.TypeReg:
		n, err := x.writeFile(hdr, name)
		if err != nil {
			return err
		}
		sum.Files++
		sum.Bytes += n

	case tar.TypeSymlink:
		if !safeLinkTarget(name, hdr.Linkname) {
			return unsafePath(hdr.Name, "symlink to "+hdr.Linkname)
		}
		if err := x.replaceWith(name, func() error { return x.root.Symlink(hdr.Linkname, name) }); err != nil {
			return &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
		}
		sum.Links++

	case tar.TypeLink:
		linked, ok := entryName(hdr.Linkname)
		if !ok || linked == "" {
			return unsafePath(hdr.Name, "hardlink to "+hdr.Linkname)
		}
		if err := x.checkParents(hdr.Name, linked); err != nil {
			return err
		}
		if err := x.replaceWith(name, func() error { return x.root.Link(linked, name) }); err != nil {
			return &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
		}
		sum.Links++
	}

	return nil
}

// checkParents rejects name when one of the directories above it is a
// symlink. Components that do not exist yet are created as real
// directories later.
func (x *extractor) checkParents(entry, name string) error {
	dir := filepath.Dir(name)
	if dir == "." {
		return nil
	}

	walked := ""
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		walked = filepath.Join(walked, part)
		fi, err := x.root.Lstat(walked)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return &ExtractionError{Kind: KindWrite, Entry: entry, Err: err}
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			return unsafePath(entry, "parent "+filepath.ToSlash(walked)+" is a symlink")
		}
	}
	return nil
}

func (x *extractor) writeFile(hdr *tar.Header, name string) (int64, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := x.root.MkdirAll(dir, 0755); err != nil {
			return 0, &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
		}
	}

	// Never write through a link left by an earlier entry or run.
	if fi, err := x.root.Lstat(name); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := x.root.Remove(name); err != nil {
			return 0, &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
		}
	}

	mode := hdr.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	f, err := x.root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
	}

	n, err := io.Copy(f, x.tr)
	if err != nil {
		f.Close()
		if x.src.err != nil || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, x.readErr(hdr.Name, err)
		}
		return n, &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
	}
	if err := f.Close(); err != nil {
		return n, &ExtractionError{Kind: KindWrite, Entry: hdr.Name, Err: err}
	}

	if !hdr.ModTime.IsZero() {
		_ = x.root.Chtimes(name, hdr.ModTime, hdr.ModTime)
	}
	return n, nil
}

// readErr attributes a read failure to the gzip layer when the decompressor
// itself failed, and to the tar framing otherwise.
func (x *extractor) readErr(entry string, err error) error {
	if x.src.err != nil {
		return &ExtractionError{Kind: KindDecompress, Entry: entry, Err: x.src.err}
	}
	return &ExtractionError{Kind: KindEntry, Entry: entry, Err: err}
}

// entryName normalizes an archive path to a slash-free relative form. It
// returns ok=false for absolute paths and paths that climb out with "..".
func entryName(raw string) (string, bool) {
	name := strings.TrimPrefix(raw, "./")
	name = strings.TrimSuffix(name, "/")
	if name == "" || name == "." {
		return "", true
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", false
	}
	return filepath.Clean(local), true
}

// safeLinkTarget reports whether a symlink placed at name and pointing at
// target stays inside the destination. The target must already be clean,
// so ".." can only lead it and never follows a component that might itself
// be a link.
func safeLinkTarget(name, target string) bool {
	if target == "" || filepath.IsAbs(target) || strings.HasPrefix(target, "/") {
		return false
	}
	if path.Clean(target) != target {
		return false
	}
	resolved := filepath.Join(filepath.Dir(name), filepath.FromSlash(target))
	return filepath.IsLocal(resolved)
}

func (x *extractor) replaceWith(name string, create func() error) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := x.root.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := x.root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return create()
}

// trackingReader remembers the first non-EOF error of the decompressor so
// tar-level failures can be told apart from gzip-level ones.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
