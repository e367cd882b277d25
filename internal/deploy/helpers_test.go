package deploy_test

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/layout"
	"github.com/librarygrid/librarygrid/internal/testutil"
)

func testBundle(t *testing.T, version string, extra ...testutil.Entry) bundle.Bundle {
	t.Helper()
	entries := append([]testutil.Entry{
		testutil.File("index.html", "<h1>"+version+"</h1>"),
		testutil.File("version.txt", version),
	}, extra...)
	return bundle.Bundle{Archive: testutil.TarGz(t, entries...), Version: version}
}

func testLayout(t *testing.T) layout.Layout {
	t.Helper()
	l, err := layout.New(t.TempDir())
	require.NoError(t, err)
	return l
}

// installed lays down a web directory as a previous version would have.
func installed(t *testing.T, l layout.Layout, version string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(l.WebDir(), 0755))
	require.NoError(t, os.WriteFile(l.VersionPath(), []byte(version), 0644))
	for name, body := range files {
		path := filepath.Join(l.WebDir(), filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

type fileState struct {
	Mode    fs.FileMode
	ModTime int64
	Digest  string
}

// snapshot captures every path under root with enough detail to notice any
// mutation.
func snapshot(t *testing.T, root string) map[string]fileState {
	t.Helper()
	out := map[string]fileState{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		st := fileState{Mode: fi.Mode(), ModTime: fi.ModTime().UnixNano()}
		if fi.Mode().IsRegular() {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			sum := sha256.Sum256(data)
			st.Digest = hex.EncodeToString(sum[:])
		}
		rel, _ := filepath.Rel(root, path)
		out[rel] = st
		return nil
	})
	require.NoError(t, err)
	return out
}

func confirmWith(answer bool, calls *int) func() bool {
	return func() bool {
		*calls++
		return answer
	}
}
