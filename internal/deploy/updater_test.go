package deploy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarygrid/librarygrid/internal/archive"
	"github.com/librarygrid/librarygrid/internal/deploy"
	"github.com/librarygrid/librarygrid/internal/testutil"
)

func TestUpdater_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("replaces the web directory wholesale", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", map[string]string{"index.html": "old", "legacy/only-in-1.3.js": "x"})

		up := &deploy.Updater{Layout: l, Bundle: testBundle(t, "2.0")}
		require.NoError(t, up.Reconcile(context.Background()))

		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
		assert.Equal(t, "<h1>2.0</h1>", readFile(t, filepath.Join(l.WebDir(), "index.html")))
		assert.NoDirExists(t, filepath.Join(l.WebDir(), "legacy"))

		leftovers, err := l.Leftovers()
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("failure before the swap leaves live assets alone", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", map[string]string{"index.html": "old"})

		bad := testBundle(t, "2.0")
		bad.Archive = bad.Archive[:len(bad.Archive)/2]

		up := &deploy.Updater{Layout: l, Bundle: bad}
		err := up.Reconcile(context.Background())

		var uerr *deploy.UpdateError
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "extract", uerr.Step)
		var xerr *archive.ExtractionError
		require.ErrorAs(t, err, &xerr)

		assert.Equal(t, "1.3", readFile(t, l.VersionPath()))
		assert.Equal(t, "old", readFile(t, filepath.Join(l.WebDir(), "index.html")))

		leftovers, err := l.Leftovers()
		require.NoError(t, err)
		assert.Empty(t, leftovers, "staging is removed on failure")
	})

	t.Run("unsafe entry never lands beside the web directory", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", nil)

		up := &deploy.Updater{Layout: l, Bundle: testBundle(t, "2.0", testutil.File("../config.toml", "pwned"))}
		require.Error(t, up.Reconcile(context.Background()))

		assert.NoFileExists(t, l.ConfigPath())
		assert.Equal(t, "1.3", readFile(t, l.VersionPath()))
	})

	t.Run("sweeps leftovers of an interrupted update", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", nil)
		require.NoError(t, os.Mkdir(filepath.Join(l.Root, ".web-staging-abandoned"), 0755))
		require.NoError(t, os.Mkdir(l.RetiredDir("abandoned"), 0755))

		up := &deploy.Updater{Layout: l, Bundle: testBundle(t, "2.0")}
		require.NoError(t, up.Reconcile(context.Background()))

		leftovers, err := l.Leftovers()
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("logs each step", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", nil)

		var lines []string
		up := &deploy.Updater{Layout: l, Bundle: testBundle(t, "2.0"), OnLine: func(op, line string) {
			assert.Equal(t, "update", op)
			lines = append(lines, line)
		}}
		require.NoError(t, up.Reconcile(context.Background()))

		joined := ""
		for _, line := range lines {
			joined += line + "\n"
		}
		for _, step := range []string{"sweep", "stage", "extract", "verify-marker", "swap", "retire"} {
			assert.Contains(t, joined, "step: "+step)
		}
	})
}
