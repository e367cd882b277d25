package deploy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarygrid/librarygrid/internal/bundle"
	"github.com/librarygrid/librarygrid/internal/deploy"
	"github.com/librarygrid/librarygrid/internal/marker"
	"github.com/librarygrid/librarygrid/internal/testutil"
)

func TestDriver_Run(t *testing.T) {
	t.Parallel()

	t.Run("first run installs", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0"), Confirm: confirmWith(true, &calls)}

		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Installed)
		assert.False(t, res.Updated)
		assert.Equal(t, marker.Match, res.Status)
		assert.Equal(t, l.WebDir(), res.WebDir)
		assert.Equal(t, 1, calls)

		assert.Equal(t, "<h1>2.0</h1>", readFile(t, filepath.Join(l.WebDir(), "index.html")))
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
	})

	t.Run("declining creates no directory", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0"), Confirm: confirmWith(false, &calls)}

		_, err := d.Run(context.Background())
		assert.ErrorIs(t, err, deploy.ErrDeclined)
		assert.NoDirExists(t, l.Root)
	})

	t.Run("nil confirm declines", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0")}

		_, err := d.Run(context.Background())
		assert.ErrorIs(t, err, deploy.ErrDeclined)
		assert.NoDirExists(t, l.Root)
	})

	t.Run("second run mutates nothing", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0", testutil.File("assets/app.js", "x")), Confirm: confirmWith(true, &calls)}

		_, err := d.Run(context.Background())
		require.NoError(t, err)
		before := snapshot(t, l.Root)

		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.False(t, res.Installed)
		assert.False(t, res.Updated)
		assert.Equal(t, marker.Match, res.Status)
		assert.Equal(t, 1, calls, "no prompt once installed")
		assert.Equal(t, before, snapshot(t, l.Root))
	})

	t.Run("version mismatch updates", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", map[string]string{"index.html": "old"})
		require.NoError(t, os.WriteFile(l.ConfigPath(), []byte("[grid]\nx_size = 3\n"), 0644))

		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0"), Confirm: confirmWith(true, &calls)}
		res, err := d.Run(context.Background())
		require.NoError(t, err)

		assert.False(t, res.Installed)
		assert.True(t, res.Updated)
		assert.Equal(t, marker.Mismatch, res.Status)
		assert.Zero(t, calls)
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
		assert.Equal(t, "[grid]\nx_size = 3\n", readFile(t, l.ConfigPath()))
	})

	t.Run("downgrade is a mismatch too", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "3.0", nil)

		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0")}
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Updated)
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
	})

	t.Run("interrupted install is retried", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		calls := 0
		broken := bundle.Bundle{Archive: []byte("garbage"), Version: "2.0"}
		d := &deploy.Driver{Layout: l, Bundle: broken, Confirm: confirmWith(true, &calls)}

		_, err := d.Run(context.Background())
		var ierr *deploy.InstallError
		require.ErrorAs(t, err, &ierr)
		assert.DirExists(t, l.Root)
		assert.FileExists(t, l.IncompletePath())

		d.Bundle = testBundle(t, "2.0")
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Installed)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
		assert.NoFileExists(t, l.IncompletePath())
	})

	t.Run("root without web directory installs", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		require.NoError(t, os.MkdirAll(l.Root, 0755))

		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0"), Confirm: confirmWith(true, &calls)}
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Installed)
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
	})

	t.Run("web directory without marker is left alone", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		require.NoError(t, os.MkdirAll(l.WebDir(), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(l.WebDir(), "index.html"), []byte("hand made"), 0644))
		before := snapshot(t, l.Root)

		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0")}
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, marker.NotInstalled, res.Status)
		assert.False(t, res.Updated)
		assert.Equal(t, before, snapshot(t, l.Root))
	})

	t.Run("restores a web directory parked by an interrupted swap", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		parked := l.RetiredDir("crash")
		require.NoError(t, os.MkdirAll(parked, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(parked, "version.txt"), []byte("1.3"), 0644))

		calls := 0
		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0"), Confirm: confirmWith(true, &calls)}
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, res.Recovered)
		assert.False(t, res.Installed)
		assert.True(t, res.Updated)
		assert.Zero(t, calls)
		assert.Equal(t, "2.0", readFile(t, l.VersionPath()))
	})

	t.Run("empty bundle is fatal", func(t *testing.T) {
		t.Parallel()

		d := &deploy.Driver{Layout: testLayout(t), Bundle: bundle.Bundle{Version: "2.0"}}
		_, err := d.Run(context.Background())
		require.Error(t, err)
	})
}

func TestDriver_Inspect(t *testing.T) {
	t.Parallel()

	t.Run("not installed", func(t *testing.T) {
		t.Parallel()

		d := &deploy.Driver{Layout: testLayout(t), Bundle: testBundle(t, "2.0")}
		r, err := d.Inspect()
		require.NoError(t, err)
		assert.False(t, r.Installed)
		assert.Equal(t, marker.NotInstalled, r.Status)
		assert.Equal(t, "2.0", r.Embedded)
		assert.Empty(t, r.OnDisk)
	})

	t.Run("outdated", func(t *testing.T) {
		t.Parallel()

		l := testLayout(t)
		installed(t, l, "1.3", nil)
		before := snapshot(t, l.Root)

		d := &deploy.Driver{Layout: l, Bundle: testBundle(t, "2.0")}
		r, err := d.Inspect()
		require.NoError(t, err)
		assert.True(t, r.Installed)
		assert.False(t, r.Incomplete)
		assert.Equal(t, marker.Mismatch, r.Status)
		assert.Equal(t, "1.3", r.OnDisk)
		assert.Equal(t, before, snapshot(t, l.Root))
	})
}
