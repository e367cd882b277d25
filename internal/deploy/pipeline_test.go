package deploy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarygrid/librarygrid/internal/deploy"
	"github.com/librarygrid/librarygrid/internal/layout"
)

type fakeStep struct {
	name string
	err  error
	log  *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Run(ctx *deploy.StepContext) error {
	*s.log = append(*s.log, "run "+s.name)
	return s.err
}

type undoableStep struct{ fakeStep }

func (s *undoableStep) Undo(ctx *deploy.StepContext) {
	*s.log = append(*s.log, "undo "+s.name)
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var log []string
		p := deploy.NewPipeline("test", &fakeStep{name: "a", log: &log}, &undoableStep{fakeStep{name: "b", log: &log}})
		p.AddStep(&fakeStep{name: "c", log: &log})

		require.NoError(t, p.Run(context.Background(), &deploy.StepContext{Layout: layout.At(t.TempDir())}))
		assert.Equal(t, []string{"run a", "run b", "run c"}, log)
		assert.Equal(t, []string{"a", "b", "c"}, p.Steps())
	})

	t.Run("stops at failure and undoes in reverse", func(t *testing.T) {
		t.Parallel()

		var log []string
		boom := errors.New("boom")
		p := deploy.NewPipeline("test",
			&undoableStep{fakeStep{name: "a", log: &log}},
			&fakeStep{name: "b", log: &log},
			&undoableStep{fakeStep{name: "c", err: boom, log: &log}},
			&fakeStep{name: "d", log: &log},
		)

		err := p.Run(context.Background(), &deploy.StepContext{Layout: layout.At(t.TempDir())})
		require.ErrorIs(t, err, boom)

		var se *deploy.StepError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "c", se.Step)
		assert.Equal(t, []string{"run a", "run b", "run c", "undo c", "undo a"}, log)
	})

	t.Run("honours cancellation between steps", func(t *testing.T) {
		t.Parallel()

		var log []string
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := deploy.NewPipeline("test", &fakeStep{name: "a", log: &log})
		err := p.Run(ctx, &deploy.StepContext{Layout: layout.At(t.TempDir())})
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, log)
	})
}
