package deploy

import (
	"context"
	"fmt"

	"github.com/librarygrid/librarygrid/internal/logging"
)

type Pipeline struct {
	op    string
	steps []Step
}

func NewPipeline(op string, steps ...Step) *Pipeline {
	return &Pipeline{op: op, steps: steps}
}

func (p *Pipeline) AddStep(s Step) {
	p.steps = append(p.steps, s)
}

func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the steps in order and stops at the first failure. Steps
// that already ran, including the failing one, are undone in reverse order
// when they know how.
func (p *Pipeline) Run(ctx context.Context, sctx *StepContext) error {
	logger := sctx.Logger
	if logger == nil {
		logger = logging.NewStepLogger(p.op, nil, nil)
		sctx.Logger = logger
	}

	logger.Log("starting %s pipeline in %s", p.op, sctx.Layout.Root)

	for i, step := range p.steps {
		select {
		case <-ctx.Done():
			p.undo(sctx, i-1)
			return &StepError{Step: step.Name(), Err: fmt.Errorf("%s cancelled: %w", p.op, ctx.Err())}
		default:
		}

		logger.Log("step: %s", step.Name())
		if err := step.Run(sctx); err != nil {
			logger.Log("step %s failed: %v", step.Name(), err)
			p.undo(sctx, i)
			return &StepError{Step: step.Name(), Err: err}
		}
	}

	logger.Log("%s pipeline complete", p.op)
	return nil
}

func (p *Pipeline) undo(sctx *StepContext, last int) {
	for i := last; i >= 0; i-- {
		if u, ok := p.steps[i].(Undoer); ok {
			sctx.Logger.Log("undo: %s", p.steps[i].Name())
			u.Undo(sctx)
		}
	}
}
