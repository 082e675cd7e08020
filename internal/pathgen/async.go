package pathgen

import "context"

// Stage identifies a phase of the generation pipeline for progress
// reporting.
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageBuild    Stage = "build"
	StageValidate Stage = "validate"
	StageBalance  Stage = "balance"
	StageFinalize Stage = "finalize"
)

// YieldInterval is the number of walk iterations between voluntary
// suspension points in async generation. Cancellation is only observed
// at these points, so work between two of them completes atomically.
const YieldInterval = 25

// Progress is one progress event from an async generation task.
type Progress struct {
	Stage     Stage
	Iteration int
	// Percent is a coarse [0,1] estimate based on the iteration cap.
	Percent float64
}

// Task is a cancellable asynchronous generation. Consumers read
// Progress() until it closes, then collect the outcome with Wait().
type Task struct {
	progress chan Progress
	done     chan struct{}
	cancel   context.CancelFunc
	result   *GeneratedPath
	err      error
}

// Progress returns the event channel. It is closed when the task ends.
func (t *Task) Progress() <-chan Progress { return t.progress }

// Done returns a channel closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel requests cooperative cancellation. The task acknowledges at
// its next suspension point; await Done() for completion.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() (*GeneratedPath, error) {
	<-t.done
	return t.result, t.err
}

// GenerateAsync starts a generation that yields every YieldInterval
// walk iterations and at stage boundaries, keeping a host UI loop
// responsive. At most one generation may be in flight per generator;
// a concurrent call fails fast with ErrGenerationInProgress.
func (g *Generator) GenerateAsync(ctx context.Context, req Request) (*Task, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, ErrGenerationInProgress
	}

	ctx, cancel := context.WithCancel(ctx)
	task := &Task{
		progress: make(chan Progress, 16),
		done:     make(chan struct{}),
		cancel:   cancel,
	}

	iterCap := float64(g.iterationCap())
	hook := func(stage Stage, iter int) error {
		atBoundary := stage != StageBuild || iter%YieldInterval == 0
		if !atBoundary {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ev := Progress{Stage: stage, Iteration: iter}
		if stage == StageBuild {
			ev.Percent = float64(iter) / iterCap
		}
		select {
		case task.progress <- ev:
		default:
			// Never block generation on a slow consumer.
		}
		return nil
	}

	go func() {
		defer func() {
			g.inFlight.Store(false)
			close(task.progress)
			close(task.done)
			cancel()
		}()
		task.result, task.err = g.generate(req, hook)
	}()

	return task, nil
}
