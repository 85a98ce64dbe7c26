package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"

	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pipeline/platform"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

const (
	DefaultMaxInFlight = 15
	DefaultTaskTimeout = 30 * time.Second
)

// TaskRunner produces one validated platform rendering for one idea.
type TaskRunner interface {
	Transform(ctx context.Context, t platform.Transformer, idea *types.CoreIdea) (*platform.Result, error)
}

// Outcome is the terminal result of one (idea, platform) task. Exactly one of
// Content and Err is set.
type Outcome struct {
	IdeaID   uuid.UUID
	Platform string
	Content  *types.PlatformContent
	Err      error
}

// Dispatcher fans a batch of ideas out across every registered platform and
// waits for all tasks. A failed task never cancels its siblings; failures
// surface as per-task outcomes.
type Dispatcher struct {
	log         *logger.Logger
	runner      TaskRunner
	registry    *platform.Registry
	maxInFlight int64
	taskTimeout time.Duration
}

func NewDispatcher(baseLog *logger.Logger, runner TaskRunner, registry *platform.Registry, maxInFlight int, taskTimeout time.Duration) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}
	return &Dispatcher{
		log:         baseLog.With("service", "Dispatcher"),
		runner:      runner,
		registry:    registry,
		maxInFlight: int64(maxInFlight),
		taskTimeout: taskTimeout,
	}
}

type task struct {
	idea     *types.CoreIdea
	platform string
}

// Dispatch runs one task per (idea, registered platform) pair, at most
// maxInFlight concurrently, each under its own deadline. It returns once every
// task has finished, with outcomes in a stable idea-major order.
func (d *Dispatcher) Dispatch(ctx context.Context, ideas []*types.CoreIdea) []Outcome {
	tags := d.registry.Platforms()
	tasks := make([]task, 0, len(ideas)*len(tags))
	for _, idea := range ideas {
		for _, tag := range tags {
			tasks = append(tasks, task{idea: idea, platform: tag})
		}
	}

	outcomes := make([]Outcome, len(tasks))
	sem := semaphore.NewWeighted(d.maxInFlight)
	var wg sync.WaitGroup

	for i, tk := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = Outcome{
				IdeaID:   tk.idea.ID,
				Platform: tk.platform,
				Err: &platform.TransformationError{
					Platform:   tk.platform,
					IdeaID:     tk.idea.ID,
					LastReason: "timeout",
				},
			}
			continue
		}
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = d.run(ctx, tk)
		}(i, tk)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) run(ctx context.Context, tk task) Outcome {
	taskCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	out := Outcome{IdeaID: tk.idea.ID, Platform: tk.platform}
	tr, ok := d.registry.Get(tk.platform)
	if !ok {
		out.Err = &platform.TransformationError{
			Platform:   tk.platform,
			IdeaID:     tk.idea.ID,
			LastReason: "no transformer registered",
		}
		return out
	}

	res, err := d.runner.Transform(taskCtx, tr, tk.idea)
	if err != nil {
		d.log.Warn("Transformation task failed",
			"idea_id", tk.idea.ID,
			"platform", tk.platform,
			"error", err.Error(),
		)
		out.Err = err
		return out
	}

	meta, err := json.Marshal(res.Metadata)
	if err != nil {
		meta = []byte("{}")
	}
	out.Content = &types.PlatformContent{
		IdeaID:       tk.idea.ID,
		UserID:       tk.idea.UserID,
		Platform:     res.Platform,
		State:        types.ContentStateGenerated,
		Body:         res.Body,
		OriginalBody: res.Body,
		Metadata:     datatypes.JSON(meta),
	}
	return out
}
