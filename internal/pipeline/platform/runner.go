package platform

import (
	"context"

	"github.com/postpilot/postpilot-backend/internal/clients/openai"
	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

const DefaultMaxAttempts = 3

// AttemptState tracks where a transformation attempt sits in its life.
type AttemptState string

const (
	AttemptPending    AttemptState = "pending"
	AttemptValidating AttemptState = "validating"
	AttemptRetrying   AttemptState = "retrying"
	AttemptSucceeded  AttemptState = "succeeded"
	AttemptExhausted  AttemptState = "exhausted"
)

// Attempt carries the retry budget position and the corrective feedback for
// the next provider call.
type Attempt struct {
	Number   int
	State    AttemptState
	Feedback string
}

// Result is a validated platform rendering ready for persistence.
type Result struct {
	Platform string
	Body     string
	Metadata map[string]any
}

// Runner drives the shared validate-and-retry skeleton for every platform.
// Attempts are independent provider calls; on an invalid draft the next call
// carries the validation reason as corrective feedback.
type Runner struct {
	log         *logger.Logger
	ai          openai.Client
	maxAttempts int
}

func NewRunner(baseLog *logger.Logger, ai openai.Client, maxAttempts int) *Runner {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Runner{
		log:         baseLog.With("service", "TransformRunner"),
		ai:          ai,
		maxAttempts: maxAttempts,
	}
}

func (r *Runner) Transform(ctx context.Context, t Transformer, idea *types.CoreIdea) (*Result, error) {
	attempt := Attempt{Number: 1, State: AttemptPending}
	log := r.log.With("platform", t.Platform(), "idea_id", idea.ID)

	for attempt.Number <= r.maxAttempts {
		if ctx.Err() != nil {
			return nil, &TransformationError{
				Platform:   t.Platform(),
				IdeaID:     idea.ID,
				LastReason: "timeout",
				Attempts:   attempt.Number - 1,
			}
		}

		system, user, schemaName, schema := t.BuildRequest(idea, attempt.Feedback)
		obj, err := r.ai.GenerateJSON(ctx, system, user, schemaName, schema)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &TransformationError{
					Platform:   t.Platform(),
					IdeaID:     idea.ID,
					LastReason: "timeout",
					Attempts:   attempt.Number,
				}
			}
			return nil, &TransformationError{
				Platform:   t.Platform(),
				IdeaID:     idea.ID,
				LastReason: err.Error(),
				Attempts:   attempt.Number,
			}
		}

		attempt.State = AttemptValidating
		draft, parseErr := t.Parse(obj)
		var failure *ValidationFailure
		if parseErr != nil {
			failure = &ValidationFailure{Reason: parseErr.Error()}
		} else {
			failure = t.Validate(draft)
		}

		if failure == nil {
			attempt.State = AttemptSucceeded
			return &Result{
				Platform: t.Platform(),
				Body:     draft.Body,
				Metadata: t.Metadata(draft),
			}, nil
		}

		log.Info("Draft failed validation",
			"attempt", attempt.Number,
			"max_attempts", r.maxAttempts,
			"reason", failure.Reason,
		)
		attempt = Attempt{
			Number:   attempt.Number + 1,
			State:    AttemptRetrying,
			Feedback: failure.Reason,
		}
	}

	attempt.State = AttemptExhausted
	return nil, &TransformationError{
		Platform:   t.Platform(),
		IdeaID:     idea.ID,
		LastReason: attempt.Feedback,
		Attempts:   r.maxAttempts,
	}
}
