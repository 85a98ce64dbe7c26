package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pipeline/platform"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type fakeRunner struct {
	mu       sync.Mutex
	failures map[string]string
	delay    time.Duration

	inFlight      int64
	maxObserved   int64
	observedPairs []string
}

func key(ideaID uuid.UUID, tag string) string { return ideaID.String() + "/" + tag }

func (f *fakeRunner) Transform(ctx context.Context, t platform.Transformer, idea *types.CoreIdea) (*platform.Result, error) {
	cur := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		prev := atomic.LoadInt64(&f.maxObserved)
		if cur <= prev || atomic.CompareAndSwapInt64(&f.maxObserved, prev, cur) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &platform.TransformationError{
				Platform:   t.Platform(),
				IdeaID:     idea.ID,
				LastReason: "timeout",
			}
		}
	}

	f.mu.Lock()
	f.observedPairs = append(f.observedPairs, key(idea.ID, t.Platform()))
	reason, failed := f.failures[key(idea.ID, t.Platform())]
	f.mu.Unlock()
	if failed {
		return nil, &platform.TransformationError{
			Platform:   t.Platform(),
			IdeaID:     idea.ID,
			LastReason: reason,
			Attempts:   3,
		}
	}
	return &platform.Result{
		Platform: t.Platform(),
		Body:     "body for " + idea.Title + " on " + t.Platform(),
		Metadata: map[string]any{"word_count": 4},
	}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func makeIdeas(userID uuid.UUID, n int) []*types.CoreIdea {
	ideas := make([]*types.CoreIdea, n)
	for i := range ideas {
		ideas[i] = &types.CoreIdea{
			ID:     uuid.New(),
			UserID: userID,
			RunID:  uuid.New(),
			Title:  "idea",
		}
	}
	return ideas
}

func TestDispatchPartialFailure(t *testing.T) {
	userID := uuid.New()
	ideas := makeIdeas(userID, 5)
	runner := &fakeRunner{
		failures: map[string]string{
			key(ideas[2].ID, types.PlatformTwitter): "thread has 6 tweets, must be between 1 and 5",
		},
	}
	d := NewDispatcher(testLogger(t), runner, platform.DefaultRegistry(), 15, time.Second)

	outcomes := d.Dispatch(context.Background(), ideas)
	if len(outcomes) != 15 {
		t.Fatalf("Dispatch: expected 15 outcomes, got %d", len(outcomes))
	}

	var succeeded, failed int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			var te *platform.TransformationError
			if !errors.As(o.Err, &te) {
				t.Fatalf("Dispatch: unexpected error type %T", o.Err)
			}
			if o.IdeaID != ideas[2].ID || o.Platform != types.PlatformTwitter {
				t.Fatalf("Dispatch: wrong task failed: idea=%s platform=%s", o.IdeaID, o.Platform)
			}
			continue
		}
		succeeded++
		c := o.Content
		if c == nil {
			t.Fatalf("Dispatch: success outcome without content")
		}
		if c.State != types.ContentStateGenerated {
			t.Fatalf("Dispatch: state=%s, want generated", c.State)
		}
		if c.Body == "" || c.OriginalBody != c.Body {
			t.Fatalf("Dispatch: original body must mirror generated body")
		}
		if c.UserID != userID || c.IdeaID != o.IdeaID || c.Platform != o.Platform {
			t.Fatalf("Dispatch: content misattributed: %+v", c)
		}
		if len(c.Metadata) == 0 {
			t.Fatalf("Dispatch: metadata not recorded")
		}
	}
	if succeeded != 14 || failed != 1 {
		t.Fatalf("Dispatch: succeeded=%d failed=%d", succeeded, failed)
	}
}

func TestDispatchOutcomesAreIdeaMajorOrdered(t *testing.T) {
	ideas := makeIdeas(uuid.New(), 2)
	d := NewDispatcher(testLogger(t), &fakeRunner{}, platform.DefaultRegistry(), 15, time.Second)

	outcomes := d.Dispatch(context.Background(), ideas)
	tags := platform.DefaultRegistry().Platforms()
	for i, o := range outcomes {
		wantIdea := ideas[i/len(tags)].ID
		wantTag := tags[i%len(tags)]
		if o.IdeaID != wantIdea || o.Platform != wantTag {
			t.Fatalf("Dispatch: outcome %d is (%s,%s), want (%s,%s)", i, o.IdeaID, o.Platform, wantIdea, wantTag)
		}
	}
}

func TestDispatchBoundsConcurrency(t *testing.T) {
	runner := &fakeRunner{delay: 20 * time.Millisecond}
	d := NewDispatcher(testLogger(t), runner, platform.DefaultRegistry(), 4, time.Second)

	d.Dispatch(context.Background(), makeIdeas(uuid.New(), 8))
	if max := atomic.LoadInt64(&runner.maxObserved); max > 4 {
		t.Fatalf("Dispatch: observed %d concurrent tasks, bound is 4", max)
	}
}

func TestDispatchTaskTimeout(t *testing.T) {
	runner := &fakeRunner{delay: 500 * time.Millisecond}
	d := NewDispatcher(testLogger(t), runner, platform.DefaultRegistry(), 15, 20*time.Millisecond)

	outcomes := d.Dispatch(context.Background(), makeIdeas(uuid.New(), 1))
	for _, o := range outcomes {
		var te *platform.TransformationError
		if !errors.As(o.Err, &te) {
			t.Fatalf("Dispatch: expected timeout TransformationError, got %v", o.Err)
		}
		if te.LastReason != "timeout" {
			t.Fatalf("Dispatch: reason=%q, want timeout", te.LastReason)
		}
	}
}
