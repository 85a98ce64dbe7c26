package platform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/postpilot/postpilot-backend/internal/clients/openai"
	types "github.com/postpilot/postpilot-backend/internal/domain"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type scriptedAI struct {
	responses []map[string]any
	errs      []error
	prompts   []string
	calls     int
}

func (s *scriptedAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, user)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return map[string]any{}, nil
}

func (s *scriptedAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("not used")
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testIdea() *types.CoreIdea {
	return &types.CoreIdea{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		RunID:         uuid.New(),
		Title:         "Churn interviews",
		Description:   "What leaving customers actually tell you.",
		TopicCategory: "customer research",
	}
}

func tweetsObj(tweets ...string) map[string]any {
	anyTweets := make([]any, len(tweets))
	for i, tw := range tweets {
		anyTweets[i] = tw
	}
	return map[string]any{"tweets": anyTweets}
}

func TestRunnerRetriesWithFeedback(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{
		tweetsObj("fine", strings.Repeat("x", 300)),
		tweetsObj("fine", "also fine"),
	}}
	r := NewRunner(testLogger(t), ai, 3)

	res, err := r.Transform(context.Background(), NewTwitterTransformer(), testIdea())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if res.Platform != types.PlatformTwitter {
		t.Fatalf("Transform: platform=%s", res.Platform)
	}
	if ai.calls != 2 {
		t.Fatalf("Transform: expected 2 provider calls, got %d", ai.calls)
	}
	if !strings.Contains(ai.prompts[1], "at most 280") {
		t.Fatalf("Transform: second prompt should carry the validation reason, got %q", ai.prompts[1])
	}
	if res.Metadata["segment_count"] != 2 {
		t.Fatalf("Transform: metadata=%v", res.Metadata)
	}
}

func TestRunnerExhaustsBudget(t *testing.T) {
	oversize := strings.Repeat("y", 281)
	ai := &scriptedAI{responses: []map[string]any{
		tweetsObj(oversize),
		tweetsObj(oversize),
		tweetsObj(oversize),
	}}
	r := NewRunner(testLogger(t), ai, 3)
	idea := testIdea()

	_, err := r.Transform(context.Background(), NewTwitterTransformer(), idea)
	var te *TransformationError
	if !errors.As(err, &te) {
		t.Fatalf("Transform: expected TransformationError, got %v", err)
	}
	if te.Platform != types.PlatformTwitter || te.IdeaID != idea.ID {
		t.Fatalf("Transform: error scope wrong: %+v", te)
	}
	if te.Attempts != 3 || te.LastReason == "" {
		t.Fatalf("Transform: attempts=%d reason=%q", te.Attempts, te.LastReason)
	}
	if ai.calls != 3 {
		t.Fatalf("Transform: expected 3 provider calls, got %d", ai.calls)
	}
}

func TestRunnerProviderFailure(t *testing.T) {
	ai := &scriptedAI{errs: []error{
		&openai.ProviderError{Kind: openai.ProviderErrHTTP, Op: "/v1/responses", StatusCode: 500, Err: errors.New("boom")},
	}}
	r := NewRunner(testLogger(t), ai, 3)

	_, err := r.Transform(context.Background(), NewTwitterTransformer(), testIdea())
	var te *TransformationError
	if !errors.As(err, &te) {
		t.Fatalf("Transform: expected TransformationError, got %v", err)
	}
	if ai.calls != 1 {
		t.Fatalf("Transform: hard provider failure should not retry, got %d calls", ai.calls)
	}
}

func TestRunnerTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(testLogger(t), &scriptedAI{}, 3)
	_, err := r.Transform(ctx, NewTwitterTransformer(), testIdea())
	var te *TransformationError
	if !errors.As(err, &te) {
		t.Fatalf("Transform: expected TransformationError, got %v", err)
	}
	if te.LastReason != "timeout" {
		t.Fatalf("Transform: reason=%q, want timeout", te.LastReason)
	}
}

func TestRunnerParseFailureFeedsRetry(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{
		{"tweets": "not an array"},
		tweetsObj("recovered"),
	}}
	r := NewRunner(testLogger(t), ai, 3)

	res, err := r.Transform(context.Background(), NewTwitterTransformer(), testIdea())
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if res.Body != "recovered" {
		t.Fatalf("Transform: body=%q", res.Body)
	}
	if ai.calls != 2 {
		t.Fatalf("Transform: expected parse failure to consume one attempt, got %d calls", ai.calls)
	}
}
