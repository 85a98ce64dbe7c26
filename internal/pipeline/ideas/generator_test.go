package ideas

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/postpilot/postpilot-backend/internal/clients/openai"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

type scriptedAI struct {
	responses []map[string]any
	errs      []error
	prompts   []string
	calls     int
}

func (s *scriptedAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, user)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return map[string]any{"ideas": []any{}}, nil
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

func ideaObj(title, desc, topic string) map[string]any {
	return map[string]any{"title": title, "description": desc, "topic_category": topic}
}

func batchObj(items ...map[string]any) map[string]any {
	anyItems := make([]any, len(items))
	for i, it := range items {
		anyItems[i] = it
	}
	return map[string]any{"ideas": anyItems}
}

func TestGenerateHappyPath(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{batchObj(
		ideaObj("Remote onboarding rituals", "How distributed teams ramp new hires in week one.", "remote work"),
		ideaObj("Pricing experiments that do not scare users", "Safe ways to test price points.", "pricing"),
		ideaObj("The case for boring tech", "Choosing proven tools over hype.", "engineering culture"),
		ideaObj("Founder calendars", "Time allocation patterns of early founders.", "productivity"),
		ideaObj("Churn interviews", "What leaving customers actually tell you.", "customer research"),
	)}}
	g := NewGenerator(testLogger(t), ai)

	got, err := g.Generate(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("Generate: expected 5 ideas, got %d", len(got))
	}
	if ai.calls != 1 {
		t.Fatalf("Generate: expected a single provider call, got %d", ai.calls)
	}
}

func TestGenerateExcludesTopics(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{batchObj(
		ideaObj("Agents everywhere", "Agents doing agent things.", "AI"),
		ideaObj("Remote onboarding rituals", "Ramping new hires.", "remote work"),
		ideaObj("Pricing experiments", "Safe price testing.", "pricing"),
		ideaObj("Churn interviews", "Learning from leaving customers.", "customer research"),
	)}}
	g := NewGenerator(testLogger(t), ai)

	got, err := g.Generate(context.Background(), 4, []string{"AI"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, c := range got {
		if strings.EqualFold(c.TopicCategory, "AI") {
			t.Fatalf("Generate: returned excluded topic: %+v", c)
		}
	}
	if len(got) != 3 {
		t.Fatalf("Generate: expected 3 ideas after exclusion, got %d", len(got))
	}
	if !strings.Contains(ai.prompts[0], "AI") {
		t.Fatalf("Generate: prompt should carry the exclusion list, got %q", ai.prompts[0])
	}
}

func TestGenerateDedupTriggersRegeneration(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{
		batchObj(
			ideaObj("Remote onboarding rituals", "How distributed teams ramp new hires.", "remote work"),
			ideaObj("Remote onboarding rituals for teams", "How distributed teams ramp their new hires.", "remote work"),
			ideaObj("Pricing experiments", "Safe ways to test price points.", "pricing"),
		),
		batchObj(
			ideaObj("Churn interviews", "What leaving customers tell you.", "customer research"),
		),
	}}
	g := NewGenerator(testLogger(t), ai)

	got, err := g.Generate(context.Background(), 3, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Generate: expected 3 ideas after regeneration, got %d", len(got))
	}
	if ai.calls != 2 {
		t.Fatalf("Generate: expected 2 provider calls, got %d", ai.calls)
	}
	if !strings.Contains(ai.prompts[1], "Remote onboarding rituals for teams") {
		t.Fatalf("Generate: regeneration prompt should list the rejected title, got %q", ai.prompts[1])
	}

	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			if nearDuplicate(got[i], got[j], DefaultSimilarityThreshold) {
				t.Fatalf("Generate: near-duplicates survived: %q vs %q", got[i].Title, got[j].Title)
			}
		}
	}
}

func TestGenerateFailsBelowMinimum(t *testing.T) {
	ai := &scriptedAI{responses: []map[string]any{
		batchObj(
			ideaObj("Remote onboarding rituals", "Ramping new hires.", "remote work"),
		),
		batchObj(),
	}}
	g := NewGenerator(testLogger(t), ai)

	_, err := g.Generate(context.Background(), 3, nil)
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("Generate: expected GenerationError, got %v", err)
	}
}

func TestGenerateMalformedTwiceFails(t *testing.T) {
	malformed := &openai.ProviderError{Kind: openai.ProviderErrMalformed, Op: "/v1/responses", Err: errors.New("bad json")}
	ai := &scriptedAI{errs: []error{malformed, malformed}}
	g := NewGenerator(testLogger(t), ai)

	_, err := g.Generate(context.Background(), 3, nil)
	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("Generate: expected GenerationError, got %v", err)
	}
	if ai.calls != 2 {
		t.Fatalf("Generate: expected 2 provider attempts, got %d", ai.calls)
	}
}

func TestGenerateRejectsCountOutOfRange(t *testing.T) {
	g := NewGenerator(testLogger(t), &scriptedAI{})
	for _, count := range []int{0, 2, 6} {
		if _, err := g.Generate(context.Background(), count, nil); err == nil {
			t.Fatalf("Generate(%d): expected error", count)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if s := similarity("Remote onboarding rituals", "Remote onboarding rituals"); s != 1 {
		t.Fatalf("similarity identical: %v", s)
	}
	if s := similarity("Remote onboarding rituals", "Quarterly pricing experiments"); s >= DefaultSimilarityThreshold {
		t.Fatalf("similarity unrelated: %v", s)
	}
	a := Candidate{Title: "Remote onboarding rituals", Description: "How distributed teams ramp new hires"}
	b := Candidate{Title: "Remote onboarding rituals for teams", Description: "How distributed teams ramp their new hires"}
	if !nearDuplicate(a, b, DefaultSimilarityThreshold) {
		t.Fatalf("nearDuplicate: expected duplicate")
	}
}
