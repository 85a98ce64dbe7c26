package ideas

import (
	"context"
	"fmt"
	"strings"

	"github.com/postpilot/postpilot-backend/internal/clients/openai"
	"github.com/postpilot/postpilot-backend/internal/pkg/logger"
)

const (
	MinIdeas = 3
	MaxIdeas = 5

	// Pairwise token overlap at or above this marks a near-duplicate.
	DefaultSimilarityThreshold = 0.6
)

// Candidate is one parsed idea from the provider, not yet persisted.
type Candidate struct {
	Title         string
	Description   string
	TopicCategory string
}

// GenerationError is fatal to the enclosing run: the batch could not reach
// the minimum usable size, or the provider kept returning malformed output.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("idea generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("idea generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Generator struct {
	log       *logger.Logger
	ai        openai.Client
	threshold float64
}

func NewGenerator(baseLog *logger.Logger, ai openai.Client) *Generator {
	return &Generator{
		log:       baseLog.With("service", "IdeaGenerator"),
		ai:        ai,
		threshold: DefaultSimilarityThreshold,
	}
}

var ideaBatchSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"ideas": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":          map[string]any{"type": "string"},
					"description":    map[string]any{"type": "string"},
					"topic_category": map[string]any{"type": "string"},
				},
				"required":             []string{"title", "description", "topic_category"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"ideas"},
	"additionalProperties": false,
}

// Generate asks the provider for count diverse ideas, excluding recent topics,
// then applies intra-batch deduplication. When dedup drops the batch below the
// minimum it issues one bounded re-generation pass listing the rejected titles
// as additional exclusions. It never persists anything.
func (g *Generator) Generate(ctx context.Context, count int, excludedTopics []string) ([]Candidate, error) {
	if count < MinIdeas || count > MaxIdeas {
		return nil, &GenerationError{Reason: fmt.Sprintf("idea count %d outside allowed range %d-%d", count, MinIdeas, MaxIdeas)}
	}

	excluded := map[string]struct{}{}
	for _, t := range excludedTopics {
		if nt := normalizeTopic(t); nt != "" {
			excluded[nt] = struct{}{}
		}
	}

	batch, err := g.request(ctx, count, excludedTopics, nil)
	if err != nil {
		return nil, err
	}
	batch = filterExcluded(batch, excluded)
	kept, rejected := g.dedupe(batch)

	if len(kept) < MinIdeas {
		g.log.Info("Idea batch below minimum after dedup, re-generating once",
			"kept", len(kept),
			"rejected", len(rejected),
		)
		exclusionTitles := make([]string, 0, len(kept)+len(rejected))
		for _, c := range kept {
			exclusionTitles = append(exclusionTitles, c.Title)
		}
		exclusionTitles = append(exclusionTitles, rejected...)

		extra, err := g.request(ctx, count-len(kept), excludedTopics, exclusionTitles)
		if err != nil {
			return nil, err
		}
		extra = filterExcluded(extra, excluded)
		for _, c := range extra {
			if len(kept) >= count {
				break
			}
			dup := false
			for _, k := range kept {
				if nearDuplicate(k, c, g.threshold) {
					dup = true
					break
				}
			}
			if !dup {
				kept = append(kept, c)
			}
		}
	}

	if len(kept) < MinIdeas {
		return nil, &GenerationError{Reason: fmt.Sprintf("only %d usable ideas after retries, need at least %d", len(kept), MinIdeas)}
	}
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept, nil
}

// request performs one generation call; a malformed response is retried once
// before giving up.
func (g *Generator) request(ctx context.Context, count int, excludedTopics []string, excludedTitles []string) ([]Candidate, error) {
	system := "You generate diverse, specific content ideas for a creator's daily posting pipeline. Every idea must have a distinct angle and topic category."

	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d content ideas.\n", count)
	if len(excludedTopics) > 0 {
		fmt.Fprintf(&b, "Do NOT use any of these topic categories (already covered recently): %s.\n", strings.Join(excludedTopics, ", "))
	}
	if len(excludedTitles) > 0 {
		fmt.Fprintf(&b, "Do NOT repeat or rephrase any of these titles: %s.\n", strings.Join(excludedTitles, "; "))
	}
	b.WriteString("Each idea needs a title, a 2-3 sentence description, and a short topic category label.")

	var obj map[string]any
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		obj, err = g.ai.GenerateJSON(ctx, system, b.String(), "idea_batch", ideaBatchSchema)
		if err == nil {
			break
		}
		if !openai.IsMalformed(err) {
			return nil, &GenerationError{Reason: "provider call failed", Err: err}
		}
		g.log.Warn("Malformed idea batch from provider", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return nil, &GenerationError{Reason: "provider returned malformed output twice in a row", Err: err}
	}

	return parseCandidates(obj), nil
}

func parseCandidates(obj map[string]any) []Candidate {
	raw, ok := obj["ideas"].([]any)
	if !ok {
		return nil
	}
	out := make([]Candidate, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := Candidate{
			Title:         strings.TrimSpace(fmt.Sprint(m["title"])),
			Description:   strings.TrimSpace(fmt.Sprint(m["description"])),
			TopicCategory: strings.TrimSpace(fmt.Sprint(m["topic_category"])),
		}
		if c.Title == "" || c.Description == "" || c.TopicCategory == "" ||
			c.Title == "<nil>" || c.Description == "<nil>" || c.TopicCategory == "<nil>" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func filterExcluded(batch []Candidate, excluded map[string]struct{}) []Candidate {
	if len(excluded) == 0 {
		return batch
	}
	out := batch[:0]
	for _, c := range batch {
		if _, bad := excluded[normalizeTopic(c.TopicCategory)]; bad {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupe keeps the first of each near-duplicate pair and returns the dropped
// titles for use as re-generation exclusions.
func (g *Generator) dedupe(batch []Candidate) (kept []Candidate, rejectedTitles []string) {
	for _, c := range batch {
		dup := false
		for _, k := range kept {
			if nearDuplicate(k, c, g.threshold) {
				dup = true
				break
			}
		}
		if dup {
			rejectedTitles = append(rejectedTitles, c.Title)
			continue
		}
		kept = append(kept, c)
	}
	return kept, rejectedTitles
}
