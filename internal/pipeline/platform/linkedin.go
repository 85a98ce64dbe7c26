package platform

import (
	"errors"
	"fmt"
	"strings"

	types "github.com/postpilot/postpilot-backend/internal/domain"
)

const (
	linkedInMinWords    = 150
	linkedInMaxWords    = 300
	linkedInMaxHashtags = 5
)

// Marketing superlatives the tone check rejects.
var marketingSuperlatives = []string{
	"revolutionary",
	"game-changing",
	"game changer",
	"groundbreaking",
	"unbelievable",
	"world-class",
	"mind-blowing",
	"once-in-a-lifetime",
	"guaranteed results",
	"the best ever",
}

type linkedInTransformer struct{}

func NewLinkedInTransformer() Transformer { return &linkedInTransformer{} }

func (t *linkedInTransformer) Platform() string { return types.PlatformLinkedIn }

var linkedInSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"body": map[string]any{"type": "string"},
	},
	"required":             []string{"body"},
	"additionalProperties": false,
}

func (t *linkedInTransformer) BuildRequest(idea *types.CoreIdea, feedback string) (string, string, string, map[string]any) {
	system := "You write professional LinkedIn posts: concrete, first-person, no marketing hype. " +
		"Posts are 150-300 words, use paragraph breaks, and carry at most 5 hashtags."

	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn post based on this idea.\nTitle: %s\nDescription: %s\nTopic: %s\n",
		idea.Title, idea.Description, idea.TopicCategory)
	if feedback != "" {
		fmt.Fprintf(&b, "\nThe previous attempt was rejected: %s\nProduce a fresh post that fixes this.", feedback)
	}
	return system, b.String(), "linkedin_post", linkedInSchema
}

func (t *linkedInTransformer) Parse(obj map[string]any) (*Draft, error) {
	body, _ := obj["body"].(string)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("response missing body")
	}
	return &Draft{Body: body}, nil
}

func (t *linkedInTransformer) Validate(d *Draft) *ValidationFailure {
	words := len(strings.Fields(d.Body))
	if words < linkedInMinWords || words > linkedInMaxWords {
		return &ValidationFailure{Reason: fmt.Sprintf("body is %d words, must be between %d and %d", words, linkedInMinWords, linkedInMaxWords)}
	}
	if !strings.Contains(d.Body, "\n\n") {
		return &ValidationFailure{Reason: "body needs at least one paragraph break"}
	}
	if n := strings.Count(d.Body, "#"); n > linkedInMaxHashtags {
		return &ValidationFailure{Reason: fmt.Sprintf("body has %d hashtag markers, at most %d allowed", n, linkedInMaxHashtags)}
	}
	lower := strings.ToLower(d.Body)
	for _, phrase := range marketingSuperlatives {
		if strings.Contains(lower, phrase) {
			return &ValidationFailure{Reason: fmt.Sprintf("marketing superlative %q is not allowed", phrase)}
		}
	}
	return nil
}

func (t *linkedInTransformer) Metadata(d *Draft) map[string]any {
	return map[string]any{
		"word_count":      len(strings.Fields(d.Body)),
		"hashtag_count":   strings.Count(d.Body, "#"),
		"paragraph_count": len(strings.Split(d.Body, "\n\n")),
	}
}
