package platform

import (
	"errors"
	"fmt"
	"strings"

	types "github.com/postpilot/postpilot-backend/internal/domain"
)

const (
	scriptMinSeconds  = 15
	scriptMaxSeconds  = 60
	spokenWordsPerSec = 2.5
)

const (
	sectionHook  = "hook"
	sectionValue = "value"
	sectionCTA   = "call_to_action"
)

type shortVideoTransformer struct{}

func NewShortVideoTransformer() Transformer { return &shortVideoTransformer{} }

func (t *shortVideoTransformer) Platform() string { return types.PlatformShortVideo }

var shortVideoSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"hook":           map[string]any{"type": "string"},
		"value":          map[string]any{"type": "string"},
		"call_to_action": map[string]any{"type": "string"},
	},
	"required":             []string{"hook", "value", "call_to_action"},
	"additionalProperties": false,
}

func (t *shortVideoTransformer) BuildRequest(idea *types.CoreIdea, feedback string) (string, string, string, map[string]any) {
	system := "You write short-form video scripts with three sections: a hook, the value, and a call to action. " +
		"Spoken length must land between 15 and 60 seconds at a natural speaking pace."

	var b strings.Builder
	fmt.Fprintf(&b, "Write a short video script based on this idea.\nTitle: %s\nDescription: %s\nTopic: %s\n",
		idea.Title, idea.Description, idea.TopicCategory)
	if feedback != "" {
		fmt.Fprintf(&b, "\nThe previous attempt was rejected: %s\nProduce a fresh script that fixes this.", feedback)
	}
	return system, b.String(), "short_video_script", shortVideoSchema
}

func (t *shortVideoTransformer) Parse(obj map[string]any) (*Draft, error) {
	sections := map[string]string{}
	for _, key := range []string{sectionHook, sectionValue, sectionCTA} {
		s, _ := obj[key].(string)
		sections[key] = strings.TrimSpace(s)
	}
	if sections[sectionHook] == "" && sections[sectionValue] == "" && sections[sectionCTA] == "" {
		return nil, errors.New("response missing script sections")
	}
	body := strings.Join([]string{sections[sectionHook], sections[sectionValue], sections[sectionCTA]}, "\n\n")
	return &Draft{
		Body:     strings.TrimSpace(body),
		Sections: sections,
	}, nil
}

func (t *shortVideoTransformer) Validate(d *Draft) *ValidationFailure {
	for _, key := range []string{sectionHook, sectionValue, sectionCTA} {
		if strings.TrimSpace(d.Sections[key]) == "" {
			return &ValidationFailure{Reason: fmt.Sprintf("script is missing the %s section", key)}
		}
	}
	secs := estimatedSeconds(d.Body)
	if secs < scriptMinSeconds || secs > scriptMaxSeconds {
		return &ValidationFailure{Reason: fmt.Sprintf("estimated spoken duration is %.0f seconds, must be between %d and %d", secs, scriptMinSeconds, scriptMaxSeconds)}
	}
	return nil
}

func (t *shortVideoTransformer) Metadata(d *Draft) map[string]any {
	return map[string]any{
		"sections":                   d.Sections,
		"word_count":                 len(strings.Fields(d.Body)),
		"estimated_duration_seconds": estimatedSeconds(d.Body),
	}
}

func estimatedSeconds(body string) float64 {
	return float64(len(strings.Fields(body))) / spokenWordsPerSec
}
