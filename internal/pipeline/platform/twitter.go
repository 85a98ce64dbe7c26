package platform

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	types "github.com/postpilot/postpilot-backend/internal/domain"
)

const (
	tweetMaxChars   = 280
	threadMaxTweets = 5
)

type twitterTransformer struct{}

func NewTwitterTransformer() Transformer { return &twitterTransformer{} }

func (t *twitterTransformer) Platform() string { return types.PlatformTwitter }

var twitterSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tweets": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []string{"tweets"},
	"additionalProperties": false,
}

func (t *twitterTransformer) BuildRequest(idea *types.CoreIdea, feedback string) (string, string, string, map[string]any) {
	system := "You write X/Twitter content: either a single tweet or a thread of 2-5 tweets. " +
		"Every tweet must be at most 280 characters. No numbering prefixes unless it is a thread."

	var b strings.Builder
	fmt.Fprintf(&b, "Write a tweet or short thread based on this idea.\nTitle: %s\nDescription: %s\nTopic: %s\n",
		idea.Title, idea.Description, idea.TopicCategory)
	if feedback != "" {
		fmt.Fprintf(&b, "\nThe previous attempt was rejected: %s\nProduce a fresh version that fixes this.", feedback)
	}
	return system, b.String(), "twitter_thread", twitterSchema
}

func (t *twitterTransformer) Parse(obj map[string]any) (*Draft, error) {
	raw, ok := obj["tweets"].([]any)
	if !ok {
		return nil, errors.New("response missing tweets array")
	}
	segments := make([]string, 0, len(raw))
	for _, item := range raw {
		s := strings.TrimSpace(fmt.Sprint(item))
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil, errors.New("response has no tweets")
	}
	return &Draft{
		Body:     strings.Join(segments, "\n\n"),
		Segments: segments,
	}, nil
}

func (t *twitterTransformer) Validate(d *Draft) *ValidationFailure {
	n := len(d.Segments)
	if n < 1 || n > threadMaxTweets {
		return &ValidationFailure{Reason: fmt.Sprintf("thread has %d tweets, must be between 1 and %d", n, threadMaxTweets)}
	}
	for i, seg := range d.Segments {
		if c := utf8.RuneCountInString(seg); c > tweetMaxChars {
			return &ValidationFailure{Reason: fmt.Sprintf("tweet %d is %d characters, at most %d allowed", i+1, c, tweetMaxChars)}
		}
	}
	return nil
}

func (t *twitterTransformer) Metadata(d *Draft) map[string]any {
	lengths := make([]int, len(d.Segments))
	for i, seg := range d.Segments {
		lengths[i] = utf8.RuneCountInString(seg)
	}
	return map[string]any{
		"segment_count":   len(d.Segments),
		"segment_lengths": lengths,
		"is_thread":       len(d.Segments) > 1,
	}
}
