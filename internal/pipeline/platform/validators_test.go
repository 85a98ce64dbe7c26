package platform

import (
	"strings"
	"testing"
)

func words(word string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ")
}

func TestLinkedInValidate(t *testing.T) {
	tr := NewLinkedInTransformer()

	valid := words("insight", 100) + "\n\n" + words("detail", 100) + " #growth #lessons"
	if f := tr.Validate(&Draft{Body: valid}); f != nil {
		t.Fatalf("valid post rejected: %s", f.Reason)
	}

	short := words("quick", 50) + "\n\n" + words("note", 50)
	if f := tr.Validate(&Draft{Body: short}); f == nil {
		t.Fatalf("expected rejection for 100 words")
	}

	long := words("filler", 200) + "\n\n" + words("padding", 200)
	if f := tr.Validate(&Draft{Body: long}); f == nil {
		t.Fatalf("expected rejection for 400 words")
	}

	noBreak := words("run-on", 200)
	if f := tr.Validate(&Draft{Body: noBreak}); f == nil {
		t.Fatalf("expected rejection for missing paragraph break")
	}

	hashtags := words("tag", 100) + "\n\n" + words("more", 94) + " #a #b #c #d #e #f"
	if f := tr.Validate(&Draft{Body: hashtags}); f == nil {
		t.Fatalf("expected rejection for 6 hashtags")
	}

	hype := words("claim", 100) + "\n\nThis is a groundbreaking " + words("idea", 99)
	if f := tr.Validate(&Draft{Body: hype}); f == nil {
		t.Fatalf("expected rejection for marketing superlative")
	}
}

func TestTwitterValidate(t *testing.T) {
	tr := NewTwitterTransformer()

	single := &Draft{Segments: []string{"one short tweet"}}
	if f := tr.Validate(single); f != nil {
		t.Fatalf("single tweet rejected: %s", f.Reason)
	}

	thread := &Draft{Segments: []string{"first", "second", "third", "fourth", "fifth"}}
	if f := tr.Validate(thread); f != nil {
		t.Fatalf("5-tweet thread rejected: %s", f.Reason)
	}

	tooMany := &Draft{Segments: []string{"a", "b", "c", "d", "e", "f"}}
	if f := tr.Validate(tooMany); f == nil {
		t.Fatalf("expected rejection for 6 tweets")
	}

	oversized := &Draft{Segments: []string{"fine", strings.Repeat("x", 281)}}
	if f := tr.Validate(oversized); f == nil {
		t.Fatalf("expected rejection for oversized tweet")
	}

	// Multi-byte runes count as single characters.
	emoji := &Draft{Segments: []string{strings.Repeat("🚀", 280)}}
	if f := tr.Validate(emoji); f != nil {
		t.Fatalf("280-rune tweet rejected: %s", f.Reason)
	}
}

func TestShortVideoValidate(t *testing.T) {
	tr := NewShortVideoTransformer()

	// 100 words at 2.5 wps is 40 seconds.
	draft := &Draft{
		Body: words("line", 100),
		Sections: map[string]string{
			sectionHook:  "stop scrolling",
			sectionValue: words("because", 90),
			sectionCTA:   "follow for more",
		},
	}
	if f := tr.Validate(draft); f != nil {
		t.Fatalf("valid script rejected: %s", f.Reason)
	}

	missing := &Draft{
		Body: words("line", 100),
		Sections: map[string]string{
			sectionHook:  "stop scrolling",
			sectionValue: words("because", 90),
			sectionCTA:   "",
		},
	}
	if f := tr.Validate(missing); f == nil {
		t.Fatalf("expected rejection for missing call_to_action")
	}

	tooShort := &Draft{
		Body: words("hi", 20),
		Sections: map[string]string{
			sectionHook: "a", sectionValue: "b", sectionCTA: "c",
		},
	}
	if f := tr.Validate(tooShort); f == nil {
		t.Fatalf("expected rejection for 8-second script")
	}

	tooLong := &Draft{
		Body: words("word", 200),
		Sections: map[string]string{
			sectionHook: "a", sectionValue: "b", sectionCTA: "c",
		},
	}
	if f := tr.Validate(tooLong); f == nil {
		t.Fatalf("expected rejection for 80-second script")
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	tags := r.Platforms()
	if len(tags) != 3 {
		t.Fatalf("expected 3 registered platforms, got %v", tags)
	}
	for _, tag := range tags {
		tr, ok := r.Get(tag)
		if !ok || tr.Platform() != tag {
			t.Fatalf("registry lookup broken for %s", tag)
		}
	}
	if err := r.Register(NewTwitterTransformer()); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
