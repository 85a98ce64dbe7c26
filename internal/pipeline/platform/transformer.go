package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	types "github.com/postpilot/postpilot-backend/internal/domain"
)

// Draft is one parsed provider response awaiting validation.
type Draft struct {
	Body     string
	Segments []string
	Sections map[string]string
}

// ValidationFailure names the platform constraint a draft missed. It is fed
// back to the provider verbatim as corrective feedback on the next attempt.
type ValidationFailure struct {
	Reason string
}

func (e *ValidationFailure) Error() string { return "validation failed: " + e.Reason }

// TransformationError is the terminal failure for one (idea, platform) pair.
// It never aborts sibling transformations.
type TransformationError struct {
	Platform   string
	IdeaID     uuid.UUID
	LastReason string
	Attempts   int
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transformation failed for idea=%s platform=%s after %d attempts: %s",
		e.IdeaID, e.Platform, e.Attempts, e.LastReason)
}

// Transformer is the per-platform capability: render an idea into a provider
// request and validate the candidate against the platform's constraints.
// Implementations must be stateless; one Transformer serves concurrent tasks.
type Transformer interface {
	Platform() string
	BuildRequest(idea *types.CoreIdea, feedback string) (system string, user string, schemaName string, schema map[string]any)
	Parse(obj map[string]any) (*Draft, error)
	Validate(d *Draft) *ValidationFailure
	Metadata(d *Draft) map[string]any
}

// Registry maps platform tags to transformers. Adding a platform means
// implementing Transformer and registering the tag; the dispatcher and
// orchestrator stay untouched.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
}

func NewRegistry() *Registry {
	return &Registry{transformers: make(map[string]Transformer)}
}

func (r *Registry) Register(t Transformer) error {
	if t == nil {
		return fmt.Errorf("nil transformer")
	}
	tag := t.Platform()
	if tag == "" {
		return fmt.Errorf("transformer Platform() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transformers[tag]; exists {
		return fmt.Errorf("transformer already registered for platform=%s", tag)
	}
	r.transformers[tag] = t
	return nil
}

func (r *Registry) Get(platform string) (Transformer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transformers[platform]
	return t, ok
}

func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.transformers))
	for tag := range r.transformers {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry registers the built-in platform set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(NewLinkedInTransformer())
	_ = r.Register(NewTwitterTransformer())
	_ = r.Register(NewShortVideoTransformer())
	return r
}
