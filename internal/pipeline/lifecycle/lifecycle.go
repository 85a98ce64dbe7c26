package lifecycle

import (
	"fmt"

	types "github.com/postpilot/postpilot-backend/internal/domain"
)

// IllegalTransitionError rejects a state change the machine does not allow.
// The content row is left untouched when this is returned.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal content transition %s -> %s", e.From, e.To)
}

// transitions is the full set of legal state changes. Published is terminal;
// there is no path out of it.
var transitions = map[string][]string{
	types.ContentStateGenerated: {types.ContentStateReviewed, types.ContentStateEdited},
	types.ContentStateReviewed:  {types.ContentStateEdited, types.ContentStateReady},
	types.ContentStateEdited:    {types.ContentStateReady},
	types.ContentStateReady:     {types.ContentStatePublished},
	types.ContentStatePublished: {},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Step advances the content's state, or returns IllegalTransitionError and
// leaves it unchanged. Entering edited for the first time captures the
// then-current body as the edited body.
func Step(c *types.PlatformContent, to string) error {
	if !CanTransition(c.State, to) {
		return &IllegalTransitionError{From: c.State, To: to}
	}
	if to == types.ContentStateEdited && c.EditedBody == "" {
		c.EditedBody = c.Body
	}
	c.State = to
	return nil
}

// ApplyEdit replaces the working body and moves the content into the edited
// state. Edits are allowed while the content is generated, reviewed, or
// already edited; OriginalBody is never touched.
func ApplyEdit(c *types.PlatformContent, newBody string) error {
	if c.State != types.ContentStateEdited {
		if err := Step(c, types.ContentStateEdited); err != nil {
			return err
		}
	}
	c.Body = newBody
	c.EditedBody = newBody
	return nil
}
