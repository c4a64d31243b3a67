package builder

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned by Apply for an unrecognised op kind.
var ErrUnknownOp = errors.New("builder: unknown edit op")

// Op is one field-level edit as sent by the dashboard.  Key names the colour
// role, text key, image key, or logo key depending on Kind.
type Op struct {
	Kind  string       `json:"op"`
	Key   string       `json:"key,omitempty"`
	Value string       `json:"value,omitempty"`
	Links []SocialLink `json:"links,omitempty"`
}

// Apply runs ops in order and stops at the first failure.  Earlier ops stay
// applied; nothing is persisted until Save.
func (e *Editor) Apply(ops ...Op) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case "color":
			err = e.UpdateColor(ColorRole(op.Key), op.Value)
		case "text":
			err = e.UpdateText(op.Key, op.Value)
		case "image":
			err = e.UpdateImage(op.Key, op.Value)
		case "logo":
			err = e.UpdateLogo(op.Key, op.Value)
		case "social":
			e.SetSocialLinks(op.Links)
		case "reset":
			err = e.Reset()
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
		}
		if err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}
