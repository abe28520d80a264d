package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a secret or a key inside it does not exist.
var ErrNotFound = errors.New("secret not found")

// Store returns the raw secret string for an identifier.
type Store interface {
	GetSecretValue(ctx context.Context, id string) (string, error)
}

// ValueFor extracts the credential from a secret string. Secret strings are
// JSON objects keyed by the secret identifier: {"<id>": "<value>"}.
func ValueFor(secretString, id string) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(secretString), &doc); err != nil {
		// hand-edited local secret files are often YAML
		if yerr := yaml.Unmarshal([]byte(secretString), &doc); yerr != nil {
			return "", fmt.Errorf("parse secret %s: %w", id, err)
		}
	}
	v, ok := doc[id]
	if !ok {
		return "", fmt.Errorf("%w: key %q missing from secret", ErrNotFound, id)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("secret %s: value is %T, want string", id, v)
	}
	return s, nil
}
