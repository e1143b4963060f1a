package credential

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/nhle/smarttodo/internal/model"
)

// EnvAPIKey is the environment variable consulted after settings.
const EnvAPIKey = "ANTHROPIC_API_KEY"

// SettingsSource provides the saved settings record.
type SettingsSource interface {
	GetSettings(ctx context.Context) (*model.Settings, error)
}

// Resolver finds the API key in settings, then the environment, then the
// keyring. The keyring is only opened when the first two sources are empty.
type Resolver struct {
	settings SettingsSource
	open     func() (*Keyring, error)
	getenv   func(string) string

	once sync.Once
	ring *Keyring
	err  error
}

// NewResolver creates a Resolver. A nil open disables the keyring source.
func NewResolver(settings SettingsSource, open func() (*Keyring, error)) *Resolver {
	return &Resolver{settings: settings, open: open, getenv: os.Getenv}
}

// ConfiguredKey is APIKey with a key missing from every source reported as
// an empty string. It satisfies ai.KeyFunc.
func (r *Resolver) ConfiguredKey(ctx context.Context) (string, error) {
	key, err := r.APIKey(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return key, err
}

// APIKey returns the first non-empty key, or ErrNotFound.
func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	if r.settings != nil {
		s, err := r.settings.GetSettings(ctx)
		if err != nil {
			return "", fmt.Errorf("reading settings: %w", err)
		}
		if s != nil && strings.TrimSpace(s.APIKey) != "" {
			return strings.TrimSpace(s.APIKey), nil
		}
	}

	if key := strings.TrimSpace(r.getenv(EnvAPIKey)); key != "" {
		return key, nil
	}

	if r.open == nil {
		return "", ErrNotFound
	}
	r.once.Do(func() { r.ring, r.err = r.open() })
	if r.err != nil {
		return "", r.err
	}
	return r.ring.Get(APIKeyItem)
}
