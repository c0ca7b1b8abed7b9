package storage

import (
	"errors"

	"github.com/julianstephens/wurkwurk/internal/models"
)

// ErrNotFound is returned by GetState for keys that were never written.
var ErrNotFound = errors.New("state key not found")

// UpdateFunc computes the values to write from a locked read of local state.
type UpdateFunc func(current map[string]string) (map[string]string, error)

// Provider persists user settings and the daemon's local state.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Local state, stored as opaque string values
	GetState(key string) (string, error)
	SetState(key, value string) error
	// SetStates writes all values together. SQL backends do it in one transaction.
	SetStates(values map[string]string) error
	DeleteState(key string) error
	// UpdateStates passes the stored values of keys (missing keys are absent
	// from the map) to fn and writes the values fn returns. No other writer of
	// the same store, in this process or another, runs in between. An error
	// from fn aborts without writing.
	UpdateStates(keys []string, fn UpdateFunc) error

	// Utils
	GetConfigPath() string
}
