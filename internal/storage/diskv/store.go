// Package diskv stores settings and local state as one small file per key.
package diskv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/storage"
)

// Scheme prefixes a --config value that selects this backend.
const Scheme = "diskv://"

const (
	settingsDir = "settings"
	stateDir    = "state"
)

type Store struct {
	basePath string
	d        *diskv.Diskv
}

func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.basePath, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	s.open()

	settings, err := s.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if err := s.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.d != nil {
		return nil
	}
	if _, err := os.Stat(s.basePath); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'wurkwurk init' first")
	}
	s.open()
	return nil
}

// open disables the value cache because other processes write the same
// files, and writes through TempDir so readers never see a partial value.
func (s *Store) open() {
	s.d = diskv.New(diskv.Options{
		BasePath:          s.basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      0,
		TempDir:           filepath.Join(s.basePath, ".tmp"),
		FilePerm:          0600,
		PathPerm:          0700,
	})
}

func (s *Store) Close() error {
	s.d = nil
	return nil
}

func (s *Store) GetConfigPath() string {
	return Scheme + s.basePath
}

func (s *Store) GetSettings() (models.Settings, error) {
	data := make(map[string]string)
	for key := range models.SettingsToMap(models.DefaultSettings()) {
		k := settingsDir + "/" + key
		if !s.d.Has(k) {
			continue
		}
		val, err := s.d.Read(k)
		if err != nil {
			return models.Settings{}, fmt.Errorf("reading setting %s: %w", key, err)
		}
		data[key] = string(val)
	}
	return models.MapToSettings(data)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	for key, value := range models.SettingsToMap(settings) {
		if err := s.d.Write(settingsDir+"/"+key, []byte(value)); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) GetState(key string) (string, error) {
	k := stateDir + "/" + key
	if !s.d.Has(k) {
		return "", storage.ErrNotFound
	}
	val, err := s.d.Read(k)
	if err != nil {
		return "", fmt.Errorf("reading state %s: %w", key, err)
	}
	return string(val), nil
}

func (s *Store) SetState(key, value string) error {
	if err := s.d.Write(stateDir+"/"+key, []byte(value)); err != nil {
		return fmt.Errorf("writing state %s: %w", key, err)
	}
	return nil
}

// SetStates writes keys one by one; diskv has no multi-key transaction.
func (s *Store) SetStates(values map[string]string) error {
	for key, value := range values {
		if err := s.SetState(key, value); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStates runs under a lock file in the store directory.
func (s *Store) UpdateStates(keys []string, fn storage.UpdateFunc) error {
	release, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	current := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := s.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		current[key] = v
	}
	values, err := fn(current)
	if err != nil {
		return err
	}
	return s.SetStates(values)
}

func (s *Store) DeleteState(key string) error {
	k := stateDir + "/" + key
	if !s.d.Has(k) {
		return nil
	}
	if err := s.d.Erase(k); err != nil {
		return fmt.Errorf("deleting state %s: %w", key, err)
	}
	return nil
}

func keyToPath(key string) *diskv.PathKey {
	dir, file, ok := strings.Cut(key, "/")
	if !ok {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{Path: []string{dir}, FileName: file}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "/") + "/" + pk.FileName
}
