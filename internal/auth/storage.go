package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const keyringService = "gdm"

// StorageBackend abstracts credential persistence
type StorageBackend interface {
	Store(key string, data []byte) error
	Retrieve(key string) ([]byte, error)
	Delete(key string) error
	Name() string
}

// KeyringStorage stores credentials in the OS keyring
type KeyringStorage struct{}

// NewKeyringStorage creates a keyring-backed storage
func NewKeyringStorage() *KeyringStorage {
	return &KeyringStorage{}
}

func (s *KeyringStorage) Store(key string, data []byte) error {
	return keyring.Set(keyringService, key, string(data))
}

func (s *KeyringStorage) Retrieve(key string) ([]byte, error) {
	value, err := keyring.Get(keyringService, key)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *KeyringStorage) Delete(key string) error {
	return keyring.Delete(keyringService, key)
}

func (s *KeyringStorage) Name() string {
	return "keyring"
}

// FileStorage stores credentials as JSON files under the config directory
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file-backed storage rooted at dir
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStorage) Store(key string, data []byte) error {
	// Validate before writing so a corrupt blob never lands on disk
	var check json.RawMessage
	if err := json.Unmarshal(data, &check); err != nil {
		return fmt.Errorf("refusing to store non-JSON credentials: %w", err)
	}
	return os.WriteFile(s.path(key), data, 0600)
}

func (s *FileStorage) Retrieve(key string) ([]byte, error) {
	return os.ReadFile(s.path(key))
}

func (s *FileStorage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStorage) Name() string {
	return "file"
}

// NewStorage returns the keyring backend when available, falling back to files.
func NewStorage(configDir string) (StorageBackend, error) {
	probe := "gdm-storage-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err == nil {
		_ = keyring.Delete(keyringService, probe)
		return NewKeyringStorage(), nil
	}
	return NewFileStorage(filepath.Join(configDir, "credentials"))
}
