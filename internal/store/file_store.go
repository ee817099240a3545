package store

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrNoDatabase is returned by Load when the file does not exist yet.
var ErrNoDatabase = errors.New("database file does not exist")

// FileStore keeps one passphrase-sealed Database in a single file.
type FileStore struct {
	path string
	kdf  kdfParams
	mu   sync.Mutex
}

// NewFileStore returns a FileStore for the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, kdf: defaultKDF}
}

// Path returns the database file location.
func (s *FileStore) Path() string { return s.path }

// Exists reports whether the database file is present.
func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Save seals db with passphrase and replaces the file atomically.
func (s *FileStore) Save(passphrase string, db *Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := marshalDatabase(db)
	if err != nil {
		return err
	}
	b, err := seal(passphrase, raw, s.kdf)
	if err != nil {
		return err
	}
	if err := writeFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Load opens the file with passphrase.
func (s *FileStore) Load(passphrase string) (*Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, ErrNoDatabase)
	}
	if err != nil {
		return nil, err
	}
	raw, err := open(passphrase, b)
	if err != nil {
		return nil, err
	}
	return unmarshalDatabase(raw)
}
