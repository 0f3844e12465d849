// Package file stores the autosaved document as a single file on disk.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"emojiart/internal/domain"
)

var log = logging.Logger("emojiart/store/file")

// FileName is the fixed name of the autosave file
const FileName = "Autosaved.emojiart"

// DocumentStore keeps the document in <dir>/Autosaved.emojiart
type DocumentStore struct {
	path  string
	mutex sync.RWMutex
}

// DefaultDir returns the per-user directory for the autosave file
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve user config dir")
	}
	return filepath.Join(base, "emojiart"), nil
}

// NewDocumentStore creates the directory if needed; an empty dir means DefaultDir
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory %s", dir)
	}

	return &DocumentStore{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the location of the autosave file
func (s *DocumentStore) Path() string {
	return s.path
}

// Save overwrites the autosave file. The content is written to a temporary
// file in the same directory and renamed over the target, so a crash never
// leaves a truncated document behind.
func (s *DocumentStore) Save(ctx context.Context, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*.tmp")
	if err != nil {
		return errors.Wrapf(domain.ErrWrite, "create temp file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(domain.ErrWrite, "write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(domain.ErrWrite, "close temp file: %v", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(domain.ErrWrite, "rename into place: %v", err)
	}

	log.Debugw("document written", "path", s.path, "bytes", len(data))
	return nil
}

// Load reads the whole autosave file
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", s.path)
	}
	return data, nil
}

// Close does nothing; files are opened per call
func (s *DocumentStore) Close() error {
	return nil
}
