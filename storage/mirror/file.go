package mirror

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// fileStore keeps one file per key under dir. Writes go to a temp file renamed over the target.
type fileStore struct {
	mutex sync.Mutex
	dir   string
}

var _ Store = (*fileStore)(nil)

func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating mirror dir %s", dir)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *fileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading %q", key)
	}
	return data, true, nil
}

func (s *fileStore) Set(_ context.Context, key string, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %q", key)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	if err = os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	return nil
}

func (s *fileStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "deleting %q", key)
	}
	return nil
}

func (s *fileStore) Close() error { return nil }
