package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Storage layout under the data directory. One file per key, matching the
// backend's session contract: access and refresh hold the raw token strings,
// user holds the JSON-serialized profile.
const (
	accessFile  = "access"
	refreshFile = "refresh"
	userFile    = "user"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the session on disk so it survives console restarts.
// In-process observers are notified through Subscribe; other processes pick
// up changes by re-reading the files.
type FileStore struct {
	dir      string
	lock     sync.RWMutex
	notifier notifier
}

// NewFileStore creates the data directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("[NewFileStore] data directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create data directory")
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) AccessToken() (string, bool) {
	return fs.read(accessFile)
}

func (fs *FileStore) SetAccessToken(token string) error {
	return fs.write(accessFile, []byte(token))
}

func (fs *FileStore) RefreshToken() (string, bool) {
	return fs.read(refreshFile)
}

func (fs *FileStore) SetRefreshToken(token string) error {
	return fs.write(refreshFile, []byte(token))
}

func (fs *FileStore) Profile() (*UserProfile, bool) {
	raw, ok := fs.read(userFile)
	if !ok {
		return nil, false
	}
	var profile UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		// Corrupt profile content degrades to "no session".
		return nil, false
	}
	return &profile, true
}

func (fs *FileStore) SetProfile(profile *UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "[FileStore.SetProfile] marshal profile")
	}
	if err := fs.write(userFile, raw); err != nil {
		return err
	}
	fs.notifier.broadcast()
	return nil
}

func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	var firstErr error
	for _, name := range []string{accessFile, refreshFile, userFile} {
		err := os.Remove(filepath.Join(fs.dir, name))
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = errors.Wrap(err, "[FileStore.Clear] remove "+name)
		}
	}
	fs.lock.Unlock()

	fs.notifier.broadcast()
	return firstErr
}

func (fs *FileStore) IsAuthenticated() bool {
	if _, ok := fs.AccessToken(); !ok {
		return false
	}
	_, ok := fs.Profile()
	return ok
}

func (fs *FileStore) Subscribe(fn func()) func() {
	return fs.notifier.subscribe(fn)
}

func (fs *FileStore) read(name string) (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	raw, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (fs *FileStore) write(name string, data []byte) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.WriteFile(filepath.Join(fs.dir, name), data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.write] write "+name)
	}
	return nil
}
