package storefakes

import (
	"sync"

	"github.com/condovista/condoctl/session"
)

var _ session.Store = (*FakeSessionStore)(nil)

// FakeSessionStore is an in-memory session store for tests and for
// ephemeral sessions that should not touch the disk.
type FakeSessionStore struct {
	access  string
	refresh string
	profile *session.UserProfile
	lock    sync.RWMutex

	subsLock sync.Mutex
	nextID   int
	subs     map[int]func()
}

func NewFakeSessionStore() session.Store {
	return &FakeSessionStore{
		subs: make(map[int]func()),
	}
}

func (fs *FakeSessionStore) AccessToken() (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.access, fs.access != ""
}

func (fs *FakeSessionStore) SetAccessToken(token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.access = token
	return nil
}

func (fs *FakeSessionStore) RefreshToken() (string, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.refresh, fs.refresh != ""
}

func (fs *FakeSessionStore) SetRefreshToken(token string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.refresh = token
	return nil
}

func (fs *FakeSessionStore) Profile() (*session.UserProfile, bool) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.profile == nil {
		return nil, false
	}
	profile := *fs.profile
	return &profile, true
}

func (fs *FakeSessionStore) SetProfile(profile *session.UserProfile) error {
	fs.lock.Lock()
	fs.profile = profile
	fs.lock.Unlock()

	fs.broadcast()
	return nil
}

func (fs *FakeSessionStore) Clear() error {
	fs.lock.Lock()
	fs.access = ""
	fs.refresh = ""
	fs.profile = nil
	fs.lock.Unlock()

	fs.broadcast()
	return nil
}

func (fs *FakeSessionStore) IsAuthenticated() bool {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.access != "" && fs.profile != nil
}

func (fs *FakeSessionStore) Subscribe(fn func()) func() {
	fs.subsLock.Lock()
	defer fs.subsLock.Unlock()

	id := fs.nextID
	fs.nextID++
	fs.subs[id] = fn

	return func() {
		fs.subsLock.Lock()
		defer fs.subsLock.Unlock()
		delete(fs.subs, id)
	}
}

func (fs *FakeSessionStore) broadcast() {
	fs.subsLock.Lock()
	fns := make([]func(), 0, len(fs.subs))
	for _, fn := range fs.subs {
		fns = append(fns, fn)
	}
	fs.subsLock.Unlock()

	for _, fn := range fns {
		fn()
	}
}
