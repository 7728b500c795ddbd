package services

import "sync"

// userLocks hands out one mutex per user id. Entries are reference counted
// and dropped once nobody holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// Lock blocks until the caller owns key's section and returns its release.
func (l *userLocks) Lock(key string) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[key]
	if !ok {
		ul = &userLock{}
		l.locks[key] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
