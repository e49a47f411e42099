package service

import "sync"

// repoLock serializes ingestion per repository partition. TryLock is
// non-blocking so a second concurrent ingest of the same repository
// fails fast instead of queueing.
type repoLock struct {
	mu     sync.Mutex
	locked map[string]struct{}
}

func newRepoLock() *repoLock {
	return &repoLock{locked: map[string]struct{}{}}
}

func (l *repoLock) TryLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.locked[key]; ok {
		return false
	}
	l.locked[key] = struct{}{}
	return true
}

func (l *repoLock) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locked, key)
}
