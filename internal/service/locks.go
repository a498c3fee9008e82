package service

import (
	"fmt"
	"sync"
)

// SessionLocks serializes operations on the same session within one process.
// Entries are dropped once no caller holds or waits on them.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionLocks creates an empty lock table
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sessionLock)}
}

// Lock blocks until key is free and returns the function that releases it
func (l *SessionLocks) Lock(key string) func() {
	l.mu.Lock()
	sl, exists := l.locks[key]
	if !exists {
		sl = &sessionLock{}
		l.locks[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sl.mu.Unlock()
			l.mu.Lock()
			sl.refs--
			if sl.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited
func (l *SessionLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func sessionKey(id int64) string {
	return fmt.Sprintf("session:%d", id)
}

func startKey(studentID, assignmentID int64) string {
	return fmt.Sprintf("start:%d:%d", studentID, assignmentID)
}
