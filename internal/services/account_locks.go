package services

import (
	"sync"

	"github.com/google/uuid"
)

// AccountLocks serializes writers per account. Appends, deletes and summary
// recomputation for one user run one at a time; different users never wait
// on each other.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[uuid.UUID]*accountLock)}
}

// Lock blocks until the caller holds userID's lock and returns the function
// that releases it.
func (l *AccountLocks) Lock(userID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &accountLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// Len reports how many accounts currently have a holder or a waiter.
func (l *AccountLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
