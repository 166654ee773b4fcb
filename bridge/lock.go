package bridge

import (
	"net/http"
	"strings"
	"sync"
)

// Lock gates the device routes while a recalibration round trip is in
// flight, returning 423 (Locked) instead of queueing requests behind a
// calibration that can block for tens of seconds.
type Lock struct {
	mu     sync.Mutex
	locked bool

	// DoNotProtect lists URL fragments exempt from the lock
	DoNotProtect []string
}

// NewLock returns a Lock exempting the status route, which serves its
// cache while the device is busy.
func NewLock() *Lock {
	return &Lock{DoNotProtect: []string{"status"}}
}

// Lock the lock.
func (l *Lock) Lock() {
	l.mu.Lock()
	l.locked = true
	l.mu.Unlock()
}

// Unlock the lock.
func (l *Lock) Unlock() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}

// Locked returns true if the lock is held.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Check is an HTTP middleware that bounces protected routes with
// http.StatusLocked while the lock is held.
func (l *Lock) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() {
			protected := true
			for _, frag := range l.DoNotProtect {
				if strings.Contains(r.URL.Path, frag) {
					protected = false
				}
			}
			if protected {
				http.Error(w, "calibration in progress", http.StatusLocked)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
