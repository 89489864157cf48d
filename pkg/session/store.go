package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/postlog-dashboard/pkg/filetree"
)

// ErrSessionNotFound is returned for unknown, expired or foreign sessions
var ErrSessionNotFound = errors.New("browse session not found")

// Target identifies the repository and branch a session browses
type Target struct {
	Account string
	Repo    string
	Branch  string
}

// Browse is one open file browser. The embedded browser is guarded by the
// session's mutex; use Do for every access.
type Browse struct {
	ID     string
	Owner  string
	Target Target

	mu       sync.Mutex
	browser  *filetree.Browser
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session's browser
func (b *Browse) Do(fn func(*filetree.Browser) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.browser)
}

func (b *Browse) touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

func (b *Browse) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// Store keeps the open browse sessions of all users
type Store struct {
	sessions map[string]*Browse
	logger   *logrus.Logger
	mu       sync.RWMutex
	now      func() time.Time
}

// NewStore creates an empty session store
func NewStore(logger *logrus.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Browse),
		logger:   logger,
		now:      time.Now,
	}
}

// Open builds a browser for paths and registers it for owner. Any session
// the owner already has on the same account and repository is replaced, so
// switching branch starts from a fresh tree.
func (s *Store) Open(owner string, target Target, paths []string) *Browse {
	browse := &Browse{
		ID:       uuid.NewString(),
		Owner:    owner,
		Target:   target,
		browser:  filetree.NewBrowser(paths),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.sessions {
		if existing.Owner == owner &&
			existing.Target.Account == target.Account &&
			existing.Target.Repo == target.Repo {
			delete(s.sessions, id)
			s.logger.Debugf("Replaced browse session %s", id)
		}
	}
	s.sessions[browse.ID] = browse
	s.logger.Infof("Opened browse session %s for %s/%s@%s", browse.ID, target.Account, target.Repo, target.Branch)
	return browse
}

// Get returns the session id of owner and marks it as used
func (s *Store) Get(id, owner string) (*Browse, error) {
	s.mu.RLock()
	browse, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || browse.Owner != owner {
		return nil, ErrSessionNotFound
	}
	browse.touch(s.now())
	return browse, nil
}

// Close removes the session id of owner
func (s *Store) Close(id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	browse, ok := s.sessions[id]
	if !ok || browse.Owner != owner {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Infof("Closed browse session %s", id)
	return nil
}

// CloseOwner removes every session of owner, e.g. on logout
func (s *Store) CloseOwner(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, browse := range s.sessions {
		if browse.Owner == owner {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Reap removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *Store) Reap(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, browse := range s.sessions {
		if browse.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Infof("Reaped %d idle browse sessions", removed)
	}
	return removed
}

// Len returns the number of open sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
