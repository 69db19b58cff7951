// Package session holds the per-user staging area between "images received"
// and "format chosen".
package session

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// DefaultTTL bounds how long an abandoned session keeps its staging state.
// Files on disk outlive eviction and are reclaimed by the cleanup janitor.
const DefaultTTL = 3600 * time.Second

type userSession struct {
	pending     []types.StagedImage
	statusMsgID int
}

// Store keeps one staging session per user. Different users never contend
// beyond the map access; all per-session mutation happens under the store
// mutex, so concurrent delivery for the same chat stays safe even without
// the transport's single-flight guarantee.
type Store struct {
	mu       sync.RWMutex
	sessions *ttlworker.Cache[int64, *userSession]
}

// NewStore creates a session store whose idle sessions expire after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: ttlworker.NewCache[int64, *userSession](ttl),
	}
}

// Add appends a staged image to the user's pending list, creating the
// session when absent. Arrival order is preserved.
func (s *Store) Add(userID int64, img types.StagedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Get(userID)
	if sess == nil {
		sess = &userSession{}
	}
	sess.pending = append(sess.pending, img)
	s.sessions.Set(userID, sess)
}

// Snapshot returns a copy of the user's pending images for read-only use.
func (s *Store) Snapshot(userID int64) []types.StagedImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sessions.Get(userID)
	if sess == nil || len(sess.pending) == 0 {
		return nil
	}
	out := make([]types.StagedImage, len(sess.pending))
	copy(out, sess.pending)
	return out
}

// Count returns how many images are currently staged for the user.
func (s *Store) Count(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sessions.Get(userID)
	if sess == nil {
		return 0
	}
	return len(sess.pending)
}

// TakeBatch atomically drains the pending list, transferring ownership of
// the staged temp files to the caller. A second concurrent take gets nil,
// which keeps a double-pressed convert button from running twice.
func (s *Store) TakeBatch(userID int64) []types.StagedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Get(userID)
	if sess == nil || len(sess.pending) == 0 {
		return nil
	}
	batch := sess.pending
	sess.pending = nil
	s.sessions.Set(userID, sess)
	return batch
}

// Clear empties the session and resets the status handle. Staged files the
// session still owns are deleted. Must be called after every terminal batch
// outcome.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Get(userID)
	if sess == nil {
		return
	}
	for _, img := range sess.pending {
		tool.RemoveQuiet(img.Path)
	}
	s.sessions.Delete(userID)
}

// StatusMessage returns the id of the last status message shown to the
// user, 0 when none.
func (s *Store) StatusMessage(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.sessions.Get(userID)
	if sess == nil {
		return 0
	}
	return sess.statusMsgID
}

// SetStatusMessage records the status message handle for later edits.
func (s *Store) SetStatusMessage(userID int64, msgID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Get(userID)
	if sess == nil {
		sess = &userSession{}
	}
	sess.statusMsgID = msgID
	s.sessions.Set(userID, sess)
}
