package scorehub

import (
	"sync"
	"time"
)

// LockKey identifies one editable field. RoundID is 0 for games without
// rounds, so independent rounds never share a lock namespace.
type LockKey struct {
	GameID  int64
	RoundID int64
	TeamID  int64
	Field   string
}

type lockInfo struct {
	userID      string
	displayName string
	lockedAt    time.Time
}

// LockView is the wire-facing shape of one active lock, sent in game_state
// payloads so late joiners see which fields are held.
type LockView struct {
	TeamID      int64  `json:"team_id"`
	RoundID     int64  `json:"round_id,omitempty"`
	Field       string `json:"field"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// LockManager owns the edit-lock table for all live games. The hub run loop
// already serializes requests per game, but the manager carries its own
// mutex so HTTP handlers and the expiry sweep can read it safely too.
type LockManager struct {
	mu      sync.Mutex
	locks   map[LockKey]lockInfo
	timeout time.Duration
	now     func() time.Time
}

func NewLockManager(timeout time.Duration) *LockManager {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &LockManager{
		locks:   make(map[LockKey]lockInfo),
		timeout: timeout,
		now:     time.Now,
	}
}

// Acquire attempts to take the lock for userID. A holder re-requesting its
// own lock succeeds and refreshes the timestamp. A lock whose holder has
// gone quiet past the timeout can be taken over. On denial the current
// holder's display name is returned.
func (lm *LockManager) Acquire(key LockKey, userID, displayName string) (bool, string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if existing, ok := lm.locks[key]; ok {
		if existing.userID == userID {
			existing.lockedAt = lm.now()
			lm.locks[key] = existing
			return true, ""
		}
		if lm.now().Sub(existing.lockedAt) <= lm.timeout {
			return false, existing.displayName
		}
		// Expired: fall through and take over.
	}

	lm.locks[key] = lockInfo{
		userID:      userID,
		displayName: displayName,
		lockedAt:    lm.now(),
	}
	return true, ""
}

// Release removes the lock only when userID holds it. Releasing a lock held
// by someone else (or not held at all) is a no-op returning false.
func (lm *LockManager) Release(key LockKey, userID string) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if existing, ok := lm.locks[key]; ok && existing.userID == userID {
		delete(lm.locks, key)
		return true
	}
	return false
}

// HasLock reports whether userID currently holds the lock.
func (lm *LockManager) HasLock(key LockKey, userID string) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	existing, ok := lm.locks[key]
	return ok && existing.userID == userID
}

// ReleaseAllForUser drops every lock held by a disconnecting session and
// returns the released keys so the hub can broadcast field_unlocked for
// each. Skipping this leaves phantom locks on every other client.
func (lm *LockManager) ReleaseAllForUser(userID string) []LockKey {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var released []LockKey
	for key, info := range lm.locks {
		if info.userID == userID {
			delete(lm.locks, key)
			released = append(released, key)
		}
	}
	return released
}

// LocksForGame lists the active locks for one game across all rounds.
func (lm *LockManager) LocksForGame(gameID int64) []LockView {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	views := make([]LockView, 0)
	for key, info := range lm.locks {
		if key.GameID == gameID {
			views = append(views, LockView{
				TeamID:      key.TeamID,
				RoundID:     key.RoundID,
				Field:       key.Field,
				UserID:      info.userID,
				DisplayName: info.displayName,
			})
		}
	}
	return views
}

// CleanupExpired removes locks past the timeout and returns the keys that
// went, so the caller can tell the room those fields are free again.
func (lm *LockManager) CleanupExpired() []LockKey {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	cleaned := make([]LockKey, 0)
	for key, info := range lm.locks {
		if lm.now().Sub(info.lockedAt) > lm.timeout {
			delete(lm.locks, key)
			cleaned = append(cleaned, key)
		}
	}
	return cleaned
}
