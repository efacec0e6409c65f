package scorehub

import (
	"GameNightApi/internal/assert"
	"testing"
	"time"
)

func scoreKey() LockKey {
	return LockKey{GameID: 1, TeamID: 5, Field: "score"}
}

func TestLockManagerAcquireRelease(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	ok, _ := lm.Acquire(scoreKey(), "admin_1", "admin")
	assert.True(t, ok)
	assert.True(t, lm.HasLock(scoreKey(), "admin_1"))

	ok, lockedBy := lm.Acquire(scoreKey(), "anon_2", "Player")
	assert.Equal(t, ok, false)
	assert.Equal(t, lockedBy, "admin")

	// Releasing someone else's lock is a no-op.
	assert.Equal(t, lm.Release(scoreKey(), "anon_2"), false)
	assert.True(t, lm.HasLock(scoreKey(), "admin_1"))

	assert.True(t, lm.Release(scoreKey(), "admin_1"))
	assert.Equal(t, lm.HasLock(scoreKey(), "admin_1"), false)

	// Releasing an unheld lock is also a no-op.
	assert.Equal(t, lm.Release(scoreKey(), "admin_1"), false)
}

func TestLockManagerSameHolderRefresh(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	now := time.Now()
	lm.now = func() time.Time { return now }

	ok, _ := lm.Acquire(scoreKey(), "admin_1", "admin")
	assert.True(t, ok)

	// Re-requesting refreshes the timestamp, keeping the lock alive.
	now = now.Add(4 * time.Minute)
	ok, _ = lm.Acquire(scoreKey(), "admin_1", "admin")
	assert.True(t, ok)

	now = now.Add(4 * time.Minute)
	ok, lockedBy := lm.Acquire(scoreKey(), "anon_2", "Player")
	assert.Equal(t, ok, false)
	assert.Equal(t, lockedBy, "admin")
}

func TestLockManagerExpiryOverride(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	now := time.Now()
	lm.now = func() time.Time { return now }

	ok, _ := lm.Acquire(scoreKey(), "admin_1", "admin")
	assert.True(t, ok)

	now = now.Add(DefaultLockTimeout + time.Second)
	ok, _ = lm.Acquire(scoreKey(), "anon_2", "Player")
	assert.True(t, ok)
	assert.True(t, lm.HasLock(scoreKey(), "anon_2"))
}

func TestLockManagerRoundNamespaces(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	round1 := LockKey{GameID: 1, RoundID: 1, TeamID: 5, Field: "score"}
	round2 := LockKey{GameID: 1, RoundID: 2, TeamID: 5, Field: "score"}

	ok, _ := lm.Acquire(round1, "admin_1", "admin")
	assert.True(t, ok)

	// Same team and field in another round is an independent lock.
	ok, _ = lm.Acquire(round2, "anon_2", "Player")
	assert.True(t, ok)
}

func TestLockManagerReleaseAllForUser(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	lm.Acquire(LockKey{GameID: 1, TeamID: 5, Field: "score"}, "anon_2", "Player")
	lm.Acquire(LockKey{GameID: 1, TeamID: 6, Field: "score"}, "anon_2", "Player")
	lm.Acquire(LockKey{GameID: 1, TeamID: 7, Field: "score"}, "admin_1", "admin")

	released := lm.ReleaseAllForUser("anon_2")
	assert.Equal(t, len(released), 2)
	assert.Equal(t, len(lm.LocksForGame(1)), 1)
	assert.True(t, lm.HasLock(LockKey{GameID: 1, TeamID: 7, Field: "score"}, "admin_1"))
}

func TestLockManagerCleanupExpired(t *testing.T) {
	lm := NewLockManager(DefaultLockTimeout)

	now := time.Now()
	lm.now = func() time.Time { return now }

	lm.Acquire(LockKey{GameID: 1, TeamID: 5, Field: "score"}, "anon_2", "Player")
	now = now.Add(2 * time.Minute)
	lm.Acquire(LockKey{GameID: 1, TeamID: 6, Field: "score"}, "anon_3", "Player")

	now = now.Add(DefaultLockTimeout - time.Minute)
	swept := lm.CleanupExpired()
	assert.Equal(t, len(swept), 1)
	assert.Equal(t, swept[0], LockKey{GameID: 1, TeamID: 5, Field: "score"})
	assert.Equal(t, len(lm.LocksForGame(1)), 1)
}
