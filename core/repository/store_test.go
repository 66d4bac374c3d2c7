package repository

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"vigil/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store := Open(filepath.Join(t.TempDir(), "vigil-test.db"))
	require.True(t, store.Enabled(), "expected durable store for test database")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenFallsBackWhenDatabaseUnavailable(t *testing.T) {
	store := Open("/nonexistent-dir/definitely/missing/vigil.db")
	defer store.Close()

	assert.False(t, store.Enabled())

	// Saves and queries must keep working against the in-memory fallback.
	sample := &models.MetricSample{CPUPercent: 10, MemoryPercent: 20, DiskPercent: 30,
		Status: models.StatusHealthy, Timestamp: time.Now().UTC()}
	require.NoError(t, store.Metrics.Create(sample))
	assert.NotZero(t, sample.ID)

	history, err := store.Metrics.History(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 10.0, history[0].CPUPercent)
}

func TestMetricHistoryChronological(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sample := &models.MetricSample{
			CPUPercent:    float64(i),
			MemoryPercent: 50,
			DiskPercent:   40,
			Status:        models.StatusHealthy,
			Timestamp:     base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Metrics.Create(sample))
	}

	history, err := store.Metrics.History(3)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Newest 3, reordered oldest first.
	assert.Equal(t, 2.0, history[0].CPUPercent)
	assert.Equal(t, 3.0, history[1].CPUPercent)
	assert.Equal(t, 4.0, history[2].CPUPercent)

	count, err := store.Metrics.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestEventFilterByType(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().UTC()
	events := []*models.SystemEvent{
		{EventType: "remediation", Description: "restart", Severity: models.SeverityCritical, Timestamp: now},
		{EventType: "auth_lockout", Description: "lock", Severity: models.SeverityWarning, Timestamp: now.Add(time.Second)},
		{EventType: "remediation", Description: "restart again", Severity: models.SeverityCritical, Timestamp: now.Add(2 * time.Second)},
	}
	for _, e := range events {
		require.NoError(t, store.Events.Create(e))
	}

	all, err := store.Events.Recent("", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	remediations, err := store.Events.Recent("remediation", 10)
	require.NoError(t, err)
	require.Len(t, remediations, 2)
	assert.Equal(t, "restart", remediations[0].Description)
	assert.Equal(t, "restart again", remediations[1].Description)
}

func TestUserDuplicateEmail(t *testing.T) {
	store := openTestStore(t)

	u := &models.User{Email: "a@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))
	assert.NotZero(t, u.ID)

	dup := &models.User{Email: "a@example.com", PasswordHash: "y", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, store.Users.Create(dup), ErrDuplicateEmail)
}

func TestRecordFailedAttemptConcurrent(t *testing.T) {
	store := openTestStore(t)

	u := &models.User{Email: "c@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	const attempts = 4 // stays below the lockout threshold of 10
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Users.RecordFailedAttempt(u.ID, 10, time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, attempts, got.FailedLoginCount, "no failed attempt may be lost")
	assert.Nil(t, got.LockedUntil)
}

func TestRecordFailedAttemptLocksExactlyOnce(t *testing.T) {
	store := openTestStore(t)

	u := &models.User{Email: "d@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	lockouts := 0
	for i := 0; i < 5; i++ {
		locked, err := store.Users.RecordFailedAttempt(u.ID, 5, 15*time.Minute)
		require.NoError(t, err)
		if locked {
			lockouts++
		}
	}
	assert.Equal(t, 1, lockouts)

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, got.Locked(time.Now().UTC()))

	require.NoError(t, store.Users.ResetFailedAttempts(u.ID))
	got, err = store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedUntil)
	assert.Zero(t, got.FailedLoginCount)
}

func TestMemoryRingBounded(t *testing.T) {
	store := OpenDegraded()

	for i := 0; i < RingCapacity+25; i++ {
		sample := &models.MetricSample{
			CPUPercent: float64(i % 100),
			Status:     models.StatusHealthy,
			Timestamp:  time.Now().UTC(),
		}
		require.NoError(t, store.Metrics.Create(sample))
	}

	count, err := store.Metrics.Count()
	require.NoError(t, err)
	assert.EqualValues(t, RingCapacity, count)

	history, err := store.Metrics.History(2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Oldest entries were evicted; the tail is the newest two, oldest first.
	assert.Equal(t, float64((RingCapacity+23)%100), history[0].CPUPercent)
	assert.Equal(t, float64((RingCapacity+24)%100), history[1].CPUPercent)
}

func TestMemoryUserStore(t *testing.T) {
	store := OpenDegraded()

	u := &models.User{Email: "m@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	dup := &models.User{Email: "m@example.com", PasswordHash: "y"}
	assert.ErrorIs(t, store.Users.Create(dup), ErrDuplicateEmail)

	_, err := store.Users.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Users.RecordFailedAttempt(u.ID, 10, time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.FailedLoginCount)
}
