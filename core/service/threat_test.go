package service

import (
	"sync"
	"testing"
	"time"

	"vigil/core/models"
	"vigil/core/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreValue(t *testing.T) {
	tests := []struct {
		cpu, mem float64
		want     int
	}{
		{0, 0, 0},
		{50, 50, 50},
		{79, 80, 80}, // 79.5 rounds up
		{33.4, 33.4, 33},
		{100, 100, 100},
		{150, 150, 100}, // clamped
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreValue(tt.cpu, tt.mem), "cpu=%v mem=%v", tt.cpu, tt.mem)
	}
}

func TestLevelForBands(t *testing.T) {
	assert.Equal(t, models.ThreatLow, LevelFor(0))
	assert.Equal(t, models.ThreatLow, LevelFor(49))
	assert.Equal(t, models.ThreatMedium, LevelFor(50))
	assert.Equal(t, models.ThreatMedium, LevelFor(79))
	assert.Equal(t, models.ThreatHigh, LevelFor(80))
	assert.Equal(t, models.ThreatHigh, LevelFor(100))
}

func TestScoreFromSample(t *testing.T) {
	ts := NewThreatService(nil, nil, 5, time.Minute)
	score := ts.Score(models.MetricSample{CPUPercent: 90, MemoryPercent: 80})
	assert.Equal(t, 85, score.Score)
	assert.Equal(t, models.ThreatHigh, score.Level)
	assert.False(t, score.Timestamp.IsZero())
}

func TestRecordFailedLoginLockoutEventOnce(t *testing.T) {
	store := repository.OpenDegraded()
	ts := NewThreatService(store.Users, store.Events, 5, 15*time.Minute)

	u := &models.User{Email: "lock@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	for i := 0; i < 5; i++ {
		require.NoError(t, ts.RecordFailedLogin(u.ID))
	}

	events, err := store.Events.Recent("auth_lockout", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1, "exactly one lockout event per transition")
	assert.Equal(t, models.SeverityWarning, events[0].Severity)

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked(time.Now().UTC()))
}

func TestRecordFailedLoginConcurrent(t *testing.T) {
	store := repository.OpenDegraded()
	ts := NewThreatService(store.Users, store.Events, 100, time.Minute)

	u := &models.User{Email: "conc@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	const attempts = 20
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ts.RecordFailedLogin(u.ID))
		}()
	}
	wg.Wait()

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, attempts, got.FailedLoginCount)
}

func TestRecordSuccessfulLoginResets(t *testing.T) {
	store := repository.OpenDegraded()
	ts := NewThreatService(store.Users, store.Events, 5, time.Minute)

	u := &models.User{Email: "reset@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Users.Create(u))

	require.NoError(t, ts.RecordFailedLogin(u.ID))
	require.NoError(t, ts.RecordFailedLogin(u.ID))
	require.NoError(t, ts.RecordSuccessfulLogin(u.ID))

	got, err := store.Users.GetByID(u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.FailedLoginCount)
}
