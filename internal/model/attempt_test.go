package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptStatusTerminal(t *testing.T) {
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusAbandoned.Terminal())
}

func TestAttemptExpired(t *testing.T) {
	started := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	attempt := TestAttempt{StartedAt: started, DurationMinutes: 30}

	assert.False(t, attempt.Expired(started.Add(29*time.Minute)))
	assert.True(t, attempt.Expired(started.Add(30*time.Minute)))
	assert.True(t, attempt.Expired(started.Add(time.Hour)))

	// Zero duration means no time limit.
	unlimited := TestAttempt{StartedAt: started}
	assert.False(t, unlimited.Expired(started.Add(240*time.Hour)))
}

func TestQuestionEligibleAt(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	q := Question{ValidFrom: from, ValidUntil: until}

	assert.True(t, q.EligibleAt(from))
	assert.True(t, q.EligibleAt(until))
	assert.True(t, q.EligibleAt(from.AddDate(0, 6, 0)))
	assert.False(t, q.EligibleAt(from.Add(-time.Second)))
	assert.False(t, q.EligibleAt(until.Add(time.Second)))
}

func TestDifficultyTierClamps(t *testing.T) {
	assert.Equal(t, TierMedium, TierEasy.Harder())
	assert.Equal(t, TierHard, TierMedium.Harder())
	assert.Equal(t, TierHard, TierHard.Harder())
	assert.Equal(t, TierMedium, TierHard.Easier())
	assert.Equal(t, TierEasy, TierMedium.Easier())
	assert.Equal(t, TierEasy, TierEasy.Easier())
}
