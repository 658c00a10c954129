package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(ttl time.Duration) *Sessions {
	return NewSessions(ttl, testMetrics(), func() *View {
		return newTestView(&fakeBackend{})
	})
}

func TestSessionsGet(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesSessionForUnknownID", func(t *testing.T) {
		s := newTestSessions(time.Hour)

		for _, id := range []string{"", "not-a-uuid", uuid.NewString()} {
			v, newID, created := s.Get(ctx, id)
			require.NotNil(t, v)
			assert.True(t, created)
			_, err := uuid.Parse(newID)
			assert.NoError(t, err)
			assert.NotEqual(t, id, newID)
		}
		assert.Equal(t, 3, s.Len())
	})

	t.Run("ReturnsSameView", func(t *testing.T) {
		s := newTestSessions(time.Hour)

		v1, id, _ := s.Get(ctx, "")
		v2, id2, created := s.Get(ctx, id)

		assert.Same(t, v1, v2)
		assert.Equal(t, id, id2)
		assert.False(t, created)
	})

	t.Run("SessionsAreIsolated", func(t *testing.T) {
		s := newTestSessions(time.Hour)

		v1, _, _ := s.Get(ctx, "")
		v2, _, _ := s.Get(ctx, "")
		v1.SelectCategory(ctx, domain.CategoryKids)

		assert.Equal(t, domain.CategoryKids, v1.Snapshot().Category)
		assert.Equal(t, domain.CategoryAll, v2.Snapshot().Category)
	})

	t.Run("EvictsIdleSessions", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s := newTestSessions(10 * time.Minute)
		s.now = func() time.Time { return now }

		_, stale, _ := s.Get(ctx, "")
		now = now.Add(6 * time.Minute)
		_, fresh, _ := s.Get(ctx, "")
		now = now.Add(6 * time.Minute)

		_, id, created := s.Get(ctx, fresh)
		assert.False(t, created)
		assert.Equal(t, fresh, id)

		_, id, created = s.Get(ctx, stale)
		assert.True(t, created)
		assert.NotEqual(t, stale, id)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("ExpiresBetweenSweeps", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		s := newTestSessions(time.Minute)
		s.now = func() time.Time { return now }

		stale, staleID, _ := s.Get(ctx, "")
		// Sweeps here, too early to evict the first session
		now = now.Add(40 * time.Second)
		s.Get(ctx, "")

		now = now.Add(20500 * time.Millisecond)
		v, id, created := s.Get(ctx, staleID)

		assert.True(t, created)
		assert.NotEqual(t, staleID, id)
		assert.NotSame(t, stale, v)
		assert.Equal(t, 2, s.Len())
	})
}

func TestSessionsClose(t *testing.T) {
	s := newTestSessions(time.Hour)
	s.Get(context.Background(), "")
	s.Get(context.Background(), "")

	s.Close(context.Background())

	assert.Zero(t, s.Len())
}
