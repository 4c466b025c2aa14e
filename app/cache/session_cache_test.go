package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"member-portal/app/domain"
)

func testIdentity(email string) *domain.Identity {
	now := time.Now()
	return &domain.Identity{
		ID:        uuid.New(),
		Email:     email,
		Name:      "Test Member",
		Role:      domain.RoleMember,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionCache_InitialStateIsUnknown(t *testing.T) {
	c := NewSessionCache()

	snap := c.Read()
	assert.Equal(t, domain.SessionUnknown, snap.State)
	assert.Nil(t, snap.Identity)
}

func TestSessionCache_WriteIsWholeValueReplacement(t *testing.T) {
	c := NewSessionCache()

	userA := testIdentity("userA@x.com")
	userB := testIdentity("userB@x.com")

	c.Write(userA)
	snap := c.Read()
	require.Equal(t, domain.SessionAuthenticated, snap.State)
	assert.Equal(t, "userA@x.com", snap.Identity.Email)

	c.Write(userB)
	snap = c.Read()
	require.Equal(t, domain.SessionAuthenticated, snap.State)
	assert.Equal(t, "userB@x.com", snap.Identity.Email)
	assert.Equal(t, userB.ID, snap.Identity.ID, "no field of the previous identity may survive a write")
}

func TestSessionCache_InvalidateIsDistinctFromAbsent(t *testing.T) {
	c := NewSessionCache()

	c.WriteAbsent()
	assert.Equal(t, domain.SessionUnauthenticated, c.Read().State, "WriteAbsent is a cached negative")

	c.Write(testIdentity("userA@x.com"))
	c.Invalidate()
	assert.Equal(t, domain.SessionUnknown, c.Read().State, "Invalidate removes the entry entirely")
	assert.Nil(t, c.Read().Identity)
}

func TestSessionCache_PendingReportsLoading(t *testing.T) {
	c := NewSessionCache()

	c.SetPending()
	snap := c.Read()
	assert.Equal(t, domain.SessionPending, snap.State)
	assert.True(t, snap.IsLoading())
}

func TestSessionCache_SubscribersNotifiedSynchronously(t *testing.T) {
	c := NewSessionCache()

	var seen []domain.SessionState
	unsubscribe := c.Subscribe(func(snap domain.SessionSnapshot) {
		seen = append(seen, snap.State)
	})

	c.SetPending()
	c.Write(testIdentity("userA@x.com"))
	c.Invalidate()

	require.Equal(t, []domain.SessionState{
		domain.SessionPending,
		domain.SessionAuthenticated,
		domain.SessionUnknown,
	}, seen)

	unsubscribe()
	c.WriteAbsent()
	assert.Len(t, seen, 3, "no notifications after unsubscribe")
}

func TestSessionCache_SubscriberMayReadDuringNotify(t *testing.T) {
	c := NewSessionCache()

	var got domain.SessionSnapshot
	c.Subscribe(func(domain.SessionSnapshot) {
		got = c.Read()
	})

	c.Write(testIdentity("userA@x.com"))
	assert.Equal(t, domain.SessionAuthenticated, got.State)
}
