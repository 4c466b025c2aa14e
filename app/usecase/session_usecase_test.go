package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"member-portal/app/cache"
	"member-portal/app/domain"
	mock_port "member-portal/app/mocks"
	"member-portal/app/token"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func expiredToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func identityFor(email, name string) *domain.Identity {
	now := time.Now()
	return &domain.Identity{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      domain.RoleMember,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestUsecase(t *testing.T) (*SessionUsecase, *mock_port.MockSessionAdapter, *token.Manager, *cache.SessionCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	adapter := mock_port.NewMockSessionAdapter(ctrl)
	tokens := token.NewManager()
	sessionCache := cache.NewSessionCache()
	uc := NewSessionUsecase(tokens, sessionCache, adapter, testLogger())
	return uc, adapter, tokens, sessionCache
}

func TestSessionUsecase_Login(t *testing.T) {
	userA := identityFor("userA@x.com", "User A")

	tests := []struct {
		name       string
		creds      domain.Credentials
		setupMocks func(*testing.T, *mock_port.MockSessionAdapter)
		wantErr    error
		wantState  domain.SessionState
		wantToken  bool
	}{
		{
			name:  "successful login installs identity and credential",
			creds: domain.Credentials{Email: "userA@x.com", Password: "x"},
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Login(gomock.Any(), domain.Credentials{Email: "userA@x.com", Password: "x"}).
					Return(&domain.LoginResult{Token: liveToken(t, "userA"), Identity: userA}, nil)
				adapter.EXPECT().Mode().Return(domain.ModeRemote).AnyTimes()
			},
			wantState: domain.SessionAuthenticated,
			wantToken: true,
		},
		{
			name:  "invalid credentials leave token and cache untouched",
			creds: domain.Credentials{Email: "userA@x.com", Password: "wrong"},
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Login(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrInvalidCredentials)
			},
			wantErr:   domain.ErrInvalidCredentials,
			wantState: domain.SessionUnknown,
		},
		{
			name:  "unreachable backend leaves token and cache untouched",
			creds: domain.Credentials{Email: "userA@x.com", Password: "x"},
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Login(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrBackendUnreachable)
			},
			wantErr:   domain.ErrBackendUnreachable,
			wantState: domain.SessionUnknown,
		},
		{
			name:       "invalid email rejected before any adapter call",
			creds:      domain.Credentials{Email: "not-an-email", Password: "x"},
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {},
			wantState:  domain.SessionUnknown,
		},
		{
			name:       "missing password rejected before any adapter call",
			creds:      domain.Credentials{Email: "userA@x.com"},
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {},
			wantState:  domain.SessionUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, adapter, tokens, sessionCache := newTestUsecase(t)
			tt.setupMocks(t, adapter)

			identity, err := uc.Login(context.Background(), tt.creds)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
			} else if tt.wantToken {
				require.NoError(t, err)
				require.NotNil(t, identity)
			} else {
				// Validation failures carry an AuthError, not a sentinel
				require.Error(t, err)
				var authErr *domain.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, domain.ErrCodeValidation, authErr.Code)
			}

			assert.Equal(t, tt.wantState, sessionCache.Read().State)
			_, hasToken := tokens.Token()
			assert.Equal(t, tt.wantToken, hasToken)
		})
	}
}

func TestSessionUsecase_Login_CacheWrittenWithIdentityBeforeTokenVisible(t *testing.T) {
	uc, adapter, tokens, sessionCache := newTestUsecase(t)

	userA := identityFor("userA@x.com", "User A")
	adapter.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&domain.LoginResult{Token: liveToken(t, "userA"), Identity: userA}, nil)
	adapter.EXPECT().Mode().Return(domain.ModeRemote).AnyTimes()

	// Every cache notification during login must already carry the new
	// identity; an observer must never see the credential installed while
	// the cache still reads absent or stale.
	var states []domain.SessionState
	sessionCache.Subscribe(func(snap domain.SessionSnapshot) {
		states = append(states, snap.State)
		if snap.State == domain.SessionAuthenticated {
			assert.Equal(t, "userA@x.com", snap.Identity.Email)
		}
	})

	_, err := uc.Login(context.Background(), domain.Credentials{Email: "userA@x.com", Password: "x"})
	require.NoError(t, err)

	require.Equal(t, []domain.SessionState{domain.SessionAuthenticated}, states)
	_, ok := tokens.Token()
	assert.True(t, ok)
}

func TestSessionUsecase_ReadSession(t *testing.T) {
	userA := identityFor("userA@x.com", "User A")

	tests := []struct {
		name          string
		seedToken     func(*testing.T) string
		setupMocks    func(*testing.T, *mock_port.MockSessionAdapter)
		wantState     domain.SessionState
		wantTokenHeld bool
	}{
		{
			name:       "no credential resolves unauthenticated without a backend call",
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {},
			wantState:  domain.SessionUnauthenticated,
		},
		{
			name:      "locally expired credential skips the backend entirely",
			seedToken: func(t *testing.T) string { return expiredToken(t, "userA") },
			// No Verify expectation: the mock controller fails the test if
			// the adapter is reached at all.
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {},
			wantState:  domain.SessionUnauthenticated,
		},
		{
			name:      "malformed credential treated as expired",
			seedToken: func(t *testing.T) string { return "garbage" },
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {},
			wantState: domain.SessionUnauthenticated,
		},
		{
			name:      "live credential verifies to authenticated",
			seedToken: func(t *testing.T) string { return liveToken(t, "userA") },
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Verify(gomock.Any(), gomock.Any()).
					Return(userA, nil)
			},
			wantState:     domain.SessionAuthenticated,
			wantTokenHeld: true,
		},
		{
			name:      "backend not-authenticated clears credential",
			seedToken: func(t *testing.T) string { return liveToken(t, "userA") },
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Verify(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrNotAuthenticated)
			},
			wantState: domain.SessionUnauthenticated,
		},
		{
			name:      "transport failure demotes silently instead of erroring",
			seedToken: func(t *testing.T) string { return liveToken(t, "userA") },
			setupMocks: func(t *testing.T, adapter *mock_port.MockSessionAdapter) {
				adapter.EXPECT().
					Verify(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrBackendUnreachable)
			},
			wantState: domain.SessionUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, adapter, tokens, _ := newTestUsecase(t)
			if tt.seedToken != nil {
				tokens.SetToken(tt.seedToken(t))
			}
			tt.setupMocks(t, adapter)

			snap, err := uc.ReadSession(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, snap.State)

			_, held := tokens.Token()
			assert.Equal(t, tt.wantTokenHeld, held)
		})
	}
}

func TestSessionUsecase_StaleVerifyResultIsDiscarded(t *testing.T) {
	uc, adapter, tokens, sessionCache := newTestUsecase(t)

	userA := identityFor("userA@x.com", "User A")
	tokenA := liveToken(t, "userA")
	tokens.SetToken(tokenA)

	verifyStarted := make(chan struct{})
	releaseVerify := make(chan struct{})

	adapter.EXPECT().
		Verify(gomock.Any(), tokenA).
		DoAndReturn(func(ctx context.Context, tok string) (*domain.Identity, error) {
			close(verifyStarted)
			<-releaseVerify
			return userA, nil
		})
	adapter.EXPECT().Logout(gomock.Any(), tokenA).Return(nil)

	done := make(chan domain.SessionSnapshot, 1)
	go func() {
		snap, _ := uc.ReadSession(context.Background())
		done <- snap
	}()

	// Logout lands while the verify is still in flight.
	<-verifyStarted
	require.NoError(t, uc.Logout(context.Background()))

	// The late identity must not repopulate the invalidated cache.
	close(releaseVerify)
	snap := <-done

	assert.Equal(t, domain.SessionUnknown, snap.State)
	assert.Equal(t, domain.SessionUnknown, sessionCache.Read().State)
	_, held := tokens.Token()
	assert.False(t, held)
}

func TestSessionUsecase_LogoutIsIdempotent(t *testing.T) {
	uc, adapter, tokens, sessionCache := newTestUsecase(t)

	userA := identityFor("userA@x.com", "User A")
	tokenA := liveToken(t, "userA")

	adapter.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(&domain.LoginResult{Token: tokenA, Identity: userA}, nil)
	adapter.EXPECT().Mode().Return(domain.ModeRemote).AnyTimes()
	// Exactly one backend logout: the second call has no credential to revoke.
	adapter.EXPECT().Logout(gomock.Any(), tokenA).Return(nil)

	_, err := uc.Login(context.Background(), domain.Credentials{Email: "userA@x.com", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background()))
	assert.Equal(t, domain.SessionUnknown, sessionCache.Read().State)

	require.NoError(t, uc.Logout(context.Background()))
	assert.Equal(t, domain.SessionUnknown, sessionCache.Read().State)
	_, held := tokens.Token()
	assert.False(t, held)
}

func TestSessionUsecase_LogoutSucceedsWhenBackendFails(t *testing.T) {
	uc, adapter, tokens, sessionCache := newTestUsecase(t)

	tokenA := liveToken(t, "userA")
	tokens.SetToken(tokenA)

	adapter.EXPECT().
		Logout(gomock.Any(), tokenA).
		Return(domain.ErrBackendUnreachable)

	// Best-effort: the backend failure is swallowed and local state cleared.
	require.NoError(t, uc.Logout(context.Background()))
	_, held := tokens.Token()
	assert.False(t, held)
	assert.Equal(t, domain.SessionUnknown, sessionCache.Read().State)
}

func TestSessionUsecase_AccountSwitchLeavesNoResidue(t *testing.T) {
	uc, adapter, tokens, sessionCache := newTestUsecase(t)

	userA := identityFor("userA@x.com", "User A")
	userB := identityFor("userB@x.com", "User B")
	tokenA := liveToken(t, "userA")
	tokenB := liveToken(t, "userB")

	adapter.EXPECT().
		Login(gomock.Any(), domain.Credentials{Email: "userA@x.com", Password: "x"}).
		Return(&domain.LoginResult{Token: tokenA, Identity: userA}, nil)
	adapter.EXPECT().Logout(gomock.Any(), tokenA).Return(nil)
	adapter.EXPECT().
		Login(gomock.Any(), domain.Credentials{Email: "userB@x.com", Password: "y"}).
		Return(&domain.LoginResult{Token: tokenB, Identity: userB}, nil)
	adapter.EXPECT().Mode().Return(domain.ModeRemote).AnyTimes()

	// Record every observable tick of the shared cache.
	var ticks []domain.SessionSnapshot
	sessionCache.Subscribe(func(snap domain.SessionSnapshot) {
		ticks = append(ticks, snap)
	})

	// login(A)
	_, err := uc.Login(context.Background(), domain.Credentials{Email: "userA@x.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "userA@x.com", sessionCache.Read().Identity.Email)

	// logout: cache is empty (not a cached negative) and the token is gone
	require.NoError(t, uc.Logout(context.Background()))
	assert.Equal(t, domain.SessionUnknown, sessionCache.Read().State)
	_, held := tokens.Token()
	assert.False(t, held)

	// login(B): cache reads userB and explicitly not userA
	_, err = uc.Login(context.Background(), domain.Credentials{Email: "userB@x.com", Password: "y"})
	require.NoError(t, err)
	got := sessionCache.Read()
	require.Equal(t, domain.SessionAuthenticated, got.State)
	assert.Equal(t, "userB@x.com", got.Identity.Email)
	assert.NotEqual(t, userA.ID, got.Identity.ID)

	// At no observable tick did A's identity survive the logout, and B's
	// identity never appeared before the invalidation.
	require.Equal(t, 3, len(ticks))
	assert.Equal(t, "userA@x.com", ticks[0].Identity.Email)
	assert.Equal(t, domain.SessionUnknown, ticks[1].State)
	assert.Nil(t, ticks[1].Identity)
	assert.Equal(t, "userB@x.com", ticks[2].Identity.Email)
}
