package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStorageMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StorageMode
		wantErr bool
	}{
		{name: "remote", input: "remote", want: ModeRemote},
		{name: "local", input: "local", want: ModeLocal},
		{name: "case insensitive", input: "REMOTE", want: ModeRemote},
		{name: "unknown mode", input: "hybrid", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStorageMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemberRole_IsValid(t *testing.T) {
	assert.True(t, RoleMember.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, MemberRole("superuser").IsValid())
}

func TestAuthError_WrapsCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewAuthError(ErrCodeBackendUnreachable, "login failed", cause)

	assert.Equal(t, "login failed: socket closed", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewAuthError(ErrCodeValidation, "invalid login request", nil)
	assert.Equal(t, "invalid login request", bare.Error())
}

func TestSessionSnapshot_IsLoading(t *testing.T) {
	assert.True(t, SessionSnapshot{State: SessionPending}.IsLoading())
	assert.False(t, SessionSnapshot{State: SessionAuthenticated}.IsLoading())
	assert.False(t, SessionSnapshot{State: SessionUnknown}.IsLoading())
}
