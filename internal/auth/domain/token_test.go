package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenSettings_Validate(t *testing.T) {
	valid := TokenSettings{Secret: "s", Issuer: "identity", Audience: "clients", LifetimeMinutes: 1}

	tests := []struct {
		name    string
		modify  func(s *TokenSettings)
		wantErr error
	}{
		{name: "valid", modify: func(*TokenSettings) {}},
		{name: "blank secret", modify: func(s *TokenSettings) { s.Secret = " " }, wantErr: ErrMissingSecret},
		{name: "empty issuer", modify: func(s *TokenSettings) { s.Issuer = "" }, wantErr: ErrMissingIssuer},
		{name: "blank audience", modify: func(s *TokenSettings) { s.Audience = "\t" }, wantErr: ErrMissingAudience},
		{name: "zero lifetime", modify: func(s *TokenSettings) { s.LifetimeMinutes = 0 }, wantErr: ErrInvalidLifetime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid
			tt.modify(&settings)

			err := settings.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestTokenSettings_Lifetime(t *testing.T) {
	assert.Equal(t, 90*time.Minute, TokenSettings{LifetimeMinutes: 90}.Lifetime())
}

func TestClaimsPrincipal_IsInRole(t *testing.T) {
	p := &ClaimsPrincipal{Principal: Principal{Roles: []string{"Admin", "User"}}}

	assert.True(t, p.IsInRole("admin"))
	assert.True(t, p.IsInRole("Developer", "USER"))
	assert.False(t, p.IsInRole("Developer"))
	assert.False(t, (&ClaimsPrincipal{}).IsInRole("Admin"))
}
