package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	authDomain "github.com/allisson/identity/internal/auth/domain"
	authService "github.com/allisson/identity/internal/auth/service"
)

// RunInspectToken prints the claims of a signed token.
//
// By default only the signature is checked, as the refresh flow does, so
// expired tokens can be inspected. With strict the bearer rules apply: issuer,
// audience and expiry are verified too.
func RunInspectToken(
	validator authService.TokenValidator,
	token string,
	strict bool,
	format string,
	io IOTuple,
) error {
	var principal *authDomain.ClaimsPrincipal
	if strict {
		p, err := validator.Validate(token)
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}
		principal = p
	} else {
		principal = validator.PrincipalFromExpiredToken(token)
		if principal == nil {
			return errors.New("token rejected: invalid signature or malformed token")
		}
	}

	if format == "json" {
		return writeJSON(io.Writer, map[string]any{
			"user_id":    principal.ID,
			"user_name":  principal.UserName,
			"roles":      principal.Roles,
			"token_id":   principal.TokenID,
			"issuer":     principal.Issuer,
			"audience":   principal.Audience,
			"issued_at":  principal.IssuedAt.UTC().Format(time.RFC3339),
			"expires_at": principal.ExpiresAt.UTC().Format(time.RFC3339),
			"expired":    principal.ExpiresAt.Before(time.Now()),
		})
	}

	_, _ = fmt.Fprintf(io.Writer, "User ID:    %s\n", principal.ID)
	_, _ = fmt.Fprintf(io.Writer, "User name:  %s\n", principal.UserName)
	_, _ = fmt.Fprintf(io.Writer, "Roles:      %s\n", strings.Join(principal.Roles, ", "))
	_, _ = fmt.Fprintf(io.Writer, "Token ID:   %s\n", principal.TokenID)
	_, _ = fmt.Fprintf(io.Writer, "Issuer:     %s\n", principal.Issuer)
	_, _ = fmt.Fprintf(io.Writer, "Audience:   %s\n", strings.Join(principal.Audience, ", "))
	_, _ = fmt.Fprintf(io.Writer, "Issued at:  %s\n", principal.IssuedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(io.Writer, "Expires at: %s\n", principal.ExpiresAt.UTC().Format(time.RFC3339))
	if principal.ExpiresAt.Before(time.Now()) {
		_, _ = fmt.Fprintln(io.Writer, "Status:     expired")
	}
	return nil
}
