package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"luxetravel/entity"
)

// DecodeCredential extracts the subject claims and expiry from a bearer token.
// The backends sign their own tokens; the client only reads the claims, so the
// signature is deliberately not verified here.
func DecodeCredential(service entity.Service, token string) (entity.Credential, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return entity.Credential{}, fmt.Errorf("could not decode %s token: %w", service, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Credential{}, fmt.Errorf("unexpected claims type in %s token", service)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return entity.Credential{}, fmt.Errorf("%s token has no usable expiry claim", service)
	}

	cred := entity.Credential{
		Service:   service,
		Token:     token,
		ExpiresAt: exp.Time,
	}
	if id, ok := claims["id"].(float64); ok {
		cred.UserID = int(id)
	}
	if name, ok := claims["name"].(string); ok {
		cred.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		cred.Email = email
	}

	if cred.Expired(time.Now()) {
		return entity.Credential{}, fmt.Errorf("%s token already expired at %s", service, cred.ExpiresAt)
	}

	return cred, nil
}
