package devapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer signs HS256 bearer tokens that the Auth middleware accepts.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t tokenIssuer) issue(a *Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      a.ID,
		"username": a.Username,
		"role":     string(a.Role),
		"exp":      t.now().Add(t.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
