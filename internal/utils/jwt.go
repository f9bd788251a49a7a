package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	Role       string     `json:"role"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	jwt.RegisteredClaims
}

// NewSessionToken signs a session for role. employeeID is only set for
// employee sessions.
func NewSessionToken(secret []byte, role string, employeeID *uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	if role != RoleAdmin && role != RoleEmployee {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}
	if role == RoleEmployee && employeeID == nil {
		return "", time.Time{}, errors.New("employee session without employee id")
	}

	now := time.Now()
	expires := now.Add(ttl)
	subject := role
	if employeeID != nil {
		subject = employeeID.String()
	}
	claims := &SessionClaims{
		Role:       role,
		EmployeeID: employeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseSessionToken validates the signature and expiry of a session token.
func ParseSessionToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Role != RoleAdmin && claims.Role != RoleEmployee {
		return nil, fmt.Errorf("%w: unknown role", jwt.ErrTokenInvalidClaims)
	}
	if claims.Role == RoleEmployee && claims.EmployeeID == nil {
		return nil, fmt.Errorf("%w: missing employee id", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
