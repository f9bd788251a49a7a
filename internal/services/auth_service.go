package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"training_tracker/internal/models"
	"training_tracker/internal/utils"
)

// AuthService issues the session tokens that separate the admin view from
// the employee view. There are no user accounts: the admin knows a shared
// password, an employee identifies with number and last name.
type AuthService struct {
	employees EmployeeStore
	adminHash string
	secret    []byte
	ttl       time.Duration
}

func NewAuthService(employees EmployeeStore, adminHash, secret string, ttl time.Duration) *AuthService {
	return &AuthService{employees: employees, adminHash: adminHash, secret: []byte(secret), ttl: ttl}
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type EmployeeLoginRequest struct {
	EmployeeNumber string `json:"employee_number" binding:"required"`
	LastName       string `json:"last_name" binding:"required"`
}

type Session struct {
	Token      string     `json:"-"`
	Role       string     `json:"role"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

var errBadCredentials = fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)

func (s *AuthService) issue(role string, employeeID *uuid.UUID) (*Session, error) {
	token, expires, err := utils.NewSessionToken(s.secret, role, employeeID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return &Session{Token: token, Role: role, EmployeeID: employeeID, ExpiresAt: expires}, nil
}

func (s *AuthService) AdminLogin(_ context.Context, req AdminLoginRequest) (*Session, error) {
	if s.adminHash == "" {
		return nil, fmt.Errorf("%w: admin login is disabled", models.ErrUnauthorized)
	}
	if err := utils.VerifyPassword(s.adminHash, req.Password); err != nil {
		if errors.Is(err, utils.ErrInvalidHash) {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return nil, errBadCredentials
	}
	return s.issue(utils.RoleAdmin, nil)
}

// EmployeeLogin accepts the employee number with the last name, compared
// case-insensitively. Inactive employees cannot sign in.
func (s *AuthService) EmployeeLogin(ctx context.Context, req EmployeeLoginRequest) (*Session, error) {
	e, err := s.employees.GetByNumber(ctx, req.EmployeeNumber)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if !e.Active || !strings.EqualFold(strings.TrimSpace(req.LastName), e.LastName) {
		return nil, errBadCredentials
	}
	id := e.ID
	return s.issue(utils.RoleEmployee, &id)
}

func (s *AuthService) Parse(token string) (*Session, error) {
	claims, err := utils.ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	sess := &Session{Token: token, Role: claims.Role, EmployeeID: claims.EmployeeID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
