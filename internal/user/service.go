package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/FleetDesk/FleetDesk/internal/common/auth"
	"github.com/FleetDesk/FleetDesk/internal/common/config"
	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. *Repo implements it.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdatePreferences(ctx context.Context, id, prefs string) error
}

type Service struct {
	store   Store
	authCfg config.AuthConfig
}

func NewService(store Store, authCfg config.AuthConfig) *Service {
	return &Service{store: store, authCfg: authCfg}
}

// RegisterInput carries the self-service signup fields. Role is never
// accepted from the caller; every signup is an employee.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	DealershipID string
}

// Token is a minted access token plus its expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register creates an employee account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, *Token, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return nil, nil, apperrors.Validationf("name required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, nil, apperrors.Validationf("valid email required")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleEmployee,
		Phone:        strings.TrimSpace(in.Phone),
		DealershipID: strings.TrimSpace(in.DealershipID),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, nil, err
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tok, nil
}

// Login verifies credentials and mints an access token. Unknown email and
// wrong password produce the same error so the endpoint does not leak
// which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, apperrors.Validationf("email and password required")
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Forbiddenf("invalid credentials")
		}
		return nil, nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, nil, apperrors.Forbiddenf("invalid credentials")
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tok, nil
}

func (s *Service) issueToken(u *User) (*Token, error) {
	ttl := time.Duration(s.authCfg.TokenTTLMin) * time.Minute
	signed, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Role, u.DealershipID, ttl)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("user id required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	return s.store.List(ctx, offset, limit)
}

// SetRole promotes or demotes an account. Admins cannot demote themselves;
// that would leave the system one mistake away from having no admin.
func (s *Service) SetRole(ctx context.Context, actorID, id, role string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Validationf("user id required")
	}
	if !ValidRole(role) {
		return apperrors.Validationf("unknown role %q", role)
	}
	if id == actorID && role != RoleAdmin {
		return apperrors.Conflictf("cannot demote your own account")
	}
	return s.store.UpdateRole(ctx, id, role)
}

// SetPreferences stores the user's accessibility preference document.
// It must be a JSON object; content is otherwise opaque to the server.
func (s *Service) SetPreferences(ctx context.Context, id, prefs string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Validationf("user id required")
	}
	if prefs != "" {
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(prefs), &doc); err != nil {
			return apperrors.Validationf("preferences must be a JSON object")
		}
	}
	return s.store.UpdatePreferences(ctx, id, prefs)
}
