// Package users implements the auth service: registration and login against
// the credential store, and minting of session tokens.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/insuredesk/policykeeper/internal/common"
	"github.com/insuredesk/policykeeper/internal/server/auth"
	"github.com/insuredesk/policykeeper/internal/server/config"
	"github.com/insuredesk/policykeeper/internal/server/models"
	usersrepo "github.com/insuredesk/policykeeper/internal/server/repositories/users"
)

// Session is the result of a successful login: the matched credential's
// profile and the signed access token the presentation layer holds for the
// rest of the run.
type Session struct {
	User        *models.User
	AccessToken string
}

// dummyHash keeps the miss path doing the same bcrypt work as the hit path,
// so login timing does not reveal whether a username exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service provides authentication operations over an injected credential
// store. Safe for concurrent callers; all serialization lives in the store.
type Service struct {
	repo                usersrepo.Repository
	jwtSecret           []byte
	accessTokenValidity time.Duration
}

// NewService constructs an auth service using the credential store and
// server config.
func NewService(repo usersrepo.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                repo,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new credential with a bcrypt hash of password.
// A username that is already taken yields common.ErrDuplicateUsername and
// leaves the store unchanged. No password-strength rule is enforced beyond
// username uniqueness.
func (s *Service) Register(ctx context.Context, username, password, fullName, email string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Email:        email,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, common.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// Login verifies the password against the stored hash and, on success,
// returns a Session with a signed access token. Unknown usernames and wrong
// passwords are indistinguishable to the caller: both yield
// common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &Session{User: user, AccessToken: token}, nil
}

// Exists reports whether username is registered.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	return s.repo.Exists(ctx, username)
}
