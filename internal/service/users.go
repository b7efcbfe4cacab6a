// Package service provides the user directory and tweet store business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/repository"
)

var (
	// ErrUsernameTaken is returned by Register when the username is already in use.
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidCredentials is returned by Authenticate for an unknown user
	// and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username/password")
	// ErrUserNotFound is returned by Get for an unknown user id.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines the persistence operations
// required by the user directory.
type UserRepository interface {
	// CreateUser stores a new user. Returns repository.ErrDuplicate if the
	// username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	// GetUserByUsername returns repository.ErrNotFound if there is no such user.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByID returns repository.ErrNotFound if there is no such user.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(hash, candidate string) bool
}

// UserService registers and authenticates users.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher

	// dummyHash is compared against when the username is unknown, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewUserService constructs a UserService. It hashes a throwaway password
// once so that failed lookups can still pay for a verification.
func NewUserService(repo UserRepository, hasher PasswordHasher) (*UserService, error) {
	dummy, err := hasher.Hash("gophtweeter-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &UserService{repo: repo, hasher: hasher, dummyHash: dummy}, nil
}

// Register hashes rawPassword and stores a new user.
// Returns ErrUsernameTaken if the username already exists.
func (s *UserService) Register(ctx context.Context, username, rawPassword string) (*models.User, error) {
	hash, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user if username exists and rawPassword matches.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, rawPassword string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(s.dummyHash, rawPassword)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, rawPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given id, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
