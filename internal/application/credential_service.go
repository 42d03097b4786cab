package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	repo "github.com/learnflow/learnflow-auth/internal/domain/repository"
	"github.com/learnflow/learnflow-auth/pkg/helpers"
)

// CredentialService owns user records and password verification.
type CredentialService struct {
	Repo   repo.UserRepository
	Logger logrus.FieldLogger
	// Cost is the bcrypt cost; 0 selects bcrypt.DefaultCost.
	Cost int
}

func NewCredentialService(r repo.UserRepository, logger logrus.FieldLogger, cost int) *CredentialService {
	return &CredentialService{Repo: r, Logger: logger, Cost: cost}
}

// Create registers a student. Emails are compared after normalization, so
// " Ada@Example.com" and "ada@example.com" are the same account.
func (s *CredentialService) Create(ctx context.Context, name, email, password string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = entity.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	verifier, err := helpers.HashVerifier(password, email, s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash verifier: %w", err)
	}
	u := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: verifier,
		Role:         entity.RoleStudent,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Verify checks a password. Unknown email and wrong password are
// indistinguishable to the caller, including in timing.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			helpers.BurnVerifierCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareVerifier(u.PasswordHash, password, email) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// SetRole overwrites the stored role. There is no downgrade guard.
func (s *CredentialService) SetRole(ctx context.Context, userID string, role entity.Role) error {
	if !role.Valid() {
		return ErrInvalidInput
	}
	if err := s.Repo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update role: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "role": role}).Info("role updated")
	}
	return nil
}

func (s *CredentialService) Get(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
