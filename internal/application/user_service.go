package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

type UserService struct {
	Repo   repo.UserRepository
	Hasher *helpers.PasswordHasher
	Logger logrus.FieldLogger
	now    func() time.Time
}

func NewUserService(r repo.UserRepository, hasher *helpers.PasswordHasher, logger logrus.FieldLogger) *UserService {
	return &UserService{Repo: r, Hasher: hasher, Logger: logger, now: time.Now}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

type UpdateUserInput struct {
	Username string
	Email    string
	FullName string
	// Password is re-hashed when not empty
	Password string
}

// Register creates a user with a hashed password. An existing email is a Conflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, apperror.NewValidation("email is required", nil)
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.NewConflict("user with this email already exists", nil)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &entity.User{
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		FullName:     in.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if apperror.IsConflict(err) {
			return nil, apperror.NewConflict("user with this email already exists", err)
		}
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.Repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Repo.GetByEmail(ctx, email)
}

// Update replaces the editable profile fields and refreshes updatedAt
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Username = in.Username
	u.Email = strings.TrimSpace(in.Email)
	u.FullName = in.FullName
	if in.Password != "" {
		hash, err := s.Hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, id, u); err != nil {
		return nil, err
	}
	return u, nil
}

// MarkEmailVerified sets isEmailVerified on the user owning email
func (s *UserService) MarkEmailVerified(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.IsEmailVerified {
		return u, nil
	}
	u.IsEmailVerified = true
	u.UpdatedAt = s.now().UTC()
	if err := s.Repo.Update(ctx, u.ID, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
