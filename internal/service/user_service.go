package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/validation"

	"github.com/rs/zerolog"
)

const (
	nameRules  = "notblank,max=255"
	emailRules = "required,email,dotted_domain,excludesall= ,max=512"
)

type UserCreate struct {
	Name  string `json:"name" validate:"notblank,max=255"`
	Email string `json:"email" validate:"required,email,dotted_domain,excludesall= ,max=512"`
}

type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type UserService struct {
	users    domain.UserRepository
	validate *validation.Validator
	logger   *zerolog.Logger
}

func NewUserService(users domain.UserRepository, validate *validation.Validator, logger *zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

func (s *UserService) Create(ctx context.Context, in UserCreate) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: in.Email,
	}
	if err := s.ensureEmailFree(ctx, user.Email, 0); err != nil {
		return nil, err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, s.storeError(err, user.Email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User with id %d not found", id)
	}

	if patch.Name != nil {
		if err := s.validate.Var("name", *patch.Name, nameRules); err != nil {
			return nil, err
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if err := s.validate.Var("email", *patch.Email, emailRules); err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return nil, err
		}
		user.Email = *patch.Email
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("User with id %d not found", id)
		}
		return nil, s.storeError(err, user.Email)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User with id %d not found", id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return notFoundOr(err, "User with id %d not found", id)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, exceptID int64) error {
	taken, err := s.users.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("Email %s is already in use", email)
	}
	return nil
}

// storeError covers the race where the unique index catches a duplicate
// that EmailTaken did not see.
func (s *UserService) storeError(err error, email string) error {
	if errors.Is(err, database.ErrDuplicateEmail) {
		return domain.Conflict("Email %s is already in use", email)
	}
	s.logger.Error().Err(err).Msg("failed to store user")
	return err
}
