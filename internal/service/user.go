package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
)

var ErrUsernameTaken = errors.New("username is already taken")

type UserService interface {
	Register(ctx context.Context, username, email, password string) (entity.Identity, error)
	Login(ctx context.Context, username, password string) (entity.Identity, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type userRepo interface {
	Save(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type userService struct {
	userRepo userRepo
}

func NewUserService(userRepo userRepo) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (that *userService) Register(ctx context.Context, username, email, password string) (entity.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err = that.userRepo.Save(ctx, user); err != nil {
		return entity.Identity{}, fmt.Errorf("could not save user: %w", err)
	}

	return user.Identity(), nil
}

func (that *userService) Login(ctx context.Context, username, password string) (entity.Identity, error) {
	user, err := that.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		return entity.Identity{}, apperror.ErrUnauthorized
	}
	if err != nil {
		return entity.Identity{}, fmt.Errorf("could not get user by username: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.Identity{}, apperror.ErrUnauthorized
	}

	return user.Identity(), nil
}

func (that *userService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := that.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	return user, nil
}
