package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/threetgame/backend/internal/apperror"
	"github.com/threetgame/backend/internal/entity"
)

var ErrUserExists = errors.New("user already exists")

type UserRepository interface {
	Save(ctx context.Context, user *entity.User) error
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

type dbUser struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &dbUser{
		conn: conn,
	}
}

func (that *dbUser) Save(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrUserExists, user.Username)
		}
		return fmt.Errorf("can't save user: %w", err)
	}

	return nil
}

func (that *dbUser) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT id, username, email, password_hash FROM users WHERE username = ?`

	return that.findOne(ctx, query, username)
}

func (that *dbUser) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, username, email, password_hash FROM users WHERE id = ?`

	return that.findOne(ctx, query, id)
}

func (that *dbUser) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User

	err := that.conn.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &user, nil
}

func isUniqueViolation(err error) bool {
	// sqlite reports constraint violations only through the error text
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
