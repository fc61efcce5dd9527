package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/db"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

var (
	ErrUserNotFound  = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	ErrUsernameTaken = fmt.Errorf("%w: username already exists", apperr.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
)

const userColumns = `id, username, password_hash, is_admin, name, email, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, username, name, email, passwordHash string, isAdmin bool) (*User, error) {
	query := `
		INSERT INTO users (username, name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query,
		username,
		null.NewString(name, name != ""),
		null.NewString(email, email != ""),
		passwordHash,
		isAdmin,
	)
	if err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *repository) UsernameExists(ctx context.Context, username string, excludeID int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`, username, excludeID)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) AdminExists(ctx context.Context) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE is_admin)`)
}

func (r *repository) UpdateCredentials(ctx context.Context, id int, username, passwordHash string) (*User, error) {
	query := `
		UPDATE users
		SET username = $2, password_hash = $3
		WHERE id = $1
		RETURNING ` + userColumns

	var user User
	if err := r.db.GetContext(ctx, &user, query, id, username, passwordHash); err != nil {
		return nil, translate(err)
	}

	return &user, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}

	return users, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	case db.IsUniqueViolation(err, "users_username_key"):
		return ErrUsernameTaken
	case db.IsUniqueViolation(err, "users_email_key"):
		return ErrEmailTaken
	default:
		return err
	}
}
