package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/BBMRI-cz/fhir-place/internal/database"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrNothingToUpdate = errors.New("nothing to update")
)

const userColumns = `id, username, password_hash, first_name, last_name, email, is_active, created_at, updated_at`

type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and returns the stored row. A username clash
// yields ErrUsernameTaken.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (
			id, username, password_hash, first_name, last_name, email, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
		ON CONFLICT (username) DO NOTHING
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		string(user.PasswordHash),
		user.FirstName,
		user.LastName,
		user.Email,
		user.IsActive,
	)
	created, err := scanUser(row)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrUsernameTaken
	}
	return created, err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// DetailsUpdate carries the profile fields to overwrite; nil leaves the
// column untouched.
type DetailsUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (u DetailsUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil
}

func (r *UserRepository) UpdateDetails(ctx context.Context, id string, update DetailsUpdate) error {
	if update.Empty() {
		return ErrNothingToUpdate
	}

	const query = `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, id, update.FirstName, update.LastName, update.Email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, string(passwordHash))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		hash string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&hash,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.PasswordHash = []byte(hash)
	return user, nil
}
