// internal/repository/user_repository.go
package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/models"
)

var userColumns = []string{
	"id", "name", "email", "password_hash", "refresh_token", "created_at", "updated_at",
}

type UserRepository struct {
	store
}

func NewUserRepository(db *database.DB, clock Clock) *UserRepository {
	return &UserRepository{store: newStore(db, clock)}
}

// Create stores a new user. Emails are compared case-insensitively and
// stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	now := r.clock.Timestamp()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findBy(ctx, tx, "email", user.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		insert := r.sql.Insert(database.UsersTable).
			Columns(userColumns...).
			Values(user.ID, user.Name, user.Email, user.PasswordHash, user.RefreshToken,
				user.CreatedAt, user.UpdatedAt)
		if _, err := exec(ctx, tx, insert); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := r.withTx(ctx, func(tx *sqlx.Tx) (err error) {
		user, err = r.findBy(ctx, tx, "id", id)
		return err
	})
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.withTx(ctx, func(tx *sqlx.Tx) (err error) {
		user, err = r.findBy(ctx, tx, "email", strings.ToLower(strings.TrimSpace(email)))
		return err
	})
	return user, err
}

// SetRefreshToken replaces the stored refresh token. A nil token signs the
// user out of every refresh session.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		update := r.sql.Update(database.UsersTable).
			Set("refresh_token", token).
			Set("updated_at", r.clock.Timestamp()).
			Where(sql.EQ("id", id))
		n, err := exec(ctx, tx, update)
		if err != nil {
			return fmt.Errorf("update refresh token: %w", err)
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepository) findBy(ctx context.Context, tx *sqlx.Tx, column string, value any) (*models.User, error) {
	sel := r.sql.Select(userColumns...).
		From(r.sql.Table(database.UsersTable)).
		Where(sql.EQ(column, value))

	var user models.User
	if err := get(ctx, tx, &user, sel); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}
