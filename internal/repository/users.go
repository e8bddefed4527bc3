package repository

import (
	"context"
	"database/sql"
	"errors"

	"kollektivet/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// bootstrapLockKey serializes first-user creation across concurrent logins so
// only one principal can ever win the bootstrap ADMIN role.
const bootstrapLockKey = 874502931

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateOrGet inserts the user if no row with the same email exists, and
	// otherwise loads the existing row into user without touching it. The
	// role field is assigned here: ADMIN for the very first user in the
	// system, RESIDENT after that. Returns whether a new row was created.
	CreateOrGet(ctx context.Context, user *models.User) (bool, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

const userColumns = `id, email, name, image, password_hash, role, created_at`

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) CreateOrGet(ctx context.Context, user *models.User) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey); err != nil {
		return false, err
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	user.Role = models.RoleResident
	if count == 0 {
		user.Role = models.RoleAdmin
	}

	query := `INSERT INTO users (id, email, name, image, password_hash, role)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (email) DO NOTHING
	          RETURNING ` + userColumns
	err = tx.QueryRowxContext(ctx, query, user.ID, user.Email, user.Name, user.Image, user.PasswordHash, user.Role).StructScan(user)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		// Repeat sign-in: reuse the stored row, never overwrite role or name.
		created = false
		selectQuery := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
		if err := tx.GetContext(ctx, user, selectQuery, user.Email); err != nil {
			return false, err
		}
	} else if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	if created {
		r.logger.Info("Created user", zap.String("email", user.Email), zap.String("role", user.Role))
	}
	return created, nil
}
