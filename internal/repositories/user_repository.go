package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// UpdatePassword меняет хэш и одновременно возвращает оба счётчика к максимуму.
	UpdatePassword(ctx context.Context, userID int, passwordHash string, maxLogin, maxRecovery int) error
	ResetAttempts(ctx context.Context, userID int, maxLogin, maxRecovery int) error

	// DecrementLoginAttempts возвращает оставшееся значение после декремента.
	DecrementLoginAttempts(ctx context.Context, userID int) (int, error)
	DecrementRecoveryAttempts(ctx context.Context, userID int) error

	Lock(ctx context.Context, userID int) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, first_name, last_name, email, password_hash, role_id,
	login_attempts_left, recovery_attempts_left, is_locked,
	created_at, updated_at
`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.LoginAttemptsLeft, &u.RecoveryAttemptsLeft, &u.IsLocked,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.E(apperrors.KindNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "user scan", err)
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (
			first_name, last_name, email, password_hash, role_id,
			login_attempts_left, recovery_attempts_left, is_locked
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.LoginAttemptsLeft,
		user.RecoveryAttemptsLeft,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.E(apperrors.KindConflict, "email already registered")
		}
		return apperrors.Wrap(apperrors.KindInternal, "user create", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, q, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRowContext(ctx, q, email))
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	const q = `
		UPDATE users
		SET first_name=$1, last_name=$2, email=$3, password_hash=$4, role_id=$5,
		    login_attempts_left=$6, recovery_attempts_left=$7, is_locked=$8,
		    updated_at=NOW()
		WHERE id=$9
	`
	res, err := r.DB.ExecContext(ctx, q,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.RoleID,
		user.LoginAttemptsLeft,
		user.RecoveryAttemptsLeft,
		user.IsLocked,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "user update", err)
	}
	return requireRow(res, "user not found")
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string, maxLogin, maxRecovery int) error {
	const q = `
		UPDATE users
		SET password_hash=$1,
		    login_attempts_left=$2,
		    recovery_attempts_left=$3,
		    updated_at=NOW()
		WHERE id=$4
	`
	res, err := r.DB.ExecContext(ctx, q, passwordHash, maxLogin, maxRecovery, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "user update password", err)
	}
	return requireRow(res, "user not found")
}

func (r *userRepository) ResetAttempts(ctx context.Context, userID int, maxLogin, maxRecovery int) error {
	const q = `
		UPDATE users
		SET login_attempts_left=$1, recovery_attempts_left=$2, updated_at=NOW()
		WHERE id=$3
	`
	res, err := r.DB.ExecContext(ctx, q, maxLogin, maxRecovery, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "user reset attempts", err)
	}
	return requireRow(res, "user not found")
}

func (r *userRepository) DecrementLoginAttempts(ctx context.Context, userID int) (int, error) {
	const q = `
		UPDATE users
		SET login_attempts_left = GREATEST(login_attempts_left - 1, 0), updated_at=NOW()
		WHERE id=$1
		RETURNING login_attempts_left
	`
	var left int
	if err := r.DB.QueryRowContext(ctx, q, userID).Scan(&left); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.E(apperrors.KindNotFound, "user not found")
		}
		return 0, apperrors.Wrap(apperrors.KindInternal, "user decrement login attempts", err)
	}
	return left, nil
}

func (r *userRepository) DecrementRecoveryAttempts(ctx context.Context, userID int) error {
	const q = `
		UPDATE users
		SET recovery_attempts_left = GREATEST(recovery_attempts_left - 1, 0), updated_at=NOW()
		WHERE id=$1
	`
	res, err := r.DB.ExecContext(ctx, q, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "user decrement recovery attempts", err)
	}
	return requireRow(res, "user not found")
}

// Lock идемпотентен: повторная блокировка — no-op.
func (r *userRepository) Lock(ctx context.Context, userID int) error {
	const q = `UPDATE users SET is_locked=TRUE, updated_at=NOW() WHERE id=$1`
	res, err := r.DB.ExecContext(ctx, q, userID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "user lock", err)
	}
	return requireRow(res, "user not found")
}

func requireRow(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "rows affected", err)
	}
	if n == 0 {
		return apperrors.E(apperrors.KindNotFound, notFoundMsg)
	}
	return nil
}
