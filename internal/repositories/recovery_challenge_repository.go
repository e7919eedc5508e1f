package repositories

import (
	"context"
	"database/sql"
	"errors"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
)

type RecoveryChallengeRepository interface {
	// Upsert атомарно заменяет живой челлендж пары (user_id, purpose):
	// один INSERT ... ON CONFLICT, без insert-then-update, чтобы два
	// параллельных инициирования не породили две живые записи.
	Upsert(ctx context.Context, ch *models.RecoveryChallenge) error

	// FindLiveByToken ищет только живой челлендж: точное совпадение токена
	// плюс expires_at >= NOW() и attempts_left > 0. Просроченный, исчерпанный
	// и несуществующий неразличимы для вызывающего.
	FindLiveByToken(ctx context.Context, purpose, token string) (*models.RecoveryChallenge, error)

	// DeleteByUserAndToken удаляет челлендж по точному совпадению
	// (user_id, purpose, token) и возвращает удалённую запись.
	// Срок и попытки здесь не проверяются: resend обязан работать и для
	// просроченного кода.
	DeleteByUserAndToken(ctx context.Context, userID int, purpose, token string) (*models.RecoveryChallenge, error)

	Delete(ctx context.Context, id int64) error

	// DecrementAttempts возвращает остаток после декремента.
	DecrementAttempts(ctx context.Context, id int64) (int, error)
}

type recoveryChallengeRepository struct {
	DB *sql.DB
}

func NewRecoveryChallengeRepository(db *sql.DB) RecoveryChallengeRepository {
	return &recoveryChallengeRepository{DB: db}
}

func (r *recoveryChallengeRepository) Upsert(ctx context.Context, ch *models.RecoveryChallenge) error {
	const q = `
		INSERT INTO recovery_challenges (user_id, purpose, code, token, attempts_left, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, purpose) DO UPDATE
		SET code=EXCLUDED.code,
		    token=EXCLUDED.token,
		    attempts_left=EXCLUDED.attempts_left,
		    expires_at=EXCLUDED.expires_at,
		    created_at=NOW()
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		ch.UserID, ch.Purpose, ch.Code, ch.Token, ch.AttemptsLeft, ch.ExpiresAt,
	).Scan(&ch.ID, &ch.CreatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "challenge upsert", err)
	}
	return nil
}

func (r *recoveryChallengeRepository) FindLiveByToken(ctx context.Context, purpose, token string) (*models.RecoveryChallenge, error) {
	const q = `
		SELECT id, user_id, purpose, code, token, attempts_left, expires_at, created_at
		FROM recovery_challenges
		WHERE purpose = $1 AND token = $2 AND expires_at >= NOW() AND attempts_left > 0
	`
	return scanChallenge(r.DB.QueryRowContext(ctx, q, purpose, token))
}

func (r *recoveryChallengeRepository) DeleteByUserAndToken(ctx context.Context, userID int, purpose, token string) (*models.RecoveryChallenge, error) {
	const q = `
		DELETE FROM recovery_challenges
		WHERE user_id = $1 AND purpose = $2 AND token = $3
		RETURNING id, user_id, purpose, code, token, attempts_left, expires_at, created_at
	`
	return scanChallenge(r.DB.QueryRowContext(ctx, q, userID, purpose, token))
}

func (r *recoveryChallengeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM recovery_challenges WHERE id=$1`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "challenge delete", err)
	}
	return requireRow(res, "challenge not found")
}

func (r *recoveryChallengeRepository) DecrementAttempts(ctx context.Context, id int64) (int, error) {
	const q = `
		UPDATE recovery_challenges
		SET attempts_left = GREATEST(attempts_left - 1, 0)
		WHERE id=$1
		RETURNING attempts_left
	`
	var left int
	if err := r.DB.QueryRowContext(ctx, q, id).Scan(&left); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.E(apperrors.KindNotFound, "challenge not found")
		}
		return 0, apperrors.Wrap(apperrors.KindInternal, "challenge decrement attempts", err)
	}
	return left, nil
}

func scanChallenge(row *sql.Row) (*models.RecoveryChallenge, error) {
	ch := &models.RecoveryChallenge{}
	err := row.Scan(
		&ch.ID, &ch.UserID, &ch.Purpose, &ch.Code, &ch.Token,
		&ch.AttemptsLeft, &ch.ExpiresAt, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.E(apperrors.KindNotFound, "challenge not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "challenge scan", err)
	}
	return ch, nil
}
