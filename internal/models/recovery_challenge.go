package models

import "time"

// PurposePasswordRecovery — пока единственное назначение челленджа.
const PurposePasswordRecovery = "password_recovery"

// RecoveryChallenge — одноразовый вызов восстановления: живёт не дольше
// expires_at, не больше attempts_left неверных вводов и ровно до первого
// успешного подтверждения. На пару (user_id, purpose) — максимум одна запись.
type RecoveryChallenge struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	Purpose      string    `json:"purpose"`
	Code         string    `json:"-"` // OTP, уходит только в письмо
	Token        string    `json:"-"` // continuation token, уходит только инициатору
	AttemptsLeft int       `json:"attempts_left"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
