package services

import (
	"context"
	"log"
	"strings"
	"time"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
	"complaintdesk/internal/repositories"
	"complaintdesk/internal/utils"
)

// RecoveryService — конечный автомат восстановления пароля по OTP.
// Любой отказ наружу выглядит одинаково (Forbidden): вызывающий не должен
// отличать «нет такого аккаунта» от «код просрочен» или «попытки исчерпаны».
type RecoveryService interface {
	// Initiate выдаёт новый челлендж и возвращает continuation token.
	// Код уходит только на почту аккаунта.
	Initiate(ctx context.Context, email string) (string, error)
	// Resend ротирует код и токен; старый токен перестаёт действовать.
	Resend(ctx context.Context, email, token string) (string, error)
	// Verify сверяет код; при успехе челлендж удаляется, счётчики аккаунта
	// возвращаются к максимуму и выдаётся access token.
	Verify(ctx context.Context, token, code string) (string, error)
}

type recoveryService struct {
	users      repositories.UserRepository
	challenges repositories.RecoveryChallengeRepository
	emails     EmailService
	auth       AuthService
	alerts     AlertService

	codeLength          int
	tokenBytes          int
	challengeAttempts   int
	challengeTTL        time.Duration
	maxLoginAttempts    int
	maxRecoveryAttempts int
}

func NewRecoveryService(
	users repositories.UserRepository,
	challenges repositories.RecoveryChallengeRepository,
	emails EmailService,
	auth AuthService,
	alerts AlertService,
	codeLength, tokenBytes, challengeAttempts int,
	challengeTTL time.Duration,
	maxLoginAttempts, maxRecoveryAttempts int,
) RecoveryService {
	return &recoveryService{
		users:               users,
		challenges:          challenges,
		emails:              emails,
		auth:                auth,
		alerts:              alerts,
		codeLength:          codeLength,
		tokenBytes:          tokenBytes,
		challengeAttempts:   challengeAttempts,
		challengeTTL:        challengeTTL,
		maxLoginAttempts:    maxLoginAttempts,
		maxRecoveryAttempts: maxRecoveryAttempts,
	}
}

var errForbidden = apperrors.E(apperrors.KindForbidden, "forbidden")

func (s *recoveryService) Initiate(ctx context.Context, email string) (string, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	user, err := s.guardedLookup(ctx, email)
	if err != nil {
		return "", err
	}
	return s.issueChallenge(ctx, user)
}

func (s *recoveryService) Resend(ctx context.Context, email, token string) (string, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	user, err := s.guardedLookup(ctx, email)
	if err != nil {
		return "", err
	}

	// токен обязан указывать на существующий челлендж именно этого аккаунта;
	// срок и попытки не проверяем — resend и нужен для протухшего кода
	if _, err := s.challenges.DeleteByUserAndToken(ctx, user.ID, models.PurposePasswordRecovery, token); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return "", errForbidden
		}
		return "", err
	}

	return s.issueChallenge(ctx, user)
}

func (s *recoveryService) Verify(ctx context.Context, token, code string) (string, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	ch, err := s.challenges.FindLiveByToken(ctx, models.PurposePasswordRecovery, token)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return "", errForbidden
		}
		return "", err
	}

	if ch.Code != code {
		// неверный код стоит попытку, и этот декремент обязан пережить ответ
		if _, derr := s.challenges.DecrementAttempts(ctx, ch.ID); derr != nil {
			log.Printf("[recovery][verify] decrement attempts failed id=%d: %v", ch.ID, derr)
		}
		return "", errForbidden
	}

	// одноразовость: успешная проверка удаляет челлендж
	if err := s.challenges.Delete(ctx, ch.ID); err != nil {
		return "", err
	}
	if err := s.users.ResetAttempts(ctx, ch.UserID, s.maxLoginAttempts, s.maxRecoveryAttempts); err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, ch.UserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return "", errForbidden
		}
		return "", err
	}

	accessToken, err := s.auth.IssueAccessToken(user)
	if err != nil {
		return "", err
	}
	log.Printf("[recovery][verify] success userID=%d", user.ID)
	return accessToken, nil
}

// guardedLookup — общий гейт initiate/resend: неизвестный email, блокировка
// и исчерпанные recovery-попытки дают одинаковый Forbidden. Обнулённый
// счётчик блокирует аккаунт прямо здесь, до отказа; неудача записи блокировки
// логируется, но отказ остаётся в силе.
func (s *recoveryService) guardedLookup(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, errForbidden
		}
		return nil, err
	}

	if user.IsLocked {
		return nil, errForbidden
	}

	if user.RecoveryAttemptsLeft == 0 {
		if lerr := s.users.Lock(ctx, user.ID); lerr != nil {
			log.Printf("[recovery] lock failed for userID=%d: %v", user.ID, lerr)
		} else {
			log.Printf("[recovery] account locked userID=%d: recovery attempts exhausted", user.ID)
			if s.alerts != nil {
				go s.alerts.AccountLocked(user)
			}
		}
		return nil, errForbidden
	}

	return user, nil
}

// issueChallenge — общий хвост initiate/resend: новый код и токен, атомарный
// upsert (старый челлендж пары (аккаунт, назначение) замещается), письмо
// best-effort, списание recovery-попытки.
func (s *recoveryService) issueChallenge(ctx context.Context, user *models.User) (string, error) {
	code, err := utils.NewNumericCode(s.codeLength)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "generate code", err)
	}
	token, err := utils.NewOpaqueToken(s.tokenBytes)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "generate token", err)
	}

	ch := &models.RecoveryChallenge{
		UserID:       user.ID,
		Purpose:      models.PurposePasswordRecovery,
		Code:         code,
		Token:        token,
		AttemptsLeft: s.challengeAttempts,
		ExpiresAt:    time.Now().Add(s.challengeTTL),
	}
	if err := s.challenges.Upsert(ctx, ch); err != nil {
		return "", err
	}

	if s.emails != nil {
		go func(email, code string) {
			if err := s.emails.SendRecoveryCodeEmail(email, code); err != nil {
				log.Printf("[recovery] failed to send code email to %s: %v", email, err)
			}
		}(user.Email, code)
	}

	if err := s.users.DecrementRecoveryAttempts(ctx, user.ID); err != nil {
		return "", err
	}

	log.Printf("[recovery] challenge issued userID=%d expires_at=%s", user.ID, ch.ExpiresAt.Format(time.RFC3339))
	return token, nil
}
