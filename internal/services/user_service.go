package services

import (
	"context"
	"log"
	"strings"
	"time"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
	"complaintdesk/internal/repositories"
)

// Все обращения к хранилищу ограничены по времени независимо от клиента.
const storeTimeout = 5 * time.Second

func storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, storeTimeout)
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    int
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, userID int, newPassword string) error
}

type userService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
	alerts AlertService

	maxLoginAttempts    int
	maxRecoveryAttempts int
}

func NewUserService(
	repo repositories.UserRepository,
	emails EmailService,
	auth AuthService,
	alerts AlertService,
	maxLoginAttempts, maxRecoveryAttempts int,
) UserService {
	return &userService{
		repo:                repo,
		emails:              emails,
		auth:                auth,
		alerts:              alerts,
		maxLoginAttempts:    maxLoginAttempts,
		maxRecoveryAttempts: maxRecoveryAttempts,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:            strings.TrimSpace(in.FirstName),
		LastName:             strings.TrimSpace(in.LastName),
		Email:                strings.TrimSpace(strings.ToLower(in.Email)),
		PasswordHash:         hash,
		RoleID:               in.RoleID,
		LoginAttemptsLeft:    s.maxLoginAttempts,
		RecoveryAttemptsLeft: s.maxRecoveryAttempts,
	}

	// дубликат email -> Conflict из репозитория
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.emails != nil {
		go func(email, name string) {
			if err := s.emails.SendWelcomeEmail(email, name); err != nil {
				log.Printf("[user][signup] warning: failed to send welcome email to %s: %v", email, err)
			}
		}(user.Email, user.FirstName)
	}

	return user, nil
}

// Login: неверный пароль списывает попытку; обнуление счётчика блокирует
// аккаунт сразу же. Заблокированный аккаунт не пускаем даже с верным паролем.
func (s *userService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return "", nil, apperrors.E(apperrors.KindUnauthorized, "invalid email or password")
		}
		return "", nil, err
	}

	if user.IsLocked {
		log.Printf("[auth][login] rejected: locked account userID=%d", user.ID)
		return "", nil, apperrors.E(apperrors.KindUnauthorized, "invalid email or password")
	}

	if !s.auth.CheckPassword(password, user.PasswordHash) {
		left, derr := s.repo.DecrementLoginAttempts(ctx, user.ID)
		if derr != nil {
			log.Printf("[auth][login] decrement attempts failed for userID=%d: %v", user.ID, derr)
		} else if left == 0 {
			if lerr := s.repo.Lock(ctx, user.ID); lerr != nil {
				log.Printf("[auth][login] lock failed for userID=%d: %v", user.ID, lerr)
			} else {
				log.Printf("[auth][login] account locked userID=%d", user.ID)
				if s.alerts != nil {
					go s.alerts.AccountLocked(user)
				}
			}
		}
		return "", nil, apperrors.E(apperrors.KindUnauthorized, "invalid email or password")
	}

	token, err := s.auth.IssueAccessToken(user)
	if err != nil {
		return "", nil, err
	}
	log.Printf("[auth][login] success userID=%d role=%d", user.ID, user.RoleID)
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

// ChangePassword требует доказательства владения текущим паролем.
// Успешная смена возвращает оба счётчика попыток к максимуму.
func (s *userService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.auth.CheckPassword(oldPassword, user.PasswordHash) {
		return apperrors.E(apperrors.KindUnauthorized, "old password does not match")
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash, s.maxLoginAttempts, s.maxRecoveryAttempts)
}

// ResetPassword — пост-recovery путь: доказательство — сессия, выданная
// verify-шагом, текущий пароль не требуется.
func (s *userService) ResetPassword(ctx context.Context, userID int, newPassword string) error {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.E(apperrors.KindForbidden, "forbidden")
		}
		return err
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash, s.maxLoginAttempts, s.maxRecoveryAttempts)
}
