package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/middleware"
	"complaintdesk/internal/models"
)

type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(plain, hash string) bool
	IssueAccessToken(user *models.User) (string, error)
}

type authService struct {
	bcryptCost int
	jwtKey     []byte
	accessTTL  time.Duration
}

func NewAuthService(bcryptCost int, jwtKey []byte, accessTTL time.Duration) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{bcryptCost: bcryptCost, jwtKey: jwtKey, accessTTL: accessTTL}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "bcrypt generate", err)
	}
	return string(h), nil
}

func (s *authService) CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueAccessToken — HS256, claims: user id + email + роль.
func (s *authService) IssueAccessToken(user *models.User) (string, error) {
	claims := &middleware.Claims{
		UserID: user.ID,
		RoleID: user.RoleID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "sign access token", err)
	}
	return signed, nil
}
