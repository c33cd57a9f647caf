// Package auth implements registration, credential verification and
// session token management. After a failed login attempt the account's
// next attempts must carry a solved captcha until a login succeeds.
package auth

import (
	"context"
	"fmt"
	"strings"

	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/utils"
	"github.com/taqume/toycell-be/internal/validation"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// CaptchaStore persists captcha answers and failed login counters.
type CaptchaStore interface {
	SaveAnswer(ctx context.Context, captchaID string, answer int) error
	TakeAnswer(ctx context.Context, captchaID string) (answer int, found bool, err error)
	RecordFailedAttempt(ctx context.Context, email string) error
	FailedAttempts(ctx context.Context, email string) (int, error)
	ClearFailedAttempts(ctx context.Context, email string) error
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	NationalID string `json:"national_id" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer *int   `json:"captcha_answer"`
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	CaptchaRequired(ctx context.Context, email string) (bool, error)
	NewCaptcha(ctx context.Context) (*Captcha, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
	DecryptContact(user *models.User) (phone, nationalID string, err error)
}

type service struct {
	users    repositories.UserRepository
	captchas CaptchaStore
	cipher   *utils.FieldCipher
	logger   zerolog.Logger
}

func NewService(users repositories.UserRepository, captchas CaptchaStore, cipher *utils.FieldCipher, logger zerolog.Logger) Service {
	if users == nil {
		panic("user repository is required")
	}
	if captchas == nil {
		panic("captcha store is required")
	}
	if cipher == nil {
		panic("field cipher is required")
	}
	return &service{
		users:    users,
		captchas: captchas,
		cipher:   cipher,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := validation.ValidPassword(req.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	phone, err := s.cipher.Encrypt(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt phone: %w", err)
	}
	nationalID, err := s.cipher.Encrypt(req.NationalID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt national id: %w", err)
	}

	user := &models.User{
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Password:   string(hashed),
		FullName:   req.FullName,
		Phone:      phone,
		NationalID: nationalID,
		Role:       models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	required, err := s.CaptchaRequired(ctx, email)
	if err != nil {
		return nil, err
	}
	if required {
		if err := s.verifyCaptcha(ctx, req); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn a counter increment on unknown emails too, so the
		// response does not reveal which addresses exist.
		s.noteFailure(ctx, email)
		return nil, domainerr.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.noteFailure(ctx, email)
		s.logger.Warn().Uint("user_id", user.ID).Msg("login failed: wrong password")
		return nil, domainerr.ErrInvalidCredentials
	}

	if err := s.captchas.ClearFailedAttempts(ctx, email); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear login counter")
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// CaptchaRequired reports whether the next login attempt for email must
// carry a solved captcha. A single failed attempt is enough to arm it.
func (s *service) CaptchaRequired(ctx context.Context, email string) (bool, error) {
	attempts, err := s.captchas.FailedAttempts(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, fmt.Errorf("failed to read login counter: %w", err)
	}
	return attempts >= 1, nil
}

func (s *service) verifyCaptcha(ctx context.Context, req LoginRequest) error {
	if req.CaptchaID == "" || req.CaptchaAnswer == nil {
		return domainerr.ErrCaptchaRequired
	}
	expected, found, err := s.captchas.TakeAnswer(ctx, req.CaptchaID)
	if err != nil {
		return fmt.Errorf("failed to verify captcha: %w", err)
	}
	if !found || expected != *req.CaptchaAnswer {
		return domainerr.ErrCaptchaFailed
	}
	return nil
}

func (s *service) noteFailure(ctx context.Context, email string) {
	if err := s.captchas.RecordFailedAttempt(ctx, email); err != nil {
		s.logger.Error().Err(err).Msg("failed to record login attempt")
	}
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", domainerr.ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", domainerr.ErrInvalidCredentials
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", domainerr.ErrInvalidCredentials
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
}

// Logout bumps the user's token version, invalidating every token
// issued before the call.
func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.users.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return domainerr.ErrInvalidCredentials
	}
	if err := validation.ValidPassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	user.TokenVersion++
	return s.users.Update(ctx, user)
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

// DecryptContact returns the user's phone and national id in clear for
// profile responses.
func (s *service) DecryptContact(user *models.User) (phone, nationalID string, err error) {
	phone, err = s.cipher.Decrypt(user.Phone)
	if err != nil {
		return "", "", err
	}
	nationalID, err = s.cipher.Decrypt(user.NationalID)
	if err != nil {
		return "", "", err
	}
	return phone, nationalID, nil
}
