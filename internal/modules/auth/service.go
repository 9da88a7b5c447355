package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"propzy/internal/domain"
	"propzy/internal/mailer"
	"propzy/internal/metrics"
	"propzy/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Options struct {
	ResetTokenPepper string
	ResetTokenTTL    time.Duration
	FrontendURL      string
}

// Service contains all business logic for authentication
type Service struct {
	users  UserRepository
	resets PasswordResetRepository
	jwt    jwtService
	mailer Mailer
	opts   Options
	now    func() time.Time
}

func NewService(users UserRepository, resets PasswordResetRepository, jwt jwtService, mailer Mailer, opts Options) *Service {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &Service{
		users:  users,
		resets: resets,
		jwt:    jwt,
		mailer: mailer,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a standard user. The user name defaults to the local part of the email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		userName = strings.SplitN(email, "@", 2)[0]
	}

	user := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.checkCredentials(ctx, req)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("user", "failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("user", "success").Inc()
	return s.issue(user)
}

// AdminLogin only accepts accounts with the admin role.
func (s *Service) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.checkCredentials(ctx, req)
	if err == nil && !user.IsAdmin() {
		err = ErrInvalidAdminCredentials
	}
	if errors.Is(err, ErrInvalidCredentials) {
		err = ErrInvalidAdminCredentials
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("admin", "success").Inc()
	return s.issue(user)
}

func (s *Service) checkCredentials(ctx context.Context, req LoginRequest) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

func (s *Service) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateUserName(ctx context.Context, userID int64, userName string) (*domain.User, error) {
	if err := s.users.UpdateUserName(ctx, userID, strings.TrimSpace(userName)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Me(ctx, userID)
}

// ForgotPassword mails a reset link when the account exists. Unknown or
// inactive accounts are ignored so the endpoint does not reveal which emails
// are registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	now := s.now()
	if err := s.resets.InvalidateForUser(ctx, user.ID, now); err != nil {
		return err
	}

	raw, hash, err := generateResetToken(s.opts.ResetTokenPepper)
	if err != nil {
		return err
	}
	if err := s.resets.Create(ctx, &domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.opts.ResetTokenTTL),
	}); err != nil {
		return err
	}

	link := s.opts.FrontendURL + "/reset-password?token=" + url.QueryEscape(raw)
	subject, body, err := mailer.PasswordResetMessage(link, s.opts.ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, []string{user.Email}, subject, body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes the token and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) error {
	reset, err := s.resets.GetByHash(ctx, hashToken(rawToken, s.opts.ResetTokenPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	now := s.now()
	if !reset.Usable(now) {
		return ErrInvalidResetToken
	}
	claimed, err := s.resets.MarkUsed(ctx, reset.ID, now)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInvalidResetToken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateResetToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, hashToken(raw, pepper), nil
}

func hashToken(raw, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
