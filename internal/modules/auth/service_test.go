package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"propzy/internal/domain"
	"propzy/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateUserName(ctx context.Context, id int64, userName string) error {
	args := m.Called(ctx, id, userName)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

type mockResetRepo struct {
	mock.Mock
}

func (m *mockResetRepo) Create(ctx context.Context, p *domain.PasswordReset) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockResetRepo) GetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordReset), args.Error(1)
}

func (m *mockResetRepo) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockResetRepo) InvalidateForUser(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

type fakeJWT struct{}

func (fakeJWT) GenerateToken(userID int64, role string) (string, error) {
	return "token-" + role, nil
}

type recordingMailer struct {
	to      []string
	subject string
	body    string
}

func (r *recordingMailer) Send(_ context.Context, to []string, subject, body string) error {
	r.to, r.subject, r.body = to, subject, body
	return nil
}

func newTestService(users *mockUserRepo, resets *mockResetRepo, mail *recordingMailer) *Service {
	return NewService(users, resets, fakeJWT{}, mail, Options{
		ResetTokenPepper: "pepper",
		ResetTokenTTL:    time.Hour,
		FrontendURL:      "https://propzy.test",
	})
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_DefaultsUserNameToEmailLocalPart(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockResetRepo), &recordingMailer{})

	users.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.User).ID = 7 }).
		Return(nil)

	result, err := svc.Register(context.Background(), RegisterRequest{
		Email:    " Jane@Example.com ",
		Password: "secret1",
	})

	require.NoError(t, err)
	assert.Equal(t, "token-user", result.Token)
	assert.Equal(t, int64(7), result.User.ID)
	assert.Equal(t, "jane", result.User.UserName)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("secret1")))
	users.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockResetRepo), &recordingMailer{})

	users.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_RaceOnUniqueIndex(t *testing.T) {
	users := new(mockUserRepo)
	svc := newTestService(users, new(mockResetRepo), &recordingMailer{})

	users.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	active := &domain.User{ID: 1, Email: "a@x.io", PasswordHash: hashed(t, "pw1234"), Role: domain.RoleUser, IsActive: true}
	inactive := &domain.User{ID: 2, Email: "b@x.io", PasswordHash: hashed(t, "pw1234"), Role: domain.RoleUser}

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "a@x.io").Return(active, nil)
	users.On("GetByEmail", mock.Anything, "b@x.io").Return(inactive, nil)
	users.On("GetByEmail", mock.Anything, "nobody@x.io").Return(nil, gorm.ErrRecordNotFound)
	svc := newTestService(users, new(mockResetRepo), &recordingMailer{})

	result, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.io", Password: "pw1234"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.User.ID)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@x.io", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@x.io", Password: "pw1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "b@x.io", Password: "pw1234"})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestAdminLogin_RejectsStandardUser(t *testing.T) {
	user := &domain.User{ID: 1, Email: "a@x.io", PasswordHash: hashed(t, "pw1234"), Role: domain.RoleUser, IsActive: true}
	admin := &domain.User{ID: 2, Email: "root@x.io", PasswordHash: hashed(t, "pw1234"), Role: domain.RoleAdmin, IsActive: true}

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "a@x.io").Return(user, nil)
	users.On("GetByEmail", mock.Anything, "root@x.io").Return(admin, nil)
	svc := newTestService(users, new(mockResetRepo), &recordingMailer{})

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "a@x.io", Password: "pw1234"})
	assert.ErrorIs(t, err, ErrInvalidAdminCredentials)

	_, err = svc.AdminLogin(context.Background(), LoginRequest{Email: "root@x.io", Password: "bad"})
	assert.ErrorIs(t, err, ErrInvalidAdminCredentials)

	result, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "root@x.io", Password: "pw1234"})
	require.NoError(t, err)
	assert.Equal(t, "token-admin", result.Token)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	users := new(mockUserRepo)
	resets := new(mockResetRepo)
	mail := &recordingMailer{}
	users.On("GetByEmail", mock.Anything, "ghost@x.io").Return(nil, gorm.ErrRecordNotFound)
	svc := newTestService(users, resets, mail)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@x.io"))
	assert.Empty(t, mail.to)
	resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestForgotPassword_StoresHashAndMailsRawToken(t *testing.T) {
	user := &domain.User{ID: 3, Email: "a@x.io", IsActive: true}
	users := new(mockUserRepo)
	resets := new(mockResetRepo)
	mail := &recordingMailer{}
	users.On("GetByEmail", mock.Anything, "a@x.io").Return(user, nil)
	resets.On("InvalidateForUser", mock.Anything, int64(3), mock.Anything).Return(nil)

	var stored *domain.PasswordReset
	resets.On("Create", mock.Anything, mock.AnythingOfType("*domain.PasswordReset")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.PasswordReset) }).
		Return(nil)

	svc := newTestService(users, resets, mail)
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@x.io"))

	require.NotNil(t, stored)
	assert.Equal(t, []string{"a@x.io"}, mail.to)

	const marker = "https://propzy.test/reset-password?token="
	idx := strings.Index(mail.body, marker)
	require.GreaterOrEqual(t, idx, 0)
	raw := mail.body[idx+len(marker) : idx+len(marker)+64]

	assert.Equal(t, hashToken(raw, "pepper"), stored.TokenHash)
	assert.NotEqual(t, raw, stored.TokenHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, time.Minute)
}

func TestResetPassword(t *testing.T) {
	now := time.Now().UTC()
	raw := "abc123"
	hash := hashToken(raw, "pepper")

	t.Run("valid token updates password", func(t *testing.T) {
		users := new(mockUserRepo)
		resets := new(mockResetRepo)
		resets.On("GetByHash", mock.Anything, hash).
			Return(&domain.PasswordReset{ID: 9, UserID: 3, ExpiresAt: now.Add(time.Hour)}, nil)
		resets.On("MarkUsed", mock.Anything, int64(9), mock.Anything).Return(true, nil)
		users.On("UpdatePassword", mock.Anything, int64(3), mock.AnythingOfType("string")).Return(nil)

		svc := newTestService(users, resets, &recordingMailer{})
		require.NoError(t, svc.ResetPassword(context.Background(), raw, "newpass"))
		users.AssertExpectations(t)
	})

	t.Run("expired token", func(t *testing.T) {
		resets := new(mockResetRepo)
		resets.On("GetByHash", mock.Anything, hash).
			Return(&domain.PasswordReset{ID: 9, UserID: 3, ExpiresAt: now.Add(-time.Minute)}, nil)

		svc := newTestService(new(mockUserRepo), resets, &recordingMailer{})
		assert.ErrorIs(t, svc.ResetPassword(context.Background(), raw, "newpass"), ErrInvalidResetToken)
	})

	t.Run("already used token", func(t *testing.T) {
		resets := new(mockResetRepo)
		resets.On("GetByHash", mock.Anything, hash).
			Return(&domain.PasswordReset{ID: 9, UserID: 3, ExpiresAt: now.Add(time.Hour)}, nil)
		resets.On("MarkUsed", mock.Anything, int64(9), mock.Anything).Return(false, nil)

		svc := newTestService(new(mockUserRepo), resets, &recordingMailer{})
		assert.ErrorIs(t, svc.ResetPassword(context.Background(), raw, "newpass"), ErrInvalidResetToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		resets := new(mockResetRepo)
		resets.On("GetByHash", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

		svc := newTestService(new(mockUserRepo), resets, &recordingMailer{})
		assert.ErrorIs(t, svc.ResetPassword(context.Background(), "nope", "newpass"), ErrInvalidResetToken)
	})

	t.Run("repository failure is surfaced", func(t *testing.T) {
		resets := new(mockResetRepo)
		resets.On("GetByHash", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		svc := newTestService(new(mockUserRepo), resets, &recordingMailer{})
		err := svc.ResetPassword(context.Background(), raw, "newpass")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidResetToken)
	})
}
