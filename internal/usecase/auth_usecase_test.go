package usecase

import (
	"context"
	"testing"
	"time"

	"medilink/internal/delivery/dto"
	"medilink/internal/delivery/http/middleware"
	"medilink/internal/domain/entity"
	"medilink/internal/service"
	"medilink/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	uc     AuthUsecase
	users  *memUserRepo
	mailer *captureMailer
	tokens *service.TokenStore
	bus    *service.AuthEventBus
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	log := quietLogger()
	rdb := newTestRedis(t)
	users := newMemUserRepo()
	mailer := newCaptureMailer()
	tokens := service.NewTokenStore(rdb)
	bus := service.NewAuthEventBus(rdb, log)

	uc := NewAuthUsecase(
		passthroughTransactor{},
		log,
		users,
		newTestJWT(),
		tokens,
		service.NewOTPService(rdb, mailer, 5*time.Minute, 6, 5),
		bus,
		service.NewAuditService(log, &memAuditRepo{}),
	)
	return &authFixture{uc: uc, users: users, mailer: mailer, tokens: tokens, bus: bus}
}

func (f *authFixture) signUpAndVerify(t *testing.T, email, password string) *session.Session {
	t.Helper()
	ctx := context.Background()
	_, err := f.uc.Signup(ctx, &dto.SignupRequest{Email: email, Password: password})
	require.NoError(t, err)

	s, err := f.uc.VerifyOTP(ctx, &dto.VerifyOTPRequest{
		Email: email,
		Token: f.mailer.code(t, service.OTPPurposeSignup, email),
		Type:  string(service.OTPPurposeSignup),
	})
	require.NoError(t, err)
	return s
}

func TestSignupVerifyAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.uc.Signup(ctx, &dto.SignupRequest{Email: "Ali@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ali@example.com", user.Email)
	assert.Equal(t, entity.RoleDonor, user.Role)
	assert.Nil(t, user.EmailConfirmedAt)

	_, err = f.uc.Login(ctx, &dto.LoginRequest{Email: "ali@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	_, err = f.uc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: "ali@example.com", Token: "000000", Type: "signup"})
	assert.ErrorIs(t, err, ErrInvalidOTP)

	s, err := f.uc.VerifyOTP(ctx, &dto.VerifyOTPRequest{
		Email: "ali@example.com",
		Token: f.mailer.code(t, service.OTPPurposeSignup, "ali@example.com"),
		Type:  "signup",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
	assert.Equal(t, session.RouteMain, session.Classify(s))

	s, err = f.uc.Login(ctx, &dto.LoginRequest{Email: "ali@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, s.User.ID)

	_, err = f.uc.Login(ctx, &dto.LoginRequest{Email: "ali@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.uc.Signup(ctx, &dto.SignupRequest{Email: "ali@example.com", Password: "other12"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSignupAgainReplacesUnconfirmedPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.uc.Signup(ctx, &dto.SignupRequest{Email: "victim@example.com", Password: "attacker1"})
	require.NoError(t, err)
	f.signUpAndVerify(t, "victim@example.com", "victim123")

	_, err = f.uc.Login(ctx, &dto.LoginRequest{Email: "victim@example.com", Password: "attacker1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := f.uc.Login(ctx, &dto.LoginRequest{Email: "victim@example.com", Password: "victim123"})
	require.NoError(t, err)
	assert.Equal(t, "victim@example.com", s.User.Email)

	_, err = f.uc.Signup(ctx, &dto.SignupRequest{Email: "victim@example.com", Password: "attacker2"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	_, err = f.uc.Login(ctx, &dto.LoginRequest{Email: "victim@example.com", Password: "victim123"})
	assert.NoError(t, err)
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.uc.Signup(ctx, &dto.SignupRequest{Email: "sara@example.com", Password: "secret1"})
	require.NoError(t, err)
	req := &dto.VerifyOTPRequest{
		Email: "sara@example.com",
		Token: f.mailer.code(t, service.OTPPurposeSignup, "sara@example.com"),
		Type:  "signup",
	}

	_, err = f.uc.VerifyOTP(ctx, req)
	require.NoError(t, err)
	_, err = f.uc.VerifyOTP(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newAuthFixture(t)
	s := f.signUpAndVerify(t, "ali@example.com", "secret1")
	ctx := context.Background()

	next, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: s.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, s.RefreshToken, next.RefreshToken)

	_, err = f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: s.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: next.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestOTPOnlyMailsAdmins(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("unused"), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, f.users.Create(ctx, &entity.User{Email: "admin@example.com", Password: string(hash), RoleID: entity.RoleIDAdmin, IsActive: true, EmailConfirmedAt: &now}))
	require.NoError(t, f.users.Create(ctx, &entity.User{Email: "donor@example.com", Password: string(hash), RoleID: entity.RoleIDDonor, IsActive: true, EmailConfirmedAt: &now}))

	require.NoError(t, f.uc.RequestOTP(ctx, &dto.OTPRequest{Email: "donor@example.com"}))
	require.NoError(t, f.uc.RequestOTP(ctx, &dto.OTPRequest{Email: "nobody@example.com"}))
	assert.Equal(t, 0, f.mailer.sent())

	require.NoError(t, f.uc.RequestOTP(ctx, &dto.OTPRequest{Email: "admin@example.com"}))
	s, err := f.uc.VerifyOTP(ctx, &dto.VerifyOTPRequest{
		Email: "admin@example.com",
		Token: f.mailer.code(t, service.OTPPurposeEmail, "admin@example.com"),
		Type:  "email",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, s.User.Role)
}

func TestSessionStatusAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	s := f.signUpAndVerify(t, "ali@example.com", "secret1")

	status, err := f.uc.GetSessionStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status.Session)
	assert.Equal(t, session.RouteEntry, status.Route)

	ctx := middleware.WithPrincipal(context.Background(), s.User.ID, s.User.Email, entity.RoleIDDonor)
	status, err = f.uc.GetSessionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.RouteMain, status.Route)

	events, unsubscribe, err := f.uc.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, f.uc.Logout(ctx, ""))

	select {
	case ev := <-events:
		assert.Equal(t, session.EventSignedOut, ev.Type)
		assert.Equal(t, session.RouteEntry, ev.Route)
	case <-time.After(2 * time.Second):
		t.Fatal("no SIGNED_OUT event received")
	}
}

func TestUpdateDeviceTokenNeedsPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	err := f.uc.UpdateDeviceToken(context.Background(), &dto.DeviceTokenRequest{Token: "tok"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	s := f.signUpAndVerify(t, "ali@example.com", "secret1")
	ctx := middleware.WithPrincipal(context.Background(), s.User.ID, s.User.Email, entity.RoleIDDonor)
	require.NoError(t, f.uc.UpdateDeviceToken(ctx, &dto.DeviceTokenRequest{Token: "tok"}))

	user, err := f.users.FindByID(context.Background(), s.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok", user.DeviceToken)
}
