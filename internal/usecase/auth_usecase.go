package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/delivery/http/middleware"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"
	"medilink/internal/service"
	"medilink/pkg/jwt"
	"medilink/pkg/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrOTPDelivery        = errors.New("failed to deliver verification code")
)

type AuthUsecase interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*session.Session, error)
	RequestOTP(ctx context.Context, req *dto.OTPRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*session.Session, error)
	Logout(ctx context.Context, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*session.Session, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
	GetSessionStatus(ctx context.Context) (*dto.SessionStatusResponse, error)
	UpdateDeviceToken(ctx context.Context, req *dto.DeviceTokenRequest) error
	SubscribeEvents(ctx context.Context) (<-chan session.Event, func(), error)
}

type authUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   *service.TokenStore
	otpService   *service.OTPService
	eventBus     *service.AuthEventBus
	auditService service.AuditService
}

func NewAuthUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore *service.TokenStore,
	otpService *service.OTPService,
	eventBus *service.AuthEventBus,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		transactor:   transactor,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		otpService:   otpService,
		eventBus:     eventBus,
		auditService: auditService,
	}
}

// Signup creates an unconfirmed donor account and mails a signup code. Signing up again
// with an unconfirmed address replaces the stored password and re-sends the code, so only
// the person who receives the code decides which password the account ends up with.
func (u *authUsecase) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil && existing.IsEmailConfirmed() {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := existing
	if user != nil {
		err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			rows, err := u.userRepo.ResetUnconfirmedPassword(ctx, user.ID, string(hashedPassword))
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrEmailAlreadyExists
			}
			if err := u.auditService.LogUpdate(ctx, &user.ID, entity.AuditActionUserSignup, "user", user.ID.String(), nil, map[string]string{"email": user.Email}); err != nil {
				u.log.Warnf("Failed to create audit log: %+v", err)
			}
			return nil
		})
		if err != nil {
			if err == ErrEmailAlreadyExists {
				return nil, err
			}
			u.log.Warnf("Failed to reset unconfirmed password: %+v", err)
			return nil, err
		}
		user.Password = string(hashedPassword)
	} else {
		user = &entity.User{
			Email:    email,
			Password: string(hashedPassword),
			RoleID:   entity.RoleIDDonor,
			IsActive: true,
		}

		err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := u.userRepo.Create(ctx, user); err != nil {
				return err
			}
			if err := u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserSignup, "user", user.ID.String(), map[string]string{"email": user.Email}); err != nil {
				u.log.Warnf("Failed to create audit log: %+v", err)
			}
			return nil
		})
		if err != nil {
			if isDuplicateKeyError(err, "email") {
				return nil, ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return nil, err
		}
	}

	if err := u.otpService.Issue(ctx, service.OTPPurposeSignup, user.Email); err != nil {
		u.log.Warnf("Failed to issue signup OTP for %s: %+v", user.Email, err)
		return nil, ErrOTPDelivery
	}

	return converter.UserToResponse(user), nil
}

// VerifyOTP checks a signup or email code and signs the user in. A signup code also
// confirms the email address.
func (u *authUsecase) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*session.Session, error) {
	purpose := service.OTPPurpose(req.Type)
	if !purpose.IsValid() {
		return nil, ErrInvalidOTP
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := u.otpService.Verify(ctx, purpose, email, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			return nil, ErrInvalidOTP
		}
		u.log.Warnf("Failed to verify OTP: %+v", err)
		return nil, err
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidOTP
	}

	action := entity.AuditActionUserLogin
	if purpose == service.OTPPurposeSignup || !user.IsEmailConfirmed() {
		now := time.Now().UTC()
		if err := u.userRepo.ConfirmEmail(ctx, user.ID, now); err != nil {
			u.log.Warnf("Failed to confirm email for %s: %+v", user.ID, err)
			return nil, err
		}
		if !user.IsEmailConfirmed() {
			user.EmailConfirmedAt = &now
			action = entity.AuditActionUserConfirm
		}
	}

	if err := u.auditService.LogCreate(ctx, &user.ID, action, "user", user.ID.String(), nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return u.signIn(ctx, user, session.EventSignedIn)
}

// RequestOTP mails a passwordless sign-in code to an admin. Unknown or non-admin
// addresses get no mail and no error, so the endpoint does not reveal accounts.
func (u *authUsecase) RequestOTP(ctx context.Context, req *dto.OTPRequest) error {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil || !user.IsAdmin() || !user.IsActive {
		u.log.Infof("OTP requested for non-admin address %s, ignoring", req.Email)
		return nil
	}

	if err := u.otpService.Issue(ctx, service.OTPPurposeEmail, user.Email); err != nil {
		u.log.Warnf("Failed to issue login OTP for %s: %+v", user.Email, err)
		return ErrOTPDelivery
	}
	return nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*session.Session, error) {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailConfirmed() {
		return nil, ErrEmailNotConfirmed
	}

	if err := u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(), nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	return u.signIn(ctx, user, session.EventSignedIn)
}

func (u *authUsecase) Logout(ctx context.Context, refreshTokenID string) error {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}
	accessTokenID, _ := middleware.GetTokenIDFromContext(ctx)

	if err := u.tokenStore.Revoke(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionUserLogout, "user", userID.String(), nil); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.publish(ctx, userID, session.Event{Type: session.EventSignedOut})
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*session.Session, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	consumed, err := u.tokenStore.ConsumeRefresh(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !consumed {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	return u.signIn(ctx, user, session.EventTokenRefreshed)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// GetSessionStatus classifies the caller. Anonymous callers and lookup failures land on
// the entry route.
func (u *authUsecase) GetSessionStatus(ctx context.Context) (*dto.SessionStatusResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return &dto.SessionStatusResponse{Route: session.RouteEntry}, nil
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return &dto.SessionStatusResponse{Route: session.RouteEntry}, nil
	}
	if user == nil {
		return &dto.SessionStatusResponse{Route: session.RouteEntry}, nil
	}

	snapshot := &session.Session{User: converter.UserToSessionUser(user)}
	return &dto.SessionStatusResponse{Session: snapshot, Route: session.Classify(snapshot)}, nil
}

func (u *authUsecase) UpdateDeviceToken(ctx context.Context, req *dto.DeviceTokenRequest) error {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return err
	}

	if err := u.userRepo.UpdateDeviceToken(ctx, userID, req.Token); err != nil {
		u.log.Warnf("Failed to update device token for %s: %+v", userID, err)
		return err
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == nil && user != nil {
		u.publish(ctx, userID, session.Event{
			Type:    session.EventUserUpdated,
			Session: &session.Session{User: converter.UserToSessionUser(user)},
		})
	}
	return nil
}

func (u *authUsecase) SubscribeEvents(ctx context.Context) (<-chan session.Event, func(), error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, nil, err
	}
	return u.eventBus.Subscribe(ctx, userID)
}

// signIn issues and whitelists a token pair, then announces the new session.
func (u *authUsecase) signIn(ctx context.Context, user *entity.User, eventType session.EventType) (*session.Session, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Store(ctx, user.ID, accessTokenID, u.jwtService.GetAccessExpiry(), refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	s := &session.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(u.jwtService.GetAccessExpiry()).UTC(),
		User:         converter.UserToSessionUser(user),
	}

	u.publish(ctx, user.ID, session.Event{Type: eventType, Session: &session.Session{User: s.User, ExpiresAt: s.ExpiresAt}})
	return s, nil
}

// publish is best effort; a missed event only delays a client's re-route.
func (u *authUsecase) publish(ctx context.Context, userID uuid.UUID, event session.Event) {
	if err := u.eventBus.Publish(ctx, userID, event); err != nil {
		u.log.Warnf("Failed to publish %s event for %s: %+v", event.Type, userID, err)
	}
}
