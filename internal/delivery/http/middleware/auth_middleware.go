package middleware

import (
	"context"
	"net/http"
	"strings"

	"medilink/internal/service"
	"medilink/pkg/jwt"
	"medilink/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	RoleIDKey    contextKey = "role_id"
	TokenIDKey   contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokenStore *service.TokenStore
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokenStore *service.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// bearerToken reads "Authorization: Bearer <token>". EventSource clients cannot set
// headers, so the access_token query parameter is accepted as a fallback.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("access_token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true
	}
	return parts[1], true
}

// verify returns the claims of a live access token, or a message for the 401.
func (m *AuthMiddleware) verify(r *http.Request, tokenString string) (*jwt.Claims, string, error) {
	if tokenString == "" {
		return nil, "Invalid authorization header format", nil
	}

	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, "Invalid or expired token", nil
	}

	if claims.TokenType != jwt.AccessToken {
		return nil, "Invalid token type", nil
	}

	valid, err := m.tokenStore.IsAccessValid(r.Context(), claims.UserID, claims.TokenID)
	if err != nil {
		return nil, "", err
	}
	if !valid {
		return nil, "Token has been revoked", nil
	}
	return claims, "", nil
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, present := bearerToken(r)
		if !present {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		claims, reason, err := m.verify(r, tokenString)
		if err != nil {
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if claims == nil {
			response.Unauthorized(w, reason)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// OptionalAuthenticate attaches the principal when a valid token is sent and lets
// anonymous requests through unchanged.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, present := bearerToken(r)
		if !present {
			next.ServeHTTP(w, r)
			return
		}
		claims, _, err := m.verify(r, tokenString)
		if err != nil || claims == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = WithPrincipal(ctx, claims.UserID, claims.Email, claims.RoleID)
	return context.WithValue(ctx, TokenIDKey, claims.TokenID)
}

// WithPrincipal stores the authenticated user on ctx.
func WithPrincipal(ctx context.Context, userID uuid.UUID, email string, roleID int) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	return context.WithValue(ctx, RoleIDKey, roleID)
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// GetRoleIDFromContext extracts role ID from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}
