package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	coreuser "github.com/financeops/finance-management/internal/core/user"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// UserFromContext returns the authenticated identity placed in the request
// context by the auth middleware.
func UserFromContext(ctx context.Context) (*coreuser.User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*coreuser.User)
	return u, ok
}

// TokenGenerator mints and verifies bearer tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims carries the token subject. Payload fields are an implementation
// detail, not a public contract; only expiry is enforced.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTTokenGenerator signs stateless HS256 tokens with one process-wide
// secret. Rotating the secret invalidates every outstanding token.
type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserInactive       = errors.New("user is inactive")
	ErrOTPNotConfigured   = errors.New("otp not configured")
	ErrInvalidOTP         = errors.New("invalid otp")
)
