package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	coreuser "github.com/financeops/finance-management/internal/core/user"
)

// UserRepository is the narrow slice of the identity store the session
// path needs: credential lookup and identity loading.
type UserRepository interface {
	GetCredentials(username string) (passwordHash string, userID int64, isActive bool, err error)
	GetSessionUser(userID int64) (*coreuser.User, error)
	GetOTPSecret(userID int64) (string, error)
	SetOTPSecret(userID int64, secret string) error
	TouchLastLogin(userID int64) error
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetSessionUser(userID int64) (*coreuser.User, error)
	EnsureOTPSecret(userID int64) (code string, err error)
	VerifyUserOTP(userID int64, code string) error
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo UserRepository
	tokenGen TokenGenerator
	hasher   *PasswordHasher
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, hasher *PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		tokenGen: tokenGen,
		hasher:   hasher,
	}
}

func NewJWTTokenGenerator(secret string, tokenTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: tokenTTL,
	}
}

// Authenticate validates credentials and returns a bearer token. Lookup
// misses and bad passwords fail identically; only a disabled account is
// reported as its own case.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, isActive, err := s.userRepo.GetCredentials(dto.Username)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(dto.Password, storedHash) {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !isActive {
		return AuthTokens{}, ErrUserInactive
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(userID)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.userRepo.TouchLastLogin(userID); err != nil {
		// login still succeeds; the timestamp is advisory
		return AuthTokens{AccessToken: accessToken, TokenType: "bearer"}, nil
	}

	return AuthTokens{AccessToken: accessToken, TokenType: "bearer"}, nil
}

// ValidateAccessToken verifies the token signature and expiry.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateToken(tokenString)
}

// GetSessionUser loads the identity referenced by a verified token.
func (s *Service) GetSessionUser(userID int64) (*coreuser.User, error) {
	return s.userRepo.GetSessionUser(userID)
}

// EnsureOTPSecret provisions a TOTP secret on first use and returns the
// code for the current time step.
func (s *Service) EnsureOTPSecret(userID int64) (string, error) {
	secret, err := s.userRepo.GetOTPSecret(userID)
	if err != nil {
		return "", err
	}

	if secret == "" {
		secret, err = GenerateOTPSecret()
		if err != nil {
			return "", err
		}
		if err := s.userRepo.SetOTPSecret(userID, secret); err != nil {
			return "", err
		}
	}

	return CurrentOTP(secret)
}

// VerifyUserOTP checks the submitted code against the stored secret.
func (s *Service) VerifyUserOTP(userID int64, code string) error {
	secret, err := s.userRepo.GetOTPSecret(userID)
	if err != nil {
		return err
	}
	if secret == "" {
		return ErrOTPNotConfigured
	}
	if !VerifyOTP(secret, code) {
		return ErrInvalidOTP
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}

// GenerateAccessToken mints a signed token carrying the subject identity.
// The expiry boundary is exclusive: a token issued with a zero TTL is
// already expired.
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64) (string, error) {
	now := time.Now()
	subject := strconv.FormatInt(userID, 10)

	claims := &Claims{
		UserID: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken verifies signature and expiry. Every failure collapses to
// ErrInvalidToken so callers cannot distinguish tampering from expiry from
// malformed input.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// SubjectID parses the numeric subject out of verified claims.
func (c *Claims) SubjectID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid token subject")
	}
	return id, nil
}
