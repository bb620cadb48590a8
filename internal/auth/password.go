package auth

import (
	"crypto/rand"
	"encoding/base32"
	"time"
	"unicode/utf8"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with the 72-byte input limit handled
// consistently on the hash and verify paths.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// safePassword truncates the password to at most 72 bytes, then strips any
// invalid trailing UTF-8 sequence the cut may have produced. The same
// truncation must run before hashing and before verification, otherwise
// long passwords stop verifying.
func safePassword(password string) []byte {
	b := []byte(password)
	if len(b) <= 72 {
		return b
	}
	b = b[:72]
	for len(b) > 0 {
		r, size := utf8.DecodeLastRune(b)
		if r == utf8.RuneError && size <= 1 {
			b = b[:len(b)-1]
			continue
		}
		break
	}
	return b
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(safePassword(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash. A malformed
// hash verifies false rather than erroring.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), safePassword(password)) == nil
}

const otpSecretBytes = 20

var otpValidateOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateOTPSecret returns a new random base32-encoded TOTP secret.
func GenerateOTPSecret() (string, error) {
	buf := make([]byte, otpSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// CurrentOTP returns the code for the current 30-second step.
func CurrentOTP(secret string) (string, error) {
	return totp.GenerateCodeCustom(secret, time.Now().UTC(), otpValidateOpts)
}

// VerifyOTP accepts codes from the current step and one step either side to
// tolerate clock skew.
func VerifyOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), otpValidateOpts)
	return err == nil && ok
}
