package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifyOTPDTO for two-factor confirmation requests.
type VerifyOTPDTO struct {
	OTPCode string `json:"otp_code"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d VerifyOTPDTO) Validate() error {
	if d.OTPCode == "" {
		return ValidationError{Msg: "otp_code is required"}
	}
	return nil
}
