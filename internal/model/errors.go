package model

import "errors"

var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateAccount   = errors.New("account already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOTPNotFound        = errors.New("OTP not found")
	ErrOTPExpired         = errors.New("OTP expired")
	ErrOTPMismatch        = errors.New("invalid OTP")
	ErrNoActiveSession    = errors.New("no active session")
	ErrDeliveryFailure    = errors.New("failed to send OTP")
)

// IsDomainError reports whether err belongs to the error taxonomy callers
// are expected to handle. Anything else is treated as a backend failure and
// is eligible for the remote-to-local fallback.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrDuplicateAccount,
		ErrInvalidCredentials,
		ErrOTPNotFound,
		ErrOTPExpired,
		ErrOTPMismatch,
		ErrNoActiveSession,
		ErrDeliveryFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
