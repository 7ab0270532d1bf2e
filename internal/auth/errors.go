package auth

import "fmt"

// Generic reasons used when the gateway gives no message of its own.
const (
	LoginFailed    = "Error al iniciar sesión"
	RegisterFailed = "Error al registrar usuario"
)

// ValidationError is a local input check that failed before any network
// call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError is a rejected or failed login/register. Reason is what the user
// sees: the gateway's message verbatim, or a generic reason.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
