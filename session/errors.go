package session

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrCredentialsRejected = errors.New("credentials rejected")

	ErrRegistrationRejected = errors.New("registration rejected")
	ErrPasswordMismatch     = fmt.Errorf("%w: passwords do not match", ErrRegistrationRejected)
	ErrRoleNotAllowed       = fmt.Errorf("%w: role cannot self-register", ErrRegistrationRejected)
	// ErrRegisteredLoginFailed means the account exists but signing in right
	// after creating it failed. The visitor can retry from the login form.
	ErrRegisteredLoginFailed = errors.New("account created but sign-in failed")

	// Implicit logouts. The session has already been cleared when these are returned.
	ErrIdentityUnavailable = errors.New("identity could not be resolved")
	ErrSessionExpired      = errors.New("session expired")
	ErrRoleChanged         = errors.New("account role changed since sign-in")

	ErrSubmissionInProgress = errors.New("another sign-in is already in progress")
	ErrSuperseded           = errors.New("sign-in was superseded by a logout")
	ErrStorage              = errors.New("session storage unavailable")
)
