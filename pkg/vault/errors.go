package vault

import "fmt"

// Common vault client errors.
var (
	// ErrBadCredentials is returned when the server rejects the login
	// with HTTP 401. This is user-actionable: check email and password.
	ErrBadCredentials = fmt.Errorf("incorrect email or password")

	// ErrAuthUnavailable is returned for any other login failure
	// (network error, unexpected status). Usually transient.
	ErrAuthUnavailable = fmt.Errorf("login failed")

	// ErrMalformedResponse is returned when a 200 response does not carry
	// the fields the API contract promises.
	ErrMalformedResponse = fmt.Errorf("malformed server response")

	// ErrNotAuthenticated is returned when an authenticated call is made
	// before a successful login.
	ErrNotAuthenticated = fmt.Errorf("client is not authenticated")
)
