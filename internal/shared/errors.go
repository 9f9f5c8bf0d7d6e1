package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors. Messages mirror what the sign-in form shows.
	ErrLoginFailed      = fmt.Errorf("Login failed")
	ErrLoginError       = fmt.Errorf("An error occurred during login")
	ErrEmailRegistered  = fmt.Errorf("Email already registered")
	ErrInvalidAPIKey    = fmt.Errorf("Invalid TMDb API key")
	ErrPasswordMismatch = fmt.Errorf("Passwords do not match")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoCurrentUser    = fmt.Errorf("no current user")

	// Storage errors
	ErrStorage        = fmt.Errorf("storage failure")
	ErrCorruptRecord  = fmt.Errorf("malformed stored record")
	ErrRecordNotFound = fmt.Errorf("record not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMovieNotFound      = fmt.Errorf("movie not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
