// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"taskbridge/internal/config"
	"taskbridge/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown command).
	UserError = 1

	// ConfigError indicates missing or malformed backend configuration.
	ConfigError = 2

	// AuthError indicates the backend rejected the credentials.
	AuthError = 3

	// BackendError indicates a backend/API/network error.
	BackendError = 4
)

// FromError maps an error to the exit code for its failure class.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var missingCfg *config.MissingConfigError
	var invalidCfg *config.InvalidConfigError
	var unknownSvc *config.UnknownServiceError
	if errors.As(err, &missingCfg) || errors.As(err, &invalidCfg) || errors.As(err, &unknownSvc) {
		return ConfigError
	}

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return AuthError
	}

	var connErr *service.ConnectionError
	if errors.As(err, &connErr) {
		return BackendError
	}

	return UserError
}
