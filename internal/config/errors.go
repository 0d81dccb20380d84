package config

import (
	"fmt"
	"strings"
)

// MissingConfigError lists exactly which required keys are absent.
type MissingConfigError struct {
	Service string
	Keys    []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration for %s: %s", e.Service, strings.Join(e.Keys, ", "))
}

// InvalidConfigError reports a present but malformed value.
type InvalidConfigError struct {
	Service string
	Key     string
	Reason  string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s.%s: %s", e.Service, e.Key, e.Reason)
}

// UnknownServiceError reports a service type outside the registry.
type UnknownServiceError struct {
	ServiceType string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service type: %s", e.ServiceType)
}

// NotFoundError reports a lookup for a service with no registered config.
type NotFoundError struct {
	Service string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no configuration found for service %q", e.Service)
}
