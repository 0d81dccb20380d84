// Package config holds per-backend configuration loaded from the
// environment, with eager validation.
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Service names used as registry keys.
const (
	ServiceTrello = "trello"
	ServiceJira   = "jira"
)

// Environment variable names.
const (
	EnvTrelloAPIKey    = "TRELLO_API_KEY"
	EnvTrelloAPIToken  = "TRELLO_API_TOKEN"
	EnvTrelloBoardName = "TRELLO_BOARD_NAME"

	EnvJiraServerURL  = "JIRA_SERVER_URL"
	EnvJiraUsername   = "JIRA_USERNAME"
	EnvJiraAPIToken   = "JIRA_API_TOKEN"
	EnvJiraProjectKey = "JIRA_PROJECT_KEY"

	EnvActiveService = "ACTIVE_TASK_SERVICE"
)

// minimum credential lengths accepted by Validate
const (
	minCredentialLen = 10
	minProjectKeyLen = 2
)

// loadDotenv reads a .env file once per process if one is present.
// A missing file is not an error.
var loadDotenv = sync.OnceFunc(func() {
	_ = godotenv.Load()
})

// ServiceConfig is a validated, named backend configuration.
type ServiceConfig interface {
	// ServiceName returns the registry key ("trello" or "jira").
	ServiceName() string

	// Validate reports missing keys as *MissingConfigError and malformed
	// values as *InvalidConfigError.
	Validate() error
}

// TrelloConfig carries Trello credentials and the board to operate on.
type TrelloConfig struct {
	APIKey    string
	APIToken  string
	BoardName string
}

func (c *TrelloConfig) ServiceName() string { return ServiceTrello }

func (c *TrelloConfig) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if c.APIToken == "" {
		missing = append(missing, "api_token")
	}
	if c.BoardName == "" {
		missing = append(missing, "board_name")
	}
	if len(missing) > 0 {
		return &MissingConfigError{Service: ServiceTrello, Keys: missing}
	}
	if len(c.APIKey) < minCredentialLen {
		return &InvalidConfigError{Service: ServiceTrello, Key: "api_key", Reason: "API key too short"}
	}
	if len(c.APIToken) < minCredentialLen {
		return &InvalidConfigError{Service: ServiceTrello, Key: "api_token", Reason: "API token too short"}
	}
	return nil
}

// TrelloFromEnv reads Trello settings from the environment.
func TrelloFromEnv() *TrelloConfig {
	loadDotenv()
	return &TrelloConfig{
		APIKey:    os.Getenv(EnvTrelloAPIKey),
		APIToken:  os.Getenv(EnvTrelloAPIToken),
		BoardName: os.Getenv(EnvTrelloBoardName),
	}
}

// JiraConfig carries Jira credentials and the project to operate on.
type JiraConfig struct {
	ServerURL  string
	Username   string
	APIToken   string
	ProjectKey string
}

func (c *JiraConfig) ServiceName() string { return ServiceJira }

func (c *JiraConfig) Validate() error {
	var missing []string
	if c.ServerURL == "" {
		missing = append(missing, "server_url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.APIToken == "" {
		missing = append(missing, "api_token")
	}
	if c.ProjectKey == "" {
		missing = append(missing, "project_key")
	}
	if len(missing) > 0 {
		return &MissingConfigError{Service: ServiceJira, Keys: missing}
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return &InvalidConfigError{Service: ServiceJira, Key: "server_url", Reason: "must start with http:// or https://"}
	}
	if len(c.ProjectKey) < minProjectKeyLen {
		return &InvalidConfigError{Service: ServiceJira, Key: "project_key", Reason: "project key too short"}
	}
	return nil
}

// JiraFromEnv reads Jira settings from the environment.
func JiraFromEnv() *JiraConfig {
	loadDotenv()
	return &JiraConfig{
		ServerURL:  os.Getenv(EnvJiraServerURL),
		Username:   os.Getenv(EnvJiraUsername),
		APIToken:   os.Getenv(EnvJiraAPIToken),
		ProjectKey: os.Getenv(EnvJiraProjectKey),
	}
}

// FromEnv loads and validates the configuration for a named service.
func FromEnv(serviceName string) (ServiceConfig, error) {
	var cfg ServiceConfig
	switch serviceName {
	case ServiceTrello:
		cfg = TrelloFromEnv()
	case ServiceJira:
		cfg = JiraFromEnv()
	default:
		return nil, &UnknownServiceError{ServiceType: serviceName}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ActiveService returns the explicitly selected backend name, or "" when
// none is configured.
func ActiveService() string {
	loadDotenv()
	return os.Getenv(EnvActiveService)
}
