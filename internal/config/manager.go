package config

import "sync"

// Manager holds validated service configurations. It is an explicit value
// constructed at process start and passed to the factory, not package-level
// state.
type Manager struct {
	mu      sync.RWMutex
	configs map[string]ServiceConfig
}

// NewManager creates an empty configuration manager.
func NewManager() *Manager {
	return &Manager{configs: make(map[string]ServiceConfig)}
}

// Register validates and stores a configuration under its service name.
func (m *Manager) Register(cfg ServiceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.ServiceName()] = cfg
	return nil
}

// Get returns the configuration for a service name.
func (m *Manager) Get(serviceName string) (ServiceConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[serviceName]
	if !ok {
		return nil, &NotFoundError{Service: serviceName}
	}
	return cfg, nil
}

// Has reports whether a configuration is registered for the service.
func (m *Manager) Has(serviceName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.configs[serviceName]
	return ok
}

// LoadFromEnv loads, validates, and registers a service configuration from
// the environment.
func (m *Manager) LoadFromEnv(serviceName string) (ServiceConfig, error) {
	cfg, err := FromEnv(serviceName)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[serviceName] = cfg
	return cfg, nil
}

// Services lists the registered service names.
func (m *Manager) Services() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.configs))
	for name := range m.configs {
		names = append(names, name)
	}
	return names
}

// Help returns the required environment variables for a service, shown when
// validation fails.
func Help(serviceName string) string {
	switch serviceName {
	case ServiceTrello:
		return "Trello requires the following environment variables:\n" +
			"- TRELLO_API_KEY: your Trello API key\n" +
			"- TRELLO_API_TOKEN: your Trello API token\n" +
			"- TRELLO_BOARD_NAME: name of the Trello board to use\n" +
			"Get your key and token from https://trello.com/app-key"
	case ServiceJira:
		return "Jira requires the following environment variables:\n" +
			"- JIRA_SERVER_URL: your Jira server URL (e.g. https://yourcompany.atlassian.net)\n" +
			"- JIRA_USERNAME: your Jira username or email\n" +
			"- JIRA_API_TOKEN: your Jira API token\n" +
			"- JIRA_PROJECT_KEY: the project key to use\n" +
			"Create an API token at https://id.atlassian.com/manage-profile/security/api-tokens"
	}
	return "no configuration help available for service type: " + serviceName
}
