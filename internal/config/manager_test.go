package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterAndGet(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Register(validTrello()))
	assert.True(t, m.Has(ServiceTrello))
	assert.False(t, m.Has(ServiceJira))

	cfg, err := m.Get(ServiceTrello)
	require.NoError(t, err)
	assert.Equal(t, ServiceTrello, cfg.ServiceName())

	_, err = m.Get(ServiceJira)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, ServiceJira, notFound.Service)
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	m := NewManager()
	err := m.Register(&TrelloConfig{APIKey: "short", APIToken: "short", BoardName: "b"})
	assert.Error(t, err)
	assert.False(t, m.Has(ServiceTrello))
}

func TestManagerLoadFromEnv(t *testing.T) {
	t.Setenv(EnvJiraServerURL, "https://example.atlassian.net")
	t.Setenv(EnvJiraUsername, "dev@example.com")
	t.Setenv(EnvJiraAPIToken, "jira-token-1234567890")
	t.Setenv(EnvJiraProjectKey, "TM")

	m := NewManager()
	cfg, err := m.LoadFromEnv(ServiceJira)
	require.NoError(t, err)
	assert.Equal(t, ServiceJira, cfg.ServiceName())
	assert.True(t, m.Has(ServiceJira))
	assert.Equal(t, []string{ServiceJira}, m.Services())
}
