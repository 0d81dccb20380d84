package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbridge/internal/config"
	"taskbridge/internal/service"
	"taskbridge/internal/testutil"
)

func validTrelloConfig() *config.TrelloConfig {
	return &config.TrelloConfig{
		APIKey:    "trello-key-1234567890",
		APIToken:  "trello-token-1234567890",
		BoardName: "Sprint Board",
	}
}

func stubConstructor(svc service.TaskService, err error) Constructor {
	return func(ctx context.Context, cfg config.ServiceConfig) (service.TaskService, error) {
		return svc, err
	}
}

func newTestFactory(t *testing.T, ctors map[string]Constructor) *Factory {
	t.Helper()
	return New(config.NewManager(), ctors, nil)
}

func TestCreateUnknownService(t *testing.T) {
	f := newTestFactory(t, nil)
	_, err := f.Create(context.Background(), "asana", nil)
	var unknown *config.UnknownServiceError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "asana", unknown.ServiceType)
}

func TestCreateWithExplicitConfig(t *testing.T) {
	fake := testutil.NewFakeService()
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(fake, nil),
	})

	svc, err := f.Create(context.Background(), config.ServiceTrello, validTrelloConfig())
	require.NoError(t, err)
	assert.Same(t, fake, svc)
}

func TestCreateRejectsInvalidConfig(t *testing.T) {
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(testutil.NewFakeService(), nil),
	})

	_, err := f.Create(context.Background(), config.ServiceTrello, &config.TrelloConfig{})
	var missing *config.MissingConfigError
	require.ErrorAs(t, err, &missing)
}

func TestCreateWrapsConstructionFailure(t *testing.T) {
	boom := errors.New("401 unauthorized")
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(nil, boom),
	})

	_, err := f.Create(context.Background(), config.ServiceTrello, validTrelloConfig())
	var authErr *service.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, config.ServiceTrello, authErr.Backend)
	assert.ErrorIs(t, err, boom)
}

func TestRegister(t *testing.T) {
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(testutil.NewFakeService(), nil),
	})

	require.NoError(t, f.Register("linear", stubConstructor(testutil.NewFakeService(), nil)))
	assert.ElementsMatch(t, []string{config.ServiceTrello, "linear"}, f.Supported())

	assert.Error(t, f.Register(config.ServiceTrello, stubConstructor(nil, nil)))
	assert.Error(t, f.Register("empty", nil))
}

func setJiraEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvJiraServerURL, "https://example.atlassian.net")
	t.Setenv(config.EnvJiraUsername, "dev@example.com")
	t.Setenv(config.EnvJiraAPIToken, "jira-token-1234567890")
	t.Setenv(config.EnvJiraProjectKey, "TM")
}

func clearTrelloEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvTrelloAPIKey, "")
	t.Setenv(config.EnvTrelloAPIToken, "")
	t.Setenv(config.EnvTrelloBoardName, "")
}

func TestCreateDefaultFallsBackThroughPreferenceOrder(t *testing.T) {
	clearTrelloEnv(t)
	setJiraEnv(t)
	t.Setenv(config.EnvActiveService, "")

	jiraFake := testutil.NewFakeService()
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(nil, errors.New("should not be reached")),
		config.ServiceJira:   stubConstructor(jiraFake, nil),
	})

	svc, err := f.CreateDefault(context.Background())
	require.NoError(t, err)
	assert.Same(t, jiraFake, svc)
}

func TestCreateDefaultHonorsActiveService(t *testing.T) {
	setJiraEnv(t)
	t.Setenv(config.EnvActiveService, config.ServiceJira)

	jiraFake := testutil.NewFakeService()
	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(nil, errors.New("should not be reached")),
		config.ServiceJira:   stubConstructor(jiraFake, nil),
	})

	svc, err := f.CreateDefault(context.Background())
	require.NoError(t, err)
	assert.Same(t, jiraFake, svc)
}

func TestCreateDefaultNoConfiguredBackend(t *testing.T) {
	clearTrelloEnv(t)
	t.Setenv(config.EnvJiraServerURL, "")
	t.Setenv(config.EnvJiraUsername, "")
	t.Setenv(config.EnvJiraAPIToken, "")
	t.Setenv(config.EnvJiraProjectKey, "")
	t.Setenv(config.EnvActiveService, "")

	f := newTestFactory(t, map[string]Constructor{
		config.ServiceTrello: stubConstructor(testutil.NewFakeService(), nil),
		config.ServiceJira:   stubConstructor(testutil.NewFakeService(), nil),
	})

	_, err := f.CreateDefault(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid service configuration found")
}
