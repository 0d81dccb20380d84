package factory

import (
	"context"
	"fmt"
	"log/slog"

	"taskbridge/internal/backend/jira"
	"taskbridge/internal/backend/trello"
	"taskbridge/internal/config"
	"taskbridge/internal/service"
)

// Default builds a factory seeded with the two built-in backends.
func Default(configs *config.Manager, log *slog.Logger) *Factory {
	return New(configs, map[string]Constructor{
		config.ServiceTrello: func(ctx context.Context, cfg config.ServiceConfig) (service.TaskService, error) {
			tc, ok := cfg.(*config.TrelloConfig)
			if !ok {
				return nil, fmt.Errorf("expected trello config, got %T", cfg)
			}
			return trello.New(ctx, tc, log)
		},
		config.ServiceJira: func(ctx context.Context, cfg config.ServiceConfig) (service.TaskService, error) {
			jc, ok := cfg.(*config.JiraConfig)
			if !ok {
				return nil, fmt.Errorf("expected jira config, got %T", cfg)
			}
			return jira.New(ctx, jc, log)
		},
	}, log)
}
