// Package factory selects and constructs task service backends.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"taskbridge/internal/config"
	"taskbridge/internal/service"
)

// Constructor builds a backend from a validated configuration.
type Constructor func(ctx context.Context, cfg config.ServiceConfig) (service.TaskService, error)

// preferenceOrder is the fixed fallback sequence for CreateDefault.
var preferenceOrder = []string{config.ServiceTrello, config.ServiceJira}

// Factory creates task service instances. Construct one at process start
// and pass it by reference; there is no package-level registry.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	configs      *config.Manager
	log          *slog.Logger
}

// New creates a factory seeded with the built-in backends.
func New(configs *config.Manager, constructors map[string]Constructor, log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	reg := make(map[string]Constructor, len(constructors))
	for name, ctor := range constructors {
		reg[name] = ctor
	}
	return &Factory{
		constructors: reg,
		configs:      configs,
		log:          log,
	}
}

// Register adds a backend constructor at runtime. This is an extensibility
// hook; the built-in backends are registered by New.
func (f *Factory) Register(serviceName string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("register %s: nil constructor", serviceName)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.constructors[serviceName]; exists {
		return fmt.Errorf("service already registered: %s", serviceName)
	}
	f.constructors[serviceName] = ctor
	return nil
}

// Supported lists the registered backend names.
func (f *Factory) Supported() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	return names
}

// Create resolves a backend by name, validates its configuration (loading
// it from the environment when cfg is nil), and constructs the adapter.
// Construction failures are reported as *service.AuthError.
func (f *Factory) Create(ctx context.Context, serviceName string, cfg config.ServiceConfig) (service.TaskService, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[serviceName]
	f.mu.RUnlock()
	if !ok {
		return nil, &config.UnknownServiceError{ServiceType: serviceName}
	}

	if cfg == nil {
		loaded, err := f.configs.LoadFromEnv(serviceName)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		if err := f.configs.Register(cfg); err != nil {
			return nil, err
		}
	}

	svc, err := ctor(ctx, cfg)
	if err != nil {
		f.log.Debug("backend construction failed", "service", serviceName, "error", err)
		return nil, &service.AuthError{Backend: serviceName, Err: err}
	}
	f.log.Info("backend ready", "service", serviceName)
	return svc, nil
}

// CreateDefault tries the explicitly configured active backend first, then
// falls back through the fixed preference order, returning the first backend
// that constructs successfully.
func (f *Factory) CreateDefault(ctx context.Context) (service.TaskService, error) {
	if active := config.ActiveService(); active != "" {
		svc, err := f.Create(ctx, active, nil)
		if err == nil {
			return svc, nil
		}
		f.log.Warn("active service unavailable, trying fallbacks", "service", active, "error", err)
	}

	var lastErr error
	for _, name := range preferenceOrder {
		svc, err := f.Create(ctx, name, nil)
		if err == nil {
			return svc, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no valid service configuration found: %w", lastErr)
	}
	return nil, fmt.Errorf("no valid service configuration found")
}
