package connector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type standardConnector struct {
	provider Provider
	config   Config
}

var globalManager = &Manager{
	providers: make(map[string]Provider),
}

type Manager struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

func Register(name string, provider Provider) {
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.providers[name] = provider
}

// Registered reports whether a provider is registered under name.
func Registered(name string) bool {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	_, ok := globalManager.providers[name]
	return ok
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	globalManager.mu.RLock()
	defer globalManager.mu.RUnlock()
	names := make([]string, 0, len(globalManager.providers))
	for name := range globalManager.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(name string, config Config) (Connector, error) {
	globalManager.mu.RLock()
	provider, ok := globalManager.providers[name]
	globalManager.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", name)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", name, err)
	}
	return &standardConnector{provider: provider, config: config}, nil
}

func (c *standardConnector) Connect(ctx context.Context) (Connection, error) {
	if c.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}
	return c.provider.Connect(ctx, c.config)
}

func (c *standardConnector) ConnectWithRetry(ctx context.Context, opts RetryConfig) (Connection, error) {
	return retryConnect(ctx, opts, c.Connect)
}

func (c *standardConnector) Close() error {
	return nil
}
