package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ConnectorRegistry maps service ids to connector instances. Registration is
// explicit: a connector is bound to the id passed at construction, never to a
// runtime-derived location.
type ConnectorRegistry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewConnectorRegistry() *ConnectorRegistry {
	return &ConnectorRegistry{connectors: make(map[string]Connector)}
}

func (r *ConnectorRegistry) Register(connector Connector) error {
	if connector == nil {
		return fmt.Errorf("core: connector is nil")
	}
	id := strings.TrimSpace(connector.ID())
	if id == "" {
		return fmt.Errorf("core: connector id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.connectors[id]; exists {
		return fmt.Errorf("core: connector already registered: %s", id)
	}
	r.connectors[id] = connector
	return nil
}

func (r *ConnectorRegistry) Get(serviceID string) (Connector, bool) {
	id := strings.TrimSpace(serviceID)
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	connector, ok := r.connectors[id]
	r.mu.RUnlock()
	return connector, ok
}

func (r *ConnectorRegistry) List() []Connector {
	r.mu.RLock()
	keys := make([]string, 0, len(r.connectors))
	for id := range r.connectors {
		keys = append(keys, id)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	connectors := make([]Connector, 0, len(keys))
	r.mu.RLock()
	for _, id := range keys {
		connectors = append(connectors, r.connectors[id])
	}
	r.mu.RUnlock()
	return connectors
}

// ValidateAgainst checks every registered connector against the manifest
// store. A connector without a manifest is a wiring defect caught at startup,
// before any request can reach it.
func (r *ConnectorRegistry) ValidateAgainst(ctx context.Context, manifests ManifestStore) error {
	if manifests == nil {
		return fmt.Errorf("core: manifest store is required")
	}
	for _, connector := range r.List() {
		if _, err := manifests.Load(ctx, connector.ID()); err != nil {
			return fmt.Errorf("core: connector %q has no valid manifest: %w", connector.ID(), err)
		}
	}
	return nil
}
