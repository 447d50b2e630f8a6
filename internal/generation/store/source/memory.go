// Package source holds providers for source data and relationship graphs
// consumed by statistical generation and post-generation reconciliation.
package source

import (
	"context"
	"sync"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/reconcile"
)

// MemoryProvider serves registered source tables and a relationship graph
// from process memory. It implements both ports.DataProvider and
// ports.RelationshipProvider.
type MemoryProvider struct {
	mu     sync.RWMutex
	tables map[string]*models.Table
	graph  reconcile.Graph
}

// NewMemory constructs an empty provider.
func NewMemory() *MemoryProvider {
	return &MemoryProvider{
		tables: make(map[string]*models.Table),
	}
}

// RegisterTable makes a source table available under its domain name.
// Registering again for the same domain replaces the previous table.
func (p *MemoryProvider) RegisterTable(domainName string, table *models.Table) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables[domainName] = table
}

// SetGraph replaces the relationship graph.
func (p *MemoryProvider) SetGraph(graph reconcile.Graph) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.graph = graph
}

// LoadTable returns the registered table for the domain, or nil when none
// has been registered. Callers treat a nil table as missing source data.
func (p *MemoryProvider) LoadTable(_ context.Context, domainName string) (*models.Table, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tables[domainName], nil
}

// RelationshipGraph returns the configured graph, empty when none was set.
func (p *MemoryProvider) RelationshipGraph(_ context.Context) (reconcile.Graph, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph, nil
}
