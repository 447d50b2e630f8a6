// Package reconcile post-processes a batch of generated tables so values used
// as cross-table linking keys stay mutually consistent.
package reconcile

import (
	"fmt"
	"log/slog"

	"datareplicator/internal/generation/models"
)

// Kind classifies how two domains are linked.
type Kind string

const (
	KindSubject Kind = "subject"
	KindVisit   Kind = "visit"
	KindTime    Kind = "time"
	KindDerived Kind = "derived"
)

// Enforced reports whether the reconciler actively rewrites keys for this
// kind. Time and derived relationships are recorded but not enforced.
func (k Kind) Enforced() bool {
	return k == KindSubject || k == KindVisit
}

// Edge links a source domain's key column to a target domain's key column.
// Consumed read-only; the graph is built elsewhere.
type Edge struct {
	SourceDomain   string `json:"source_domain"`
	TargetDomain   string `json:"target_domain"`
	Kind           Kind   `json:"kind"`
	SourceVariable string `json:"source_variable"`
	TargetVariable string `json:"target_variable"`
}

// Graph is an ordered edge list. Order matters: edges are applied one at a
// time and a later edge writing the same target column wins.
type Graph struct {
	Edges []Edge `json:"edges"`
}

// IsEmpty reports whether there is anything to reconcile.
func (g Graph) IsEmpty() bool { return len(g.Edges) == 0 }

// Outcome records what happened to one edge during reconciliation.
type Outcome struct {
	Edge    Edge
	Applied bool
	Reason  string
}

// Apply rewrites target key columns in place so every foreign-key value in a
// target table also appears in its source table: the source column's distinct
// values (in generation order) are cycled across target rows. Edges are
// processed sequentially in graph order.
func Apply(logger *slog.Logger, tables map[string]*models.Table, graph Graph) []Outcome {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	outcomes := make([]Outcome, 0, len(graph.Edges))
	for _, edge := range graph.Edges {
		outcomes = append(outcomes, applyEdge(logger, tables, edge))
	}
	return outcomes
}

func applyEdge(logger *slog.Logger, tables map[string]*models.Table, edge Edge) Outcome {
	if !edge.Kind.Enforced() {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("relationship kind %q is recorded but not enforced", edge.Kind)}
	}

	source, ok := tables[edge.SourceDomain]
	if !ok {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("source domain %s not generated", edge.SourceDomain)}
	}
	target, ok := tables[edge.TargetDomain]
	if !ok {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("target domain %s not generated", edge.TargetDomain)}
	}
	if !source.HasColumn(edge.SourceVariable) {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("source column %s missing in %s", edge.SourceVariable, edge.SourceDomain)}
	}
	if !target.HasColumn(edge.TargetVariable) {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("target column %s missing in %s", edge.TargetVariable, edge.TargetDomain)}
	}

	values := source.DistinctValues(edge.SourceVariable)
	if len(values) == 0 {
		return Outcome{Edge: edge, Reason: fmt.Sprintf("source column %s has no values", edge.SourceVariable)}
	}

	for row := 0; row < target.Rows(); row++ {
		// SetCell cannot fail here; column and row were checked above.
		_ = target.SetCell(edge.TargetVariable, row, values[row%len(values)])
	}

	logger.Info("relationship reconciled",
		"kind", edge.Kind,
		"source", edge.SourceDomain+"."+edge.SourceVariable,
		"target", edge.TargetDomain+"."+edge.TargetVariable,
		"distinct_keys", len(values),
	)
	return Outcome{Edge: edge, Applied: true}
}
