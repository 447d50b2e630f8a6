package reconcile

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"datareplicator/internal/generation/models"
)

type ReconcileSuite struct {
	suite.Suite
}

func TestReconcileSuite(t *testing.T) {
	suite.Run(t, new(ReconcileSuite))
}

func (s *ReconcileSuite) table(name string, col string, values []any) *models.Table {
	table := models.NewTable(name, len(values))
	s.Require().NoError(table.SetColumn(col, values))
	return table
}

func subjectEdge() Edge {
	return Edge{
		SourceDomain:   "DM",
		TargetDomain:   "LB",
		Kind:           KindSubject,
		SourceVariable: "USUBJID",
		TargetVariable: "USUBJID",
	}
}

func (s *ReconcileSuite) TestApplySubjectEdge() {
	dm := s.table("DM", "USUBJID", []any{"S1", "S2", "S3", "S2"})
	lb := s.table("LB", "USUBJID", []any{"X1", "X2", "X3", "X4", "X5", "X6", "X7"})
	tables := map[string]*models.Table{"DM": dm, "LB": lb}

	outcomes := Apply(nil, tables, Graph{Edges: []Edge{subjectEdge()}})
	s.Require().Len(outcomes, 1)
	s.True(outcomes[0].Applied)

	s.Run("target keys cycle through the source's distinct values", func() {
		col, _ := lb.Column("USUBJID")
		// Distinct values in generation order: S1, S2, S3.
		s.Equal([]any{"S1", "S2", "S3", "S1", "S2", "S3", "S1"}, col)
	})

	s.Run("every target key exists in the source", func() {
		sourceSet := make(map[any]struct{})
		for _, v := range dm.DistinctValues("USUBJID") {
			sourceSet[v] = struct{}{}
		}
		col, _ := lb.Column("USUBJID")
		for _, v := range col {
			s.Contains(sourceSet, v)
		}
	})
}

func (s *ReconcileSuite) TestLastEdgeWins() {
	dm := s.table("DM", "USUBJID", []any{"S1"})
	ae := s.table("AE", "USUBJID", []any{"A1", "A2"})
	lb := s.table("LB", "USUBJID", []any{"X1", "X2"})
	tables := map[string]*models.Table{"DM": dm, "AE": ae, "LB": lb}

	graph := Graph{Edges: []Edge{
		{SourceDomain: "AE", TargetDomain: "LB", Kind: KindSubject, SourceVariable: "USUBJID", TargetVariable: "USUBJID"},
		{SourceDomain: "DM", TargetDomain: "LB", Kind: KindSubject, SourceVariable: "USUBJID", TargetVariable: "USUBJID"},
	}}

	outcomes := Apply(nil, tables, graph)
	s.Require().Len(outcomes, 2)
	s.True(outcomes[0].Applied)
	s.True(outcomes[1].Applied)

	col, _ := lb.Column("USUBJID")
	s.Equal([]any{"S1", "S1"}, col)
}

func (s *ReconcileSuite) TestUnenforcedKindsAreRecordedOnly() {
	dm := s.table("DM", "RFSTDTC", []any{"2021-01-01"})
	lb := s.table("LB", "LBDTC", []any{"2022-05-05"})
	tables := map[string]*models.Table{"DM": dm, "LB": lb}

	for _, kind := range []Kind{KindTime, KindDerived} {
		edge := Edge{SourceDomain: "DM", TargetDomain: "LB", Kind: kind, SourceVariable: "RFSTDTC", TargetVariable: "LBDTC"}
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.Require().Len(outcomes, 1)
		s.False(outcomes[0].Applied)
		s.Contains(outcomes[0].Reason, "not enforced")
	}

	// Target column untouched.
	col, _ := lb.Column("LBDTC")
	s.Equal([]any{"2022-05-05"}, col)
}

func (s *ReconcileSuite) TestSkippedEdges() {
	dm := s.table("DM", "USUBJID", []any{"S1"})
	lb := s.table("LB", "USUBJID", []any{"X1"})
	empty := s.table("VS", "USUBJID", []any{nil})
	tables := map[string]*models.Table{"DM": dm, "LB": lb, "VS": empty}

	s.Run("missing source domain", func() {
		edge := subjectEdge()
		edge.SourceDomain = "EX"
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.False(outcomes[0].Applied)
		s.Contains(outcomes[0].Reason, "EX")
	})

	s.Run("missing target domain", func() {
		edge := subjectEdge()
		edge.TargetDomain = "EX"
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.False(outcomes[0].Applied)
	})

	s.Run("missing source column", func() {
		edge := subjectEdge()
		edge.SourceVariable = "SITEID"
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.False(outcomes[0].Applied)
	})

	s.Run("missing target column", func() {
		edge := subjectEdge()
		edge.TargetVariable = "SITEID"
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.False(outcomes[0].Applied)
	})

	s.Run("source column with only missing values", func() {
		edge := subjectEdge()
		edge.SourceDomain = "VS"
		outcomes := Apply(nil, tables, Graph{Edges: []Edge{edge}})
		s.False(outcomes[0].Applied)
		s.Contains(outcomes[0].Reason, "no values")
	})
}

func (s *ReconcileSuite) TestEmptyGraph() {
	s.True(Graph{}.IsEmpty())
	s.Empty(Apply(nil, map[string]*models.Table{}, Graph{}))
}
