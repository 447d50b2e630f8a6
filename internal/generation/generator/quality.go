package generator

import (
	"fmt"

	"datareplicator/internal/generation/models"
)

// Penalty weights per defect kind, scaled by the fraction of affected rows.
const (
	penaltyMissing    = 20.0
	penaltyDuplicates = 15.0
	penaltyOutOfRange = 10.0
	penaltyOther      = 5.0
)

// evaluateQuality inspects a generated table against each variable's
// constraints. Checks run independently per variable; a defect with
// Passed=true records tolerated missing values without affecting the score.
func evaluateQuality(cfg models.DomainConfig, table *models.Table) []models.QualityDefect {
	var defects []models.QualityDefect

	for _, v := range cfg.Variables {
		col, ok := table.Column(v.Name)
		if !ok {
			continue
		}
		c := v.Constraint

		if missing := countMissing(col); missing > 0 {
			expected := c != nil && c.Nullable
			if !expected || missing > table.Rows()/2 {
				defects = append(defects, models.QualityDefect{
					Name:        v.Name + "_missing_values",
					Kind:        models.DefectMissingValues,
					Variable:    v.Name,
					Passed:      expected,
					IssueCount:  missing,
					Description: fmt.Sprintf("%d missing values found for %s", missing, v.Name),
				})
			}
		}

		if c != nil && c.Unique {
			duplicates := len(col) - table.DistinctCount(v.Name)
			if duplicates > 0 {
				defects = append(defects, models.QualityDefect{
					Name:        v.Name + "_duplicate_values",
					Kind:        models.DefectDuplicateValues,
					Variable:    v.Name,
					Passed:      false,
					IssueCount:  duplicates,
					Description: fmt.Sprintf("%d duplicate values found for %s (should be unique)", duplicates, v.Name),
				})
			}
		}

		if v.DataType == models.DataTypeNumeric && c != nil {
			if c.MinValue != nil {
				if below := countOutside(col, *c.MinValue, true); below > 0 {
					defects = append(defects, models.QualityDefect{
						Name:        v.Name + "_below_minimum",
						Kind:        models.DefectOutOfRange,
						Variable:    v.Name,
						Passed:      false,
						IssueCount:  below,
						Description: fmt.Sprintf("%d values below minimum (%v) for %s", below, *c.MinValue, v.Name),
					})
				}
			}
			if c.MaxValue != nil {
				if above := countOutside(col, *c.MaxValue, false); above > 0 {
					defects = append(defects, models.QualityDefect{
						Name:        v.Name + "_above_maximum",
						Kind:        models.DefectOutOfRange,
						Variable:    v.Name,
						Passed:      false,
						IssueCount:  above,
						Description: fmt.Sprintf("%d values above maximum (%v) for %s", above, *c.MaxValue, v.Name),
					})
				}
			}
		}
	}

	return defects
}

func countOutside(col []any, bound float64, below bool) int {
	n := 0
	for _, raw := range col {
		v, ok := raw.(float64)
		if !ok {
			continue
		}
		if below && v < bound {
			n++
		}
		if !below && v > bound {
			n++
		}
	}
	return n
}

// qualityScore reduces a perfect 100 by each unmet check, weighted by kind
// and scaled by the fraction of affected rows. Clamped to [0,100]; an empty
// table scores 0; a defect-free table scores exactly 100.
func qualityScore(defects []models.QualityDefect, totalRecords int) float64 {
	if totalRecords == 0 {
		return 0
	}
	score := 100.0
	for _, d := range defects {
		if d.Passed {
			continue
		}
		impact := float64(d.IssueCount) / float64(totalRecords)
		switch d.Kind {
		case models.DefectMissingValues:
			score -= penaltyMissing * impact
		case models.DefectDuplicateValues:
			score -= penaltyDuplicates * impact
		case models.DefectOutOfRange:
			score -= penaltyOutOfRange * impact
		default:
			score -= penaltyOther * impact
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
