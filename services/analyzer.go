package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"map-analysis/models"
	"map-analysis/utils"
)

const (
	TypeField    = "type"
	RatingField  = "rating"
	ReviewsField = "reviews"
)

type AnalysisService struct {
	logger *utils.Logger
}

func NewAnalysisService(logger *utils.Logger) *AnalysisService {
	return &AnalysisService{logger: logger}
}

// Generate computes the four aggregates over the joined table. None of them
// depends on another; each is a single pass over the rows.
func (s *AnalysisService) Generate(table *models.Table) *models.AnalysisReport {
	report := &models.AnalysisReport{
		PointsPerType:        models.PointsPerType{},
		AverageRatingPerType: models.AverageRatings{},
		IncompleteData:       []models.Record{},
	}

	if table == nil || table.Len() == 0 {
		return report
	}

	report.PointsPerType = s.pointsPerType(table)
	report.AverageRatingPerType = s.averageRatingPerType(table)
	report.MaxReviewsLocation = s.maxReviews(table)
	report.IncompleteData = incompleteRows(table)

	if untyped := table.Len() - report.PointsPerType.Total(); untyped > 0 {
		s.logger.Warn("[analysis] %d row(s) have no %s and are left out of the per-type results", untyped, TypeField)
	}

	s.logger.Info("[analysis] %d types | %d incomplete rows | max reviews found: %t",
		len(report.PointsPerType), len(report.IncompleteData), report.MaxReviewsLocation != nil)
	return report
}

// pointsPerType counts rows per non-null type, highest count first.
func (s *AnalysisService) pointsPerType(table *models.Table) models.PointsPerType {
	counts := make(map[string]int)
	var order []string
	for _, row := range table.Rows {
		key, ok := typeKey(row)
		if !ok {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	result := make(models.PointsPerType, 0, len(order))
	for _, key := range order {
		result = append(result, models.TypeCount{Type: key, Count: counts[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// averageRatingPerType averages the numeric ratings of each type. Rows without
// a rating are left out of both the sum and the count; a type with no rated
// row averages to NaN.
func (s *AnalysisService) averageRatingPerType(table *models.Table) models.AverageRatings {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for _, row := range table.Rows {
		key, ok := typeKey(row)
		if !ok {
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &acc{}
			groups[key] = g
		}
		rating, ok := row.Number(RatingField)
		if !ok {
			if !row.IsNull(RatingField) {
				s.logger.Debug("[analysis] Ignoring non-numeric %s in type %s", RatingField, key)
			}
			continue
		}
		g.sum += rating
		g.n++
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make(models.AverageRatings, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		avg := math.NaN()
		if g.n > 0 {
			avg = g.sum / float64(g.n)
		}
		result = append(result, models.TypeAverage{Type: k, Average: avg})
	}
	return result
}

// maxReviews returns the first row holding the largest numeric reviews
// value, or nil when there is none.
func (s *AnalysisService) maxReviews(table *models.Table) models.Record {
	if !table.HasColumn(ReviewsField) {
		s.logger.Debug("[analysis] No %s column in joined table", ReviewsField)
		return nil
	}

	var best models.Record
	var bestVal float64
	for _, row := range table.Rows {
		n, ok := row.Number(ReviewsField)
		if !ok {
			continue
		}
		if best == nil || n > bestVal {
			best = row
			bestVal = n
		}
	}
	return best
}

// incompleteRows returns every row with at least one null field, in table order.
func incompleteRows(table *models.Table) []models.Record {
	rows := make([]models.Record, 0)
	for _, row := range table.Rows {
		if row.HasNull() {
			rows = append(rows, row)
		}
	}
	return rows
}

// typeKey renders a row's type as a group key. Rows with a null type belong
// to no group.
func typeKey(row models.Record) (string, bool) {
	v, ok := row.Get(TypeField)
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case int64, float64:
		return models.NumberKey(x)
	case bool:
		return strconv.FormatBool(x), true
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x), true
		}
		return string(b), true
	}
}
