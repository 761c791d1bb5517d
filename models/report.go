package models

// TypeCount is the number of joined rows carrying a given type.
type TypeCount struct {
	Type  string
	Count int
}

// TypeAverage is the mean rating of a type. Average is NaN when no row of the
// type has a rating.
type TypeAverage struct {
	Type    string
	Average float64
}

// PointsPerType is ordered by count descending, ties by first appearance.
type PointsPerType []TypeCount

// MarshalJSON writes the counts as a type → count object in slice order.
func (p PointsPerType) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(p), func(i int) (string, any) {
		return p[i].Type, p[i].Count
	})
}

// Total returns the sum of all counts.
func (p PointsPerType) Total() int {
	total := 0
	for _, tc := range p {
		total += tc.Count
	}
	return total
}

// AverageRatings is ordered by type ascending.
type AverageRatings []TypeAverage

// MarshalJSON writes the averages as a type → number object; NaN becomes null.
func (a AverageRatings) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(a), func(i int) (string, any) {
		return a[i].Type, a[i].Average
	})
}

// AnalysisReport holds the four aggregates computed over the joined table.
type AnalysisReport struct {
	PointsPerType        PointsPerType
	AverageRatingPerType AverageRatings
	// MaxReviewsLocation is nil when no row has a numeric reviews value.
	MaxReviewsLocation Record
	IncompleteData     []Record
}
