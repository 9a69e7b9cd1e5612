// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// StoreAnalysisView is the chart model for store-listing evaluations.
type StoreAnalysisView struct {
	OverallScore    float64               `json:"overallScore"`
	Criteria        []Criterion           `json:"criteria"`
	CriteriaScores  []analytics.NameValue `json:"criteriaScores"`
	StatusBreakdown []analytics.NameValue `json:"statusBreakdown"`
	Recommendations []string              `json:"recommendations"`
}

// Criterion is one scored store listing criterion.
type Criterion struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
	Feedback   string  `json:"feedback"`
}

// DefaultCriterionMax is the scale of a criterion score when the source does
// not state one.
const DefaultCriterionMax = 10

// StoreAnalysisExtractor reshapes criteriaEvaluations and overallScore.
type StoreAnalysisExtractor struct{}

// NewStoreAnalysisExtractor creates a store-analysis extractor.
func NewStoreAnalysisExtractor() *StoreAnalysisExtractor {
	return &StoreAnalysisExtractor{}
}

func (e *StoreAnalysisExtractor) Tag() analytics.Tag { return analytics.TagStoreAnalysis }

func (e *StoreAnalysisExtractor) Name() string { return "store-analysis" }

func (e *StoreAnalysisExtractor) Extract(doc analytics.Object) (any, error) {
	var rows []analytics.Object
	if raw, ok := doc.Get("criteriaEvaluations"); ok {
		arr, ok := analytics.AsArray(raw)
		if !ok {
			return nil, analytics.Malformed(e.Tag(), "criteriaEvaluations", "array", raw)
		}
		rows = objects(arr)
	}

	view := &StoreAnalysisView{
		OverallScore:    doc.Float(0, "overallScore"),
		Criteria:        make([]Criterion, 0, len(rows)),
		CriteriaScores:  make([]analytics.NameValue, 0, len(rows)),
		StatusBreakdown: []analytics.NameValue{},
		Recommendations: insights(doc.Array("recommendations", "improvements")),
	}
	if obj := doc.Object("overallScore"); obj != nil {
		view.OverallScore = obj.Float(0, "score", "value")
	}

	statuses := analytics.NewGroupScore()
	for _, row := range rows {
		c := Criterion{
			Name:     row.String(analytics.NotAvailable, "criterion", "criteria", "name"),
			Score:    row.Float(0, "score", "rating"),
			MaxScore: row.Float(DefaultCriterionMax, "maxScore", "max_score", "outOf"),
			Status:   row.String(analytics.NotAvailable, "status", "result"),
			Feedback: row.String(analytics.NotAvailable, "feedback", "comments", "notes"),
		}
		if c.MaxScore <= 0 {
			c.MaxScore = DefaultCriterionMax
		}
		c.Percentage = analytics.Percentage(c.Score, c.MaxScore)

		view.Criteria = append(view.Criteria, c)
		view.CriteriaScores = append(view.CriteriaScores, analytics.NameValue{Name: c.Name, Value: c.Score})
		statuses.Add(c.Status, 1)
	}
	for _, s := range statuses.Keys() {
		view.StatusBreakdown = append(view.StatusBreakdown, analytics.NameValue{Name: s, Value: statuses.Sum(s)})
	}
	return view, nil
}
