// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// ProblemAnalysisView is the chart model for review problem analyses.
type ProblemAnalysisView struct {
	ProblemCategories     []CategoryCount `json:"problemCategories"`
	Problems              []Problem       `json:"problems"`
	SegmentImpact         []SegmentScore  `json:"segmentImpact"`
	ActionableInsights    []string        `json:"actionableInsights"`
	CriticalProblemsCount int             `json:"criticalProblemsCount"`
	TotalProblems         int             `json:"totalProblems"`
}

// CategoryCount is the number of problems in one category.
type CategoryCount struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// Problem is one row of the problem table with its derived impact.
type Problem struct {
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Severity         float64  `json:"severity"`
	SeverityLabel    string   `json:"severityLabel"`
	Frequency        float64  `json:"frequency"`
	Impact           float64  `json:"impact"`
	AffectedSegments []string `json:"affectedSegments"`
}

// SegmentScore is the aggregated impact score of a user segment.
type SegmentScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ProblemAnalysisExtractor reshapes problem_analysis.table rows. The same
// extractor serves both conventions since both keep rows at that path.
type ProblemAnalysisExtractor struct{}

// NewProblemAnalysisExtractor creates a problem-analysis extractor.
func NewProblemAnalysisExtractor() *ProblemAnalysisExtractor {
	return &ProblemAnalysisExtractor{}
}

func (e *ProblemAnalysisExtractor) Tag() analytics.Tag { return analytics.TagProblemAnalysis }

func (e *ProblemAnalysisExtractor) Name() string { return "problem-analysis" }

func (e *ProblemAnalysisExtractor) Extract(doc analytics.Object) (any, error) {
	pa := doc.Object("problem_analysis")

	var rows []analytics.Object
	if raw, ok := pa.Get("table"); ok {
		arr, ok := analytics.AsArray(raw)
		if !ok {
			return nil, analytics.Malformed(e.Tag(), "problem_analysis.table", "array", raw)
		}
		rows = objects(arr)
	}

	view := &ProblemAnalysisView{
		ProblemCategories:     []CategoryCount{},
		Problems:              make([]Problem, 0, len(rows)),
		SegmentImpact:         []SegmentScore{},
		ActionableInsights:    insights(doc.Array("actionable_insights")),
		CriticalProblemsCount: pa.Int(doc.Int(0, "criticalProblemsCount", "critical_problems_count"), "critical_problems_count", "criticalProblemsCount"),
		TotalProblems:         len(rows),
	}

	categories := analytics.NewGroupScore()
	segments := analytics.NewGroupScore()

	for _, row := range rows {
		category := row.String(analytics.NotAvailable, "category")
		label := row.String(analytics.NotAvailable, "severity")
		severity := analytics.SeverityScore(label)
		frequency := row.Float(0, "frequency", "count")

		impact := row.Float(severity*frequency/10, "impact", "impact_score")

		p := Problem{
			Name:             row.String(category, "problem", "issue", "description", "name"),
			Category:         category,
			Severity:         severity,
			SeverityLabel:    label,
			Frequency:        frequency,
			Impact:           analytics.Round2(analytics.ClampImpact(impact)),
			AffectedSegments: row.Strings("affected_user_segments", "affectedSegments"),
		}
		view.Problems = append(view.Problems, p)

		categories.Add(category, frequency)
		for _, seg := range p.AffectedSegments {
			segments.Add(seg, severity*frequency)
		}
	}

	for _, name := range categories.Keys() {
		view.ProblemCategories = append(view.ProblemCategories, CategoryCount{Name: name, Count: categories.Sum(name)})
	}
	for _, name := range segments.Keys() {
		view.SegmentImpact = append(view.SegmentImpact, SegmentScore{Name: name, Score: segments.Score(name)})
	}
	return view, nil
}

// insights accepts plain strings or objects carrying the insight text.
func insights(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		if obj, ok := analytics.AsObject(el); ok {
			if s := obj.String("", "insight", "recommendation", "title", "action"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
