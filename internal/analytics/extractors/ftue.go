// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"strings"

	"github.com/appinsight/insightviz/internal/analytics"
)

// FTUEAnalysisView is the chart model for first-time user experience reviews
// of onboarding recordings.
type FTUEAnalysisView struct {
	Compliance        []analytics.NameValuePct `json:"compliance"`
	ComplianceRate    float64                  `json:"complianceRate"`
	Improvements      []Improvement            `json:"improvements"`
	Steps             []FTUEStep               `json:"steps"`
	OverallAssessment string                   `json:"overallAssessment"`
}

// Improvement is a suggested onboarding change.
type Improvement struct {
	Area        string `json:"area"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Impact      string `json:"impact"`
}

// FTUEStep is one onboarding step with its drop-off.
type FTUEStep struct {
	Step        string `json:"step"`
	Status      string `json:"status"`
	Observation string `json:"observation"`
	Timestamp   string `json:"timestamp"`
}

var complianceOrder = []string{"compliant", "partial", "non_compliant"}

// FTUEAnalysisExtractor reshapes complianceCounts and suggestedImprovements.
type FTUEAnalysisExtractor struct{}

// NewFTUEAnalysisExtractor creates an ftue-analysis extractor.
func NewFTUEAnalysisExtractor() *FTUEAnalysisExtractor {
	return &FTUEAnalysisExtractor{}
}

func (e *FTUEAnalysisExtractor) Tag() analytics.Tag { return analytics.TagFTUEAnalysis }

func (e *FTUEAnalysisExtractor) Name() string { return "ftue-analysis" }

func (e *FTUEAnalysisExtractor) Extract(doc analytics.Object) (any, error) {
	view := &FTUEAnalysisView{
		Compliance:        []analytics.NameValuePct{},
		Improvements:      []Improvement{},
		Steps:             []FTUEStep{},
		OverallAssessment: doc.String(analytics.NotAvailable, "overallAssessment", "summary"),
	}

	if raw, ok := doc.Get("complianceCounts"); ok {
		counts, ok := analytics.AsObject(raw)
		if !ok {
			return nil, analytics.Malformed(e.Tag(), "complianceCounts", "object", raw)
		}
		view.Compliance, view.ComplianceRate = compliance(counts)
	}

	for _, el := range doc.Array("suggestedImprovements") {
		if s, ok := el.(string); ok {
			view.Improvements = append(view.Improvements, Improvement{
				Area: analytics.NotAvailable, Description: s, Priority: analytics.NotAvailable, Impact: analytics.NotAvailable,
			})
			continue
		}
		obj, ok := analytics.AsObject(el)
		if !ok {
			continue
		}
		view.Improvements = append(view.Improvements, Improvement{
			Area:        obj.String(analytics.NotAvailable, "area", "title", "category"),
			Description: obj.String(analytics.NotAvailable, "description", "suggestion", "improvement"),
			Priority:    normalizePriority(obj.String(analytics.NotAvailable, "priority")),
			Impact:      obj.String(analytics.NotAvailable, "impact", "expectedImpact"),
		})
	}

	for _, s := range doc.Objects("steps", "stepAnalysis", "ftueSteps") {
		view.Steps = append(view.Steps, FTUEStep{
			Step:        s.String(analytics.NotAvailable, "step", "name", "guideline"),
			Status:      s.String(analytics.NotAvailable, "status", "compliance"),
			Observation: s.String(analytics.NotAvailable, "observation", "notes", "finding"),
			Timestamp:   s.String(analytics.NotAvailable, "timestamp", "time"),
		})
	}
	return view, nil
}

// compliance orders the buckets compliant, partial, non-compliant, then any
// extra keys lexically. Key spellings are normalized first.
func compliance(counts analytics.Object) ([]analytics.NameValuePct, float64) {
	merged := map[string]float64{}
	var total float64
	for k, v := range counts {
		f, ok := analytics.Number(v)
		if !ok {
			continue
		}
		key := complianceKey(k)
		merged[key] += f
		total += f
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}

	out := make([]analytics.NameValuePct, 0, len(keys))
	for _, k := range analytics.CanonicalOrder(keys, complianceOrder) {
		out = append(out, analytics.NameValuePct{
			Name:       complianceLabel(k),
			Value:      merged[k],
			Percentage: analytics.Percentage(merged[k], total),
		})
	}
	return out, analytics.Percentage(merged["compliant"], total)
}

func complianceKey(k string) string {
	norm := strings.ToLower(strings.TrimSpace(k))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "compliant", "fully_compliant", "pass", "passed":
		return "compliant"
	case "partial", "partially_compliant", "partiallycompliant":
		return "partial"
	case "non_compliant", "noncompliant", "not_compliant", "fail", "failed":
		return "non_compliant"
	}
	return norm
}

func complianceLabel(k string) string {
	switch k {
	case "compliant":
		return "Compliant"
	case "partial":
		return "Partially Compliant"
	case "non_compliant":
		return "Non-Compliant"
	}
	return title(k)
}
