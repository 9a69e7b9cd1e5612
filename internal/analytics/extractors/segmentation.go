// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// UserSegmentationView is the chart model for user segment breakdowns.
type UserSegmentationView struct {
	Segments     []Segment             `json:"segments"`
	SegmentSizes []analytics.NameValue `json:"segmentSizes"`
	TotalUsers   float64               `json:"totalUsers"`
}

// Segment is one user segment in the view.
type Segment struct {
	Name            string   `json:"name"`
	Size            float64  `json:"size"`
	Percentage      float64  `json:"percentage"`
	Satisfaction    float64  `json:"satisfaction"`
	Characteristics []string `json:"characteristics"`
	PainPoints      []string `json:"painPoints"`
}

// segmentFields names the source keys for one convention's segment rows.
type segmentFields struct {
	name, size, percentage, satisfaction, characteristics, painPoints []string
}

var dashboardSegmentFields = segmentFields{
	name:            []string{"name", "segment", "segmentName"},
	size:            []string{"size", "userCount", "count"},
	percentage:      []string{"percentage", "share"},
	satisfaction:    []string{"satisfaction", "satisfactionScore", "sentiment"},
	characteristics: []string{"characteristics", "traits"},
	painPoints:      []string{"painPoints", "pain_points", "issues"},
}

// UserSegmentationExtractor reshapes a segments array.
type UserSegmentationExtractor struct{}

// NewUserSegmentationExtractor creates a user-segmentation extractor.
func NewUserSegmentationExtractor() *UserSegmentationExtractor {
	return &UserSegmentationExtractor{}
}

func (e *UserSegmentationExtractor) Tag() analytics.Tag { return analytics.TagUserSegmentation }

func (e *UserSegmentationExtractor) Name() string { return "user-segmentation" }

func (e *UserSegmentationExtractor) Extract(doc analytics.Object) (any, error) {
	return buildSegmentationView(doc.Objects("segments"), dashboardSegmentFields), nil
}

func buildSegmentationView(rows []analytics.Object, f segmentFields) *UserSegmentationView {
	var total float64
	for _, row := range rows {
		total += row.Float(0, f.size...)
	}

	view := &UserSegmentationView{
		Segments:     make([]Segment, 0, len(rows)),
		SegmentSizes: make([]analytics.NameValue, 0, len(rows)),
		TotalUsers:   total,
	}
	for _, row := range rows {
		size := row.Float(0, f.size...)
		pct := row.Float(-1, f.percentage...)
		if pct < 0 {
			pct = analytics.Percentage(size, total)
		} else {
			pct = analytics.Percentage(pct, 100)
		}
		s := Segment{
			Name:            row.String(analytics.NotAvailable, f.name...),
			Size:            size,
			Percentage:      pct,
			Satisfaction:    row.Float(0, f.satisfaction...),
			Characteristics: row.Strings(f.characteristics...),
			PainPoints:      row.Strings(f.painPoints...),
		}
		view.Segments = append(view.Segments, s)

		value := size
		if total == 0 {
			value = pct
		}
		view.SegmentSizes = append(view.SegmentSizes, analytics.NameValue{Name: s.Name, Value: value})
	}
	return view
}
