// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// VersionComparisonView is the chart model for sentiment across releases.
type VersionComparisonView struct {
	Timeline       []VersionPoint   `json:"timeline"`
	BestSentiment  VersionHighlight `json:"bestSentiment"`
	WorstSentiment VersionHighlight `json:"worstSentiment"`
	SentimentDelta float64          `json:"sentimentDelta"`
	KeyChanges     []string         `json:"keyChanges"`
}

// VersionPoint is one release on the sentiment timeline.
type VersionPoint struct {
	Version     string  `json:"version"`
	Date        string  `json:"date"`
	Sentiment   float64 `json:"sentiment"`
	Rating      float64 `json:"rating"`
	ReviewCount float64 `json:"reviewCount"`
}

// VersionHighlight is the best or worst release by sentiment.
type VersionHighlight struct {
	Version string  `json:"version"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// VersionComparisonExtractor reshapes timelineData and best/worst sentiment
// highlights.
type VersionComparisonExtractor struct{}

// NewVersionComparisonExtractor creates a version-comparison extractor.
func NewVersionComparisonExtractor() *VersionComparisonExtractor {
	return &VersionComparisonExtractor{}
}

func (e *VersionComparisonExtractor) Tag() analytics.Tag { return analytics.TagVersionComparison }

func (e *VersionComparisonExtractor) Name() string { return "version-comparison" }

func (e *VersionComparisonExtractor) Extract(doc analytics.Object) (any, error) {
	var rows []analytics.Object
	if raw, ok := doc.Get("timelineData"); ok {
		arr, ok := analytics.AsArray(raw)
		if !ok {
			return nil, analytics.Malformed(e.Tag(), "timelineData", "array", raw)
		}
		rows = objects(arr)
	}

	timeline := make([]VersionPoint, 0, len(rows))
	for _, row := range rows {
		timeline = append(timeline, VersionPoint{
			Version:     row.String(analytics.NotAvailable, "version", "name"),
			Date:        row.String(analytics.NotAvailable, "date", "releaseDate"),
			Sentiment:   row.Float(0, "sentiment", "sentimentScore", "score"),
			Rating:      row.Float(0, "rating", "averageRating"),
			ReviewCount: row.Float(0, "reviewCount", "reviews", "count"),
		})
	}

	return buildVersionView(timeline,
		highlight(doc.Object("bestSentiment")),
		highlight(doc.Object("worstSentiment")),
		doc.Strings("keyChanges", "changes"),
	), nil
}

// highlight returns nil when the source object is absent so the caller can
// derive it from the timeline.
func highlight(obj analytics.Object) *VersionHighlight {
	if obj == nil {
		return nil
	}
	return &VersionHighlight{
		Version: obj.String(analytics.NotAvailable, "version", "name"),
		Score:   obj.Float(0, "score", "sentiment", "value"),
		Summary: obj.String(analytics.NotAvailable, "summary", "description", "reason"),
	}
}

func buildVersionView(timeline []VersionPoint, best, worst *VersionHighlight, changes []string) *VersionComparisonView {
	if len(timeline) > 0 && (best == nil || worst == nil) {
		hi, lo := timeline[0], timeline[0]
		for _, p := range timeline[1:] {
			if p.Sentiment > hi.Sentiment {
				hi = p
			}
			if p.Sentiment < lo.Sentiment {
				lo = p
			}
		}
		if best == nil {
			best = &VersionHighlight{Version: hi.Version, Score: hi.Sentiment, Summary: analytics.NotAvailable}
		}
		if worst == nil {
			worst = &VersionHighlight{Version: lo.Version, Score: lo.Sentiment, Summary: analytics.NotAvailable}
		}
	}

	// A delta is only meaningful when both sides are real highlights.
	missing := best == nil || worst == nil
	empty := VersionHighlight{Version: analytics.NotAvailable, Summary: analytics.NotAvailable}
	if best == nil {
		best = &empty
	}
	if worst == nil {
		w := empty
		worst = &w
	}

	var delta float64
	if !missing {
		delta = analytics.Round2(best.Score - worst.Score)
	}
	return &VersionComparisonView{
		Timeline:       timeline,
		BestSentiment:  *best,
		WorstSentiment: *worst,
		SentimentDelta: delta,
		KeyChanges:     changes,
	}
}
