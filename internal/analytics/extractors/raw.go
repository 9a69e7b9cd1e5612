// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// The extractors in this file read the raw-export key convention. They
// produce the same view models as their dashboard counterparts.

// RawReviewQualityExtractor reads overall_quality_metrics.
type RawReviewQualityExtractor struct{}

// NewRawReviewQualityExtractor creates the raw review-quality extractor.
func NewRawReviewQualityExtractor() *RawReviewQualityExtractor {
	return &RawReviewQualityExtractor{}
}

func (e *RawReviewQualityExtractor) Tag() analytics.Tag { return analytics.TagReviewQuality }

func (e *RawReviewQualityExtractor) Name() string { return "raw-review-quality" }

func (e *RawReviewQualityExtractor) Extract(doc analytics.Object) (any, error) {
	raw, _ := doc.Get("overall_quality_metrics")
	m, ok := analytics.AsObject(raw)
	if !ok {
		return nil, analytics.Malformed(e.Tag(), "overall_quality_metrics", "object", raw)
	}

	in := qualityInput{
		ratings:       ratingCounts(m.Object("rating_distribution", "ratingDistribution")),
		totalReviews:  m.Float(-1, "total_reviews", "totalReviews"),
		averageRating: m.Float(-1, "average_rating", "averageRating"),
		spamPct:       m.Float(-1, "spam_percentage", "spamPercentage"),
		sentiment:     m.Object("sentiment_distribution", "sentiment_breakdown"),
	}

	// Raw exports carry spam as percentages or counts; percentages are scaled
	// back to counts when the review total is known.
	in.spam, in.authentic = spamCounts(m.Object("spam_vs_authentic"))
	if in.spam == 0 && in.authentic == 0 && in.spamPct >= 0 {
		authPct := m.Float(100-in.spamPct, "authentic_percentage", "authenticPercentage")
		if in.totalReviews > 0 {
			in.spam = analytics.Round2(in.totalReviews * in.spamPct / 100)
			in.authentic = analytics.Round2(in.totalReviews * authPct / 100)
		} else {
			in.spam, in.authentic = in.spamPct, authPct
		}
	}
	return buildQualityView(in), nil
}

// RawVersionComparisonExtractor reads version_history and derives the best and
// worst releases from it.
type RawVersionComparisonExtractor struct{}

// NewRawVersionComparisonExtractor creates the raw version-history extractor.
func NewRawVersionComparisonExtractor() *RawVersionComparisonExtractor {
	return &RawVersionComparisonExtractor{}
}

func (e *RawVersionComparisonExtractor) Tag() analytics.Tag { return analytics.TagVersionComparison }

func (e *RawVersionComparisonExtractor) Name() string { return "raw-version-comparison" }

func (e *RawVersionComparisonExtractor) Extract(doc analytics.Object) (any, error) {
	raw, _ := doc.Get("version_history")
	arr, ok := analytics.AsArray(raw)
	if !ok {
		return nil, analytics.Malformed(e.Tag(), "version_history", "array", raw)
	}

	rows := objects(arr)
	timeline := make([]VersionPoint, 0, len(rows))
	for _, row := range rows {
		timeline = append(timeline, VersionPoint{
			Version:     row.String(analytics.NotAvailable, "version", "version_name"),
			Date:        row.String(analytics.NotAvailable, "release_date", "date"),
			Sentiment:   row.Float(0, "average_sentiment", "sentiment_score", "sentiment"),
			Rating:      row.Float(0, "average_rating", "rating"),
			ReviewCount: row.Float(0, "review_count", "reviews"),
		})
	}
	return buildVersionView(timeline, nil, nil, doc.Strings("key_changes")), nil
}

var rawSegmentFields = segmentFields{
	name:            []string{"segment_name", "name"},
	size:            []string{"size", "user_count", "count"},
	percentage:      []string{"percentage", "share"},
	satisfaction:    []string{"satisfaction_score", "satisfaction"},
	characteristics: []string{"key_characteristics", "characteristics"},
	painPoints:      []string{"pain_points", "common_issues"},
}

// RawUserSegmentationExtractor reads user_segments.
type RawUserSegmentationExtractor struct{}

// NewRawUserSegmentationExtractor creates the raw user-segments extractor.
func NewRawUserSegmentationExtractor() *RawUserSegmentationExtractor {
	return &RawUserSegmentationExtractor{}
}

func (e *RawUserSegmentationExtractor) Tag() analytics.Tag { return analytics.TagUserSegmentation }

func (e *RawUserSegmentationExtractor) Name() string { return "raw-user-segmentation" }

func (e *RawUserSegmentationExtractor) Extract(doc analytics.Object) (any, error) {
	raw, _ := doc.Get("user_segments")
	if _, ok := analytics.AsArray(raw); !ok {
		return nil, analytics.Malformed(e.Tag(), "user_segments", "array", raw)
	}
	return buildSegmentationView(doc.Objects("user_segments"), rawSegmentFields), nil
}

// Unwrapped applies a dashboard extractor to the object nested under key, as
// raw exports wrap FTUE and store analyses in a single top-level field.
type Unwrapped struct {
	key   string
	inner analytics.Extractor
}

// NewUnwrapped delegates to inner with the object found under key.
func NewUnwrapped(key string, inner analytics.Extractor) *Unwrapped {
	return &Unwrapped{key: key, inner: inner}
}

func (u *Unwrapped) Tag() analytics.Tag { return u.inner.Tag() }

func (u *Unwrapped) Name() string { return "raw-" + u.inner.Name() }

func (u *Unwrapped) Extract(doc analytics.Object) (any, error) {
	raw, _ := doc.Get(u.key)
	nested, ok := analytics.AsObject(raw)
	if !ok {
		return nil, analytics.Malformed(u.Tag(), u.key, "object", raw)
	}
	return u.inner.Extract(nested)
}
