// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/appinsight/insightviz/internal/analytics"
)

// ReviewQualityView is the chart model for rating and spam analyses.
type ReviewQualityView struct {
	RatingDistribution []RatingBucket            `json:"ratingDistribution"`
	SpamVsAuthentic    []analytics.NameValuePct `json:"spamVsAuthentic"`
	SentimentBreakdown []analytics.NameValuePct `json:"sentimentBreakdown"`
	TotalReviews       float64                  `json:"totalReviews"`
	AverageRating      float64                  `json:"averageRating"`
	SpamPercentage     float64                  `json:"spamPercentage"`
}

// RatingBucket is the share of reviews with a given star rating.
type RatingBucket struct {
	Stars      int     `json:"stars"`
	Name       string  `json:"name"`
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
}

var sentimentOrder = []string{"positive", "neutral", "negative"}

// ReviewQualityExtractor reshapes ratingDistribution / spamVsAuthentic
// documents.
type ReviewQualityExtractor struct{}

// NewReviewQualityExtractor creates a review-quality extractor.
func NewReviewQualityExtractor() *ReviewQualityExtractor {
	return &ReviewQualityExtractor{}
}

func (e *ReviewQualityExtractor) Tag() analytics.Tag { return analytics.TagReviewQuality }

func (e *ReviewQualityExtractor) Name() string { return "review-quality" }

func (e *ReviewQualityExtractor) Extract(doc analytics.Object) (any, error) {
	if raw, ok := doc.Get("ratingDistribution"); ok {
		if _, ok := analytics.AsObject(raw); !ok {
			return nil, analytics.Malformed(e.Tag(), "ratingDistribution", "object", raw)
		}
	}

	counts := ratingCounts(doc.Object("ratingDistribution"))
	spam, authentic := spamCounts(doc.Object("spamVsAuthentic"))

	return buildQualityView(qualityInput{
		ratings:       counts,
		totalReviews:  doc.Float(-1, "totalReviews", "total_reviews"),
		averageRating: doc.Float(-1, "averageRating", "average_rating"),
		spam:          spam,
		authentic:     authentic,
		spamPct:       -1,
		sentiment:     doc.Object("sentimentBreakdown", "sentimentDistribution"),
	}), nil
}

type qualityInput struct {
	ratings       [5]float64
	totalReviews  float64 // negative when absent
	averageRating float64 // negative when absent
	spam          float64
	authentic     float64
	spamPct       float64 // negative when absent
	sentiment     analytics.Object
}

func buildQualityView(in qualityInput) *ReviewQualityView {
	var ratingTotal, weighted float64
	for i, c := range in.ratings {
		ratingTotal += c
		weighted += c * float64(i+1)
	}

	view := &ReviewQualityView{
		RatingDistribution: make([]RatingBucket, 0, 5),
		SpamVsAuthentic:    []analytics.NameValuePct{},
		SentimentBreakdown: []analytics.NameValuePct{},
		TotalReviews:       ratingTotal,
	}
	if in.totalReviews >= 0 {
		view.TotalReviews = in.totalReviews
	}

	for i, c := range in.ratings {
		view.RatingDistribution = append(view.RatingDistribution, RatingBucket{
			Stars:      i + 1,
			Name:       fmt.Sprintf("%d★", i+1),
			Count:      c,
			Percentage: analytics.Percentage(c, ratingTotal),
		})
	}

	switch {
	case in.averageRating >= 0:
		view.AverageRating = analytics.Round2(in.averageRating)
	case ratingTotal > 0:
		view.AverageRating = analytics.Round2(weighted / ratingTotal)
	}

	spamTotal := in.spam + in.authentic
	if spamTotal > 0 {
		view.SpamVsAuthentic = append(view.SpamVsAuthentic,
			analytics.NameValuePct{Name: "Spam", Value: in.spam, Percentage: analytics.Percentage(in.spam, spamTotal)},
			analytics.NameValuePct{Name: "Authentic", Value: in.authentic, Percentage: analytics.Percentage(in.authentic, spamTotal)},
		)
	}
	view.SpamPercentage = analytics.Percentage(in.spam, spamTotal)
	if in.spamPct >= 0 {
		view.SpamPercentage = analytics.Percentage(in.spamPct, 100)
	}

	if len(in.sentiment) > 0 {
		keys := make([]string, 0, len(in.sentiment))
		var total float64
		for k, v := range in.sentiment {
			if f, ok := analytics.Number(v); ok {
				keys = append(keys, k)
				total += f
			}
		}
		for _, k := range analytics.CanonicalOrder(keys, sentimentOrder) {
			v := in.sentiment.Float(0, k)
			view.SentimentBreakdown = append(view.SentimentBreakdown, analytics.NameValuePct{
				Name:       title(k),
				Value:      v,
				Percentage: analytics.Percentage(v, total),
			})
		}
	}
	return view
}

// ratingCounts reads a star-keyed object ("1_star".."5_star", "1".."5",
// "1 star") into canonical 1→5 order. Values may be counts or objects
// carrying a count.
func ratingCounts(dist analytics.Object) [5]float64 {
	var out [5]float64
	for k, v := range dist {
		stars := starKey(k)
		if stars < 1 || stars > 5 {
			continue
		}
		if f, ok := analytics.Number(v); ok {
			out[stars-1] = f
			continue
		}
		if obj, ok := analytics.AsObject(v); ok {
			out[stars-1] = obj.Float(0, "count", "value", "reviews")
		}
	}
	return out
}

func starKey(k string) int {
	k = strings.ToLower(strings.TrimSpace(k))
	for _, suffix := range []string{"_stars", "_star", " stars", " star", "stars", "star", "★"} {
		k = strings.TrimSuffix(k, suffix)
	}
	n, err := strconv.Atoi(strings.TrimSpace(k))
	if err != nil {
		return 0
	}
	return n
}

func spamCounts(obj analytics.Object) (spam, authentic float64) {
	return obj.Float(0, "spam", "spamCount", "spam_count"),
		obj.Float(0, "authentic", "authenticCount", "authentic_count", "genuine")
}

func title(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
