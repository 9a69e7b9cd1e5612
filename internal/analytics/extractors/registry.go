// SPDX-License-Identifier: Apache-2.0

// Package extractors holds one extractor per analytics schema and the
// constructors that bind them to a marker convention.
package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// DashboardExtractors returns the extractors for the dashboard convention.
func DashboardExtractors() []analytics.Extractor {
	return []analytics.Extractor{
		NewProblemAnalysisExtractor(),
		NewReviewQualityExtractor(),
		NewVersionComparisonExtractor(),
		NewUserSegmentationExtractor(),
		NewUserStoriesExtractor(),
		NewMarketingCampaignExtractor(),
		NewFTUEAnalysisExtractor(),
		NewStoreAnalysisExtractor(),
	}
}

// RawExtractors returns the extractors for the raw-export convention.
func RawExtractors() []analytics.Extractor {
	return []analytics.Extractor{
		NewProblemAnalysisExtractor(),
		NewRawReviewQualityExtractor(),
		NewRawVersionComparisonExtractor(),
		NewRawUserSegmentationExtractor(),
		NewUnwrapped("ftueAnalysis", NewFTUEAnalysisExtractor()),
		NewUnwrapped("storeAnalysis", NewStoreAnalysisExtractor()),
	}
}

// NewDispatcher builds a dispatcher for the named convention with its
// extractors registered. Options are applied after registration.
func NewDispatcher(convention string, opts ...analytics.Option) (*analytics.Dispatcher, error) {
	conv, err := analytics.LookupConvention(convention)
	if err != nil {
		return nil, err
	}

	var exs []analytics.Extractor
	switch conv.Name {
	case analytics.ConventionRaw:
		exs = RawExtractors()
	default:
		exs = DashboardExtractors()
	}

	all := append([]analytics.Option{analytics.WithExtractors(exs...)}, opts...)
	return analytics.NewDispatcher(conv, all...), nil
}

func objects(arr []any) []analytics.Object {
	out := make([]analytics.Object, 0, len(arr))
	for _, el := range arr {
		if obj, ok := analytics.AsObject(el); ok {
			out = append(out, obj)
		}
	}
	return out
}
