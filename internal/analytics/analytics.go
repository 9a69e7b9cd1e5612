// SPDX-License-Identifier: Apache-2.0

// Package analytics classifies pre-computed analytics documents by shape and
// reshapes them into chart-ready view models.
package analytics

// Tag identifies one of the known analytics document shapes.
type Tag string

const (
	TagProblemAnalysis   Tag = "problem-analysis"
	TagReviewQuality     Tag = "review-quality"
	TagVersionComparison Tag = "version-comparison"
	TagUserSegmentation  Tag = "user-segmentation"
	TagUserStories       Tag = "user-stories"
	TagMarketingCampaign Tag = "marketing-campaign"
	TagFTUEAnalysis      Tag = "ftue-analysis"
	TagStoreAnalysis     Tag = "store-analysis"
	TagUnknown           Tag = "unknown"
)

// AllTags lists every known tag except TagUnknown.
var AllTags = []Tag{
	TagProblemAnalysis,
	TagReviewQuality,
	TagVersionComparison,
	TagUserSegmentation,
	TagUserStories,
	TagMarketingCampaign,
	TagFTUEAnalysis,
	TagStoreAnalysis,
}

func (t Tag) String() string { return string(t) }

// ParseTag returns the Tag named by s.
func ParseTag(s string) (Tag, error) {
	for _, t := range AllTags {
		if string(t) == s {
			return t, nil
		}
	}
	if s == string(TagUnknown) {
		return TagUnknown, nil
	}
	return TagUnknown, &tagError{name: s}
}

type tagError struct{ name string }

func (e *tagError) Error() string { return "unknown schema tag " + quote(e.name) }
func (e *tagError) Unwrap() error { return ErrUnknownTag }

// Extractor reshapes a classified document into the view model for one tag.
// Extract is only called with documents whose rule for Tag() matched.
type Extractor interface {
	Tag() Tag
	Extract(doc Object) (any, error)
	Name() string
}

// Result is the output of a dispatch.
type Result struct {
	Tag Tag `json:"tag"`
	// View is the normalized view model, the raw document when PassThrough is
	// set, or nil when the input was empty.
	View        any    `json:"view"`
	PassThrough bool   `json:"passThrough"`
	Extractor   string `json:"extractor,omitempty"`
	Convention  string `json:"convention"`
}

// Empty reports whether the dispatch had no data to show.
func (r Result) Empty() bool { return r.View == nil }
