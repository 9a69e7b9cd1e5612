// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"fmt"
	"strings"
)

// Rule pairs a tag with the marker-key predicate that selects it.
type Rule struct {
	Tag     Tag
	Markers string
	Matches func(doc Object) bool
}

// Convention is a named, ordered rule table. Rules are evaluated in order;
// the first match wins.
type Convention struct {
	Name  string
	Rules []Rule
}

const (
	ConventionDashboard = "dashboard"
	ConventionRaw       = "raw"
)

// DashboardRules is the marker convention used by the chart dashboards.
var DashboardRules = Convention{
	Name: ConventionDashboard,
	Rules: []Rule{
		{
			Tag:     TagProblemAnalysis,
			Markers: "problem_analysis.table",
			Matches: func(d Object) bool { return hasPath(d, "problem_analysis", "table") },
		},
		{
			Tag:     TagReviewQuality,
			Markers: "ratingDistribution | spamVsAuthentic",
			Matches: func(d Object) bool { return d.Has("ratingDistribution") || d.Has("spamVsAuthentic") },
		},
		{
			Tag:     TagVersionComparison,
			Markers: "timelineData | (bestSentiment & worstSentiment)",
			Matches: func(d Object) bool {
				return d.Has("timelineData") || (d.Has("bestSentiment") && d.Has("worstSentiment"))
			},
		},
		{
			Tag:     TagUserSegmentation,
			Markers: "segments[]",
			Matches: func(d Object) bool { return isArray(d, "segments") },
		},
		{
			Tag:     TagUserStories,
			Markers: "themes[]",
			Matches: func(d Object) bool { return isArray(d, "themes") },
		},
		{
			Tag:     TagMarketingCampaign,
			Markers: "campaignName & (strategies | tactics)",
			Matches: func(d Object) bool {
				return d.Has("campaignName") && (d.Has("strategies") || d.Has("tactics"))
			},
		},
		{
			Tag:     TagFTUEAnalysis,
			Markers: "complianceCounts & suggestedImprovements",
			Matches: func(d Object) bool { return d.Has("complianceCounts") && d.Has("suggestedImprovements") },
		},
		{
			Tag:     TagStoreAnalysis,
			Markers: "criteriaEvaluations & overallScore",
			Matches: func(d Object) bool { return d.Has("criteriaEvaluations") && d.Has("overallScore") },
		},
	},
}

// RawRules is the marker convention used by the raw-export dashboards. It
// names the same concepts with different top-level keys and must not be mixed
// with DashboardRules on one input stream.
var RawRules = Convention{
	Name: ConventionRaw,
	Rules: []Rule{
		{
			Tag:     TagProblemAnalysis,
			Markers: "problem_analysis & actionable_insights",
			Matches: func(d Object) bool { return d.Has("problem_analysis") && d.Has("actionable_insights") },
		},
		{
			Tag:     TagReviewQuality,
			Markers: "overall_quality_metrics",
			Matches: func(d Object) bool { return d.Has("overall_quality_metrics") },
		},
		{
			Tag:     TagVersionComparison,
			Markers: "version_history",
			Matches: func(d Object) bool { return d.Has("version_history") },
		},
		{
			Tag:     TagUserSegmentation,
			Markers: "user_segments",
			Matches: func(d Object) bool { return d.Has("user_segments") },
		},
		{
			Tag:     TagFTUEAnalysis,
			Markers: "ftueAnalysis",
			Matches: func(d Object) bool { return d.Has("ftueAnalysis") },
		},
		{
			Tag:     TagStoreAnalysis,
			Markers: "storeAnalysis",
			Matches: func(d Object) bool { return d.Has("storeAnalysis") },
		},
	},
}

// Conventions returns the built-in conventions in a stable order.
func Conventions() []Convention {
	return []Convention{DashboardRules, RawRules}
}

// LookupConvention resolves a convention by name. An empty name selects the
// dashboard convention.
func LookupConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ConventionDashboard:
		return DashboardRules, nil
	case ConventionRaw:
		return RawRules, nil
	}
	return Convention{}, fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownConvention, name, ConventionDashboard, ConventionRaw)
}

// Classify returns the tag of the first rule matching doc, or TagUnknown.
// Documents that are not JSON objects never match.
func (c Convention) Classify(doc any) Tag {
	obj, ok := AsObject(doc)
	if !ok {
		return TagUnknown
	}
	for _, r := range c.Rules {
		if r.Matches(obj) {
			return r.Tag
		}
	}
	return TagUnknown
}

// Rule returns the rule for tag.
func (c Convention) Rule(tag Tag) (Rule, bool) {
	for _, r := range c.Rules {
		if r.Tag == tag {
			return r, true
		}
	}
	return Rule{}, false
}

// Tags returns the tags of the convention in evaluation order.
func (c Convention) Tags() []Tag {
	tags := make([]Tag, len(c.Rules))
	for i, r := range c.Rules {
		tags[i] = r.Tag
	}
	return tags
}

func hasPath(d Object, path ...string) bool {
	_, ok := d.Lookup(path...)
	return ok
}

func isArray(d Object, key string) bool {
	_, ok := AsArray(d[key])
	return ok
}
