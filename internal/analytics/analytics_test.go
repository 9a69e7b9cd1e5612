// SPDX-License-Identifier: Apache-2.0

package analytics_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/appinsight/insightviz/internal/analytics"
)

// ---------------------------------------------------------------------------
// Value transforms
// ---------------------------------------------------------------------------

func TestSeverityScore(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{"Critical", 10},
		{"Major", 7},
		{"Minor", 4},
		{"Low", 2},
		{" critical ", 10},
		{"Blocker", 5},
		{"", 5},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.SeverityScore(tt.label))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$5,000.50", 5000.50},
		{"N/A", 0},
		{"", 0},
		{"-$120", -120},
		{"€1.234", 1.234},
		{"1.2.3", 1.2},
		{"$10,000 - $15,000", 10000},
		{"$5,000.50.", 5000.5},
		{"$.75", 0.75},
		{"--5", 0},
		{"-", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, analytics.ParseCurrency(tt.in), 1e-9)
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, analytics.Percentage(0, 0))
	assert.Equal(t, 0.0, analytics.Percentage(5, 0))
	assert.False(t, math.IsNaN(analytics.Percentage(0, 0)))
	assert.Equal(t, 25.0, analytics.Percentage(1, 4))
	assert.Equal(t, 33.33, analytics.Percentage(1, 3))
	assert.Equal(t, 100.0, analytics.Percentage(7, 5), "over-full ratios are clamped")
	assert.Equal(t, 0.0, analytics.Percentage(-1, 5))
}

func TestClampImpact(t *testing.T) {
	assert.Equal(t, 2.0, analytics.ClampImpact(0))
	assert.Equal(t, 6.5, analytics.ClampImpact(6.5))
	assert.Equal(t, 10.0, analytics.ClampImpact(42))
}

func TestGroupScore(t *testing.T) {
	g := analytics.NewGroupScore()
	g.Add("NewUsers", 120)
	g.Add("PowerUsers", 20)
	g.Add("NewUsers", 40)

	assert.Equal(t, []string{"NewUsers", "PowerUsers"}, g.Keys())
	assert.Equal(t, 8.0, g.Score("NewUsers"), "160 / (2*10)")
	assert.Equal(t, 2.0, g.Score("PowerUsers"))
	assert.Equal(t, 160.0, g.Sum("NewUsers"))
	assert.Equal(t, 0.0, g.Score("missing"))

	g.Add("Heavy", 500)
	assert.Equal(t, 10.0, g.Score("Heavy"), "capped at 10")
}

func TestCanonicalOrder(t *testing.T) {
	got := analytics.CanonicalOrder([]string{"zeta", "negative", "alpha", "positive"}, []string{"positive", "neutral", "negative"})
	assert.Equal(t, []string{"positive", "negative", "alpha", "zeta"}, got)
}

// ---------------------------------------------------------------------------
// Object accessors
// ---------------------------------------------------------------------------

func TestObjectAccessors(t *testing.T) {
	obj := analytics.Object{
		"name":    "Crash",
		"blank":   "  ",
		"count":   12.0,
		"numeric": "42",
		"pct":     "85%",
		"null":    nil,
		"tags":    []any{"a", 1.0, map[string]any{}, "b"},
		"single":  "only",
		"nested":  map[string]any{"table": []any{}},
		"rows":    []any{map[string]any{"x": 1.0}, "skip"},
	}

	assert.True(t, obj.Has("name"))
	assert.False(t, obj.Has("null"))
	assert.False(t, obj.Has("missing"))

	assert.Equal(t, "Crash", obj.String("N/A", "name"))
	assert.Equal(t, "N/A", obj.String("N/A", "blank"))
	assert.Equal(t, "12", obj.String("N/A", "count"))
	assert.Equal(t, "Crash", obj.String("N/A", "missing", "name"))

	assert.Equal(t, 12.0, obj.Float(0, "count"))
	assert.Equal(t, 42.0, obj.Float(0, "numeric"))
	assert.Equal(t, 85.0, obj.Float(0, "pct"))
	assert.Equal(t, -1.0, obj.Float(-1, "name"))
	assert.Equal(t, 12, obj.Int(0, "count"))

	assert.Equal(t, []string{"a", "1", "b"}, obj.Strings("tags"))
	assert.Equal(t, []string{"only"}, obj.Strings("single"))
	assert.Equal(t, []string{}, obj.Strings("missing"))

	assert.NotNil(t, obj.Object("nested"))
	assert.Nil(t, obj.Object("name"))
	assert.Len(t, obj.Objects("rows"), 1)

	_, ok := obj.Lookup("nested", "table")
	assert.True(t, ok)
	_, ok = obj.Lookup("name", "table")
	assert.False(t, ok)

	var nilObj analytics.Object
	assert.Equal(t, "d", nilObj.String("d", "x"))
	assert.Empty(t, nilObj.Objects("x"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", analytics.KindOf(nil))
	assert.Equal(t, "object", analytics.KindOf(map[string]any{}))
	assert.Equal(t, "array", analytics.KindOf([]any{}))
	assert.Equal(t, "string", analytics.KindOf("x"))
	assert.Equal(t, "number", analytics.KindOf(1.0))
	assert.Equal(t, "boolean", analytics.KindOf(true))
}

// ---------------------------------------------------------------------------
// Conventions and classification
// ---------------------------------------------------------------------------

func TestDashboardRules_PositiveControls(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want analytics.Tag
	}{
		{"problem analysis", map[string]any{"problem_analysis": map[string]any{"table": []any{}}}, analytics.TagProblemAnalysis},
		{"rating distribution", map[string]any{"ratingDistribution": map[string]any{}}, analytics.TagReviewQuality},
		{"spam vs authentic", map[string]any{"spamVsAuthentic": map[string]any{}}, analytics.TagReviewQuality},
		{"timeline", map[string]any{"timelineData": []any{}}, analytics.TagVersionComparison},
		{"best and worst", map[string]any{"bestSentiment": map[string]any{}, "worstSentiment": map[string]any{}}, analytics.TagVersionComparison},
		{"segments", map[string]any{"segments": []any{}}, analytics.TagUserSegmentation},
		{"themes", map[string]any{"themes": []any{}}, analytics.TagUserStories},
		{"campaign with strategies", map[string]any{"campaignName": "Spring", "strategies": []any{}}, analytics.TagMarketingCampaign},
		{"campaign with tactics", map[string]any{"campaignName": "Spring", "tactics": []any{}}, analytics.TagMarketingCampaign},
		{"ftue", map[string]any{"complianceCounts": map[string]any{}, "suggestedImprovements": []any{}}, analytics.TagFTUEAnalysis},
		{"store", map[string]any{"criteriaEvaluations": []any{}, "overallScore": 7.5}, analytics.TagStoreAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.DashboardRules.Classify(tt.doc))
		})
	}
}

func TestDashboardRules_NearMisses(t *testing.T) {
	tests := []struct {
		name string
		doc  any
	}{
		{"problem analysis without table", map[string]any{"problem_analysis": map[string]any{}}},
		{"problem analysis not an object", map[string]any{"problem_analysis": "table"}},
		{"only best sentiment", map[string]any{"bestSentiment": map[string]any{}}},
		{"segments not an array", map[string]any{"segments": map[string]any{}}},
		{"themes not an array", map[string]any{"themes": "ux"}},
		{"campaign name only", map[string]any{"campaignName": "Spring"}},
		{"compliance only", map[string]any{"complianceCounts": map[string]any{}}},
		{"null marker", map[string]any{"ratingDistribution": nil}},
		{"criteria without score", map[string]any{"criteriaEvaluations": []any{}}},
		{"array document", []any{map[string]any{"segments": []any{}}}},
		{"string document", "segments"},
		{"nil document", nil},
		{"empty object", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, analytics.TagUnknown, analytics.DashboardRules.Classify(tt.doc))
		})
	}
}

func TestDashboardRules_FirstMatchWins(t *testing.T) {
	doc := map[string]any{
		"themes":                []any{},
		"complianceCounts":      map[string]any{},
		"suggestedImprovements": []any{},
	}
	assert.Equal(t, analytics.TagUserStories, analytics.DashboardRules.Classify(doc))

	doc["problem_analysis"] = map[string]any{"table": []any{}}
	assert.Equal(t, analytics.TagProblemAnalysis, analytics.DashboardRules.Classify(doc))
}

func TestRawRules_PositiveControls(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want analytics.Tag
	}{
		{"problem analysis", map[string]any{"problem_analysis": map[string]any{}, "actionable_insights": []any{}}, analytics.TagProblemAnalysis},
		{"quality", map[string]any{"overall_quality_metrics": map[string]any{}}, analytics.TagReviewQuality},
		{"versions", map[string]any{"version_history": []any{}}, analytics.TagVersionComparison},
		{"segments", map[string]any{"user_segments": []any{}}, analytics.TagUserSegmentation},
		{"ftue", map[string]any{"ftueAnalysis": map[string]any{}}, analytics.TagFTUEAnalysis},
		{"store", map[string]any{"storeAnalysis": map[string]any{}}, analytics.TagStoreAnalysis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.RawRules.Classify(tt.doc))
		})
	}
}

func TestConventionsAreNotInterchangeable(t *testing.T) {
	dashboard := map[string]any{"segments": []any{}}
	raw := map[string]any{"user_segments": []any{}}

	assert.Equal(t, analytics.TagUnknown, analytics.RawRules.Classify(dashboard))
	assert.Equal(t, analytics.TagUnknown, analytics.DashboardRules.Classify(raw))

	// problem_analysis without actionable_insights only matches the dashboard table marker.
	pa := map[string]any{"problem_analysis": map[string]any{"table": []any{}}}
	assert.Equal(t, analytics.TagProblemAnalysis, analytics.DashboardRules.Classify(pa))
	assert.Equal(t, analytics.TagUnknown, analytics.RawRules.Classify(pa))
}

func TestClassify_Deterministic(t *testing.T) {
	doc := map[string]any{
		"ratingDistribution": map[string]any{"1_star": 1.0},
		"timelineData":       []any{},
		"segments":           []any{},
	}
	first := analytics.DashboardRules.Classify(doc)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, analytics.DashboardRules.Classify(doc))
	}
	assert.Equal(t, analytics.TagReviewQuality, first)
}

func TestLookupConvention(t *testing.T) {
	c, err := analytics.LookupConvention("")
	require.NoError(t, err)
	assert.Equal(t, analytics.ConventionDashboard, c.Name)

	c, err = analytics.LookupConvention("RAW")
	require.NoError(t, err)
	assert.Equal(t, analytics.ConventionRaw, c.Name)

	_, err = analytics.LookupConvention("legacy")
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrUnknownConvention)
}

func TestParseTag(t *testing.T) {
	tag, err := analytics.ParseTag("store-analysis")
	require.NoError(t, err)
	assert.Equal(t, analytics.TagStoreAnalysis, tag)

	_, err = analytics.ParseTag("pie-chart")
	assert.ErrorIs(t, err, analytics.ErrUnknownTag)
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

type stubExtractor struct {
	tag  analytics.Tag
	view any
	err  error
	boom bool
}

func (s stubExtractor) Tag() analytics.Tag { return s.tag }
func (s stubExtractor) Name() string       { return "stub-" + s.tag.String() }
func (s stubExtractor) Extract(analytics.Object) (any, error) {
	if s.boom {
		var m map[string]int
		m["x"]++ // nil map write
	}
	return s.view, s.err
}

type countingObserver struct {
	classified map[analytics.Tag]int
	failed     map[analytics.Tag]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{classified: map[analytics.Tag]int{}, failed: map[analytics.Tag]int{}}
}

func (o *countingObserver) Classified(_ string, tag analytics.Tag)       { o.classified[tag]++ }
func (o *countingObserver) ExtractionFailed(_ string, tag analytics.Tag) { o.failed[tag]++ }

func TestDispatcher_NilDocument(t *testing.T) {
	d := analytics.NewDispatcher(analytics.DashboardRules)
	res, err := d.Dispatch(nil)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, analytics.TagUnknown, res.Tag)
	assert.False(t, res.PassThrough)
}

func TestDispatcher_PassThrough(t *testing.T) {
	d := analytics.NewDispatcher(analytics.DashboardRules)
	doc := map[string]any{"hello": "world"}

	res, err := d.Dispatch(doc)
	require.NoError(t, err)
	assert.True(t, res.PassThrough)
	assert.Equal(t, analytics.TagUnknown, res.Tag)
	assert.Equal(t, doc, res.View)

	arr := []any{1.0, 2.0}
	res, err = d.Dispatch(arr)
	require.NoError(t, err)
	assert.True(t, res.PassThrough)
	assert.Equal(t, arr, res.View)
}

func TestDispatcher_RoutesToExtractor(t *testing.T) {
	obs := newCountingObserver()
	d := analytics.NewDispatcher(analytics.DashboardRules,
		analytics.WithExtractors(stubExtractor{tag: analytics.TagUserStories, view: "stories"}),
		analytics.WithObserver(obs),
		analytics.WithLogger(zaptest.NewLogger(t)),
	)

	res, err := d.Dispatch(map[string]any{"themes": []any{}})
	require.NoError(t, err)
	assert.Equal(t, analytics.TagUserStories, res.Tag)
	assert.Equal(t, "stories", res.View)
	assert.Equal(t, "stub-user-stories", res.Extractor)
	assert.Equal(t, analytics.ConventionDashboard, res.Convention)
	assert.Equal(t, 1, obs.classified[analytics.TagUserStories])
	assert.Equal(t, []string{"stub-user-stories"}, d.RegisteredExtractors())
}

func TestDispatcher_MissingExtractor(t *testing.T) {
	obs := newCountingObserver()
	d := analytics.NewDispatcher(analytics.DashboardRules, analytics.WithObserver(obs))
	_, err := d.Dispatch(map[string]any{"themes": []any{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrNoExtractor)
	assert.Equal(t, 1, obs.failed[analytics.TagUserStories])
}

func TestDispatcher_ExtractorErrorIsWrapped(t *testing.T) {
	d := analytics.NewDispatcher(analytics.DashboardRules,
		analytics.WithExtractors(stubExtractor{tag: analytics.TagUserStories, err: errors.New("bad theme")}),
	)
	res, err := d.Dispatch(map[string]any{"themes": []any{}})
	require.Error(t, err)
	assert.Nil(t, res.View)

	var ee *analytics.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, analytics.TagUserStories, ee.Tag)
	assert.Contains(t, err.Error(), "bad theme")
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := analytics.NewDispatcher(analytics.DashboardRules,
		analytics.WithExtractors(stubExtractor{tag: analytics.TagUserStories, boom: true}),
		analytics.WithLogger(zaptest.NewLogger(t)),
	)
	res, err := d.Dispatch(map[string]any{"themes": []any{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, analytics.ErrExtractorPanic)
	assert.Nil(t, res.View)
}

func TestDispatcher_Extract(t *testing.T) {
	d := analytics.NewDispatcher(analytics.DashboardRules,
		analytics.WithExtractors(stubExtractor{tag: analytics.TagUserStories, view: "stories"}),
	)

	view, err := d.Extract(analytics.TagUserStories, nil)
	require.NoError(t, err)
	assert.Nil(t, view, "nil document yields no data")

	view, err = d.Extract(analytics.TagUserStories, map[string]any{"segments": []any{}})
	require.NoError(t, err)
	assert.Nil(t, view, "predicate false yields no data")

	view, err = d.Extract(analytics.TagUserStories, map[string]any{"themes": []any{}})
	require.NoError(t, err)
	assert.Equal(t, "stories", view)

	raw := analytics.NewDispatcher(analytics.RawRules)
	_, err = raw.Extract(analytics.TagUserStories, map[string]any{"themes": []any{}})
	assert.ErrorIs(t, err, analytics.ErrUnknownTag)
}

func TestMalformed(t *testing.T) {
	err := analytics.Malformed(analytics.TagStoreAnalysis, "criteriaEvaluations", "array", "oops")
	assert.ErrorIs(t, err, analytics.ErrMalformedField)
	assert.Contains(t, err.Error(), `field "criteriaEvaluations"`)
	assert.Contains(t, err.Error(), "want array, got string")
}
