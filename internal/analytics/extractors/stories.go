// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"strings"

	"github.com/appinsight/insightviz/internal/analytics"
)

// UserStoriesView is the chart model for themed user stories.
type UserStoriesView struct {
	Themes            []Theme               `json:"themes"`
	ThemeDistribution []analytics.NameValue `json:"themeDistribution"`
	PriorityBreakdown []analytics.NameValue `json:"priorityBreakdown"`
	TotalStories      int                   `json:"totalStories"`
}

// Theme groups the stories filed under one name.
type Theme struct {
	Name       string  `json:"name"`
	Frequency  float64 `json:"frequency"`
	StoryCount int     `json:"storyCount"`
	Stories    []Story `json:"stories"`
}

// Story is a single user story.
type Story struct {
	Title              string   `json:"title"`
	Priority           string   `json:"priority"`
	UserType           string   `json:"userType"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
}

var priorityOrder = []string{"Critical", "High", "Medium", "Low"}

// UserStoriesExtractor reshapes a themes array.
type UserStoriesExtractor struct{}

// NewUserStoriesExtractor creates a user-stories extractor.
func NewUserStoriesExtractor() *UserStoriesExtractor {
	return &UserStoriesExtractor{}
}

func (e *UserStoriesExtractor) Tag() analytics.Tag { return analytics.TagUserStories }

func (e *UserStoriesExtractor) Name() string { return "user-stories" }

func (e *UserStoriesExtractor) Extract(doc analytics.Object) (any, error) {
	rows := doc.Objects("themes")
	view := &UserStoriesView{
		Themes:            make([]Theme, 0, len(rows)),
		ThemeDistribution: make([]analytics.NameValue, 0, len(rows)),
		PriorityBreakdown: []analytics.NameValue{},
	}

	priorities := map[string]float64{}
	for _, row := range rows {
		var stories []Story
		for _, el := range row.Array("stories", "userStories", "user_stories") {
			st, ok := story(el)
			if !ok {
				continue
			}
			stories = append(stories, st)
			priorities[st.Priority]++
		}
		if stories == nil {
			stories = []Story{}
		}

		t := Theme{
			Name:       row.String(analytics.NotAvailable, "name", "theme", "title"),
			StoryCount: len(stories),
			Stories:    stories,
		}
		t.Frequency = row.Float(float64(t.StoryCount), "frequency", "count", "mentions")

		view.Themes = append(view.Themes, t)
		view.ThemeDistribution = append(view.ThemeDistribution, analytics.NameValue{Name: t.Name, Value: t.Frequency})
		view.TotalStories += t.StoryCount
	}

	keys := make([]string, 0, len(priorities))
	for k := range priorities {
		keys = append(keys, k)
	}
	for _, k := range analytics.CanonicalOrder(keys, priorityOrder) {
		view.PriorityBreakdown = append(view.PriorityBreakdown, analytics.NameValue{Name: k, Value: priorities[k]})
	}
	return view, nil
}

// story accepts either a bare story string or a story object.
func story(el any) (Story, bool) {
	if s, ok := el.(string); ok {
		if strings.TrimSpace(s) == "" {
			return Story{}, false
		}
		return Story{Title: s, Priority: analytics.NotAvailable, UserType: analytics.NotAvailable, AcceptanceCriteria: []string{}}, true
	}
	obj, ok := analytics.AsObject(el)
	if !ok {
		return Story{}, false
	}
	return Story{
		Title:              obj.String(analytics.NotAvailable, "title", "story", "description"),
		Priority:           normalizePriority(obj.String(analytics.NotAvailable, "priority")),
		UserType:           obj.String(analytics.NotAvailable, "userType", "user_type", "persona", "asA"),
		AcceptanceCriteria: obj.Strings("acceptanceCriteria", "acceptance_criteria"),
	}, true
}

func normalizePriority(p string) string {
	for _, canon := range priorityOrder {
		if strings.EqualFold(strings.TrimSpace(p), canon) {
			return canon
		}
	}
	return p
}
