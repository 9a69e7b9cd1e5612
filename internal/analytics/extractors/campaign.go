// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"github.com/appinsight/insightviz/internal/analytics"
)

// MarketingCampaignView is the chart model for generated campaign plans.
type MarketingCampaignView struct {
	CampaignName     string                `json:"campaignName"`
	TargetAudience   string                `json:"targetAudience"`
	Strategies       []Strategy            `json:"strategies"`
	Tactics          []Tactic              `json:"tactics"`
	BudgetAllocation []analytics.NameValue `json:"budgetAllocation"`
	TotalBudget      float64               `json:"totalBudget"`
	ChannelMix       []analytics.NameValue `json:"channelMix"`
	KPIs             []KPI                 `json:"kpis"`
	Timeline         []CampaignPhase       `json:"timeline"`
}

// Strategy is a campaign strategy with its parsed budget.
type Strategy struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Channels    []string `json:"channels"`
	Budget      float64  `json:"budget"`
}

// Tactic is a single channel activity within the campaign.
type Tactic struct {
	Name        string  `json:"name"`
	Channel     string  `json:"channel"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// KPI is a tracked campaign metric and its target.
type KPI struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// CampaignPhase is one step of the campaign timeline.
type CampaignPhase struct {
	Phase      string   `json:"phase"`
	Duration   string   `json:"duration"`
	Activities []string `json:"activities"`
}

// MarketingCampaignExtractor reshapes campaign plans with strategies and
// tactics. Money fields may be strings such as "$5,000".
type MarketingCampaignExtractor struct{}

// NewMarketingCampaignExtractor creates a marketing-campaign extractor.
func NewMarketingCampaignExtractor() *MarketingCampaignExtractor {
	return &MarketingCampaignExtractor{}
}

func (e *MarketingCampaignExtractor) Tag() analytics.Tag { return analytics.TagMarketingCampaign }

func (e *MarketingCampaignExtractor) Name() string { return "marketing-campaign" }

func (e *MarketingCampaignExtractor) Extract(doc analytics.Object) (any, error) {
	view := &MarketingCampaignView{
		CampaignName:     doc.String(analytics.NotAvailable, "campaignName"),
		TargetAudience:   audience(doc),
		Strategies:       []Strategy{},
		Tactics:          []Tactic{},
		BudgetAllocation: []analytics.NameValue{},
		ChannelMix:       []analytics.NameValue{},
		KPIs:             []KPI{},
		Timeline:         []CampaignPhase{},
	}

	channels := analytics.NewGroupScore()
	var sum float64

	for _, el := range doc.Array("strategies") {
		s := strategy(el)
		view.Strategies = append(view.Strategies, s)
		view.BudgetAllocation = append(view.BudgetAllocation, analytics.NameValue{Name: s.Name, Value: s.Budget})
		for _, ch := range s.Channels {
			channels.Add(ch, 1)
		}
		sum += s.Budget
	}

	for _, el := range doc.Array("tactics") {
		t := tactic(el)
		view.Tactics = append(view.Tactics, t)
		if t.Channel != analytics.NotAvailable {
			channels.Add(t.Channel, 1)
		}
		sum += t.Cost
	}

	for _, ch := range channels.Keys() {
		view.ChannelMix = append(view.ChannelMix, analytics.NameValue{Name: ch, Value: channels.Sum(ch)})
	}

	view.TotalBudget = sum
	if raw, ok := doc.Get("totalBudget", "budget"); ok {
		if obj, isObj := analytics.AsObject(raw); isObj {
			raw, ok = obj.Get("total", "amount")
		}
		if ok {
			view.TotalBudget = analytics.CurrencyValue(raw)
		}
	}

	for _, el := range doc.Array("kpis", "KPIs", "metrics") {
		if s, ok := el.(string); ok {
			view.KPIs = append(view.KPIs, KPI{Name: s, Target: analytics.NotAvailable})
			continue
		}
		if obj, ok := analytics.AsObject(el); ok {
			view.KPIs = append(view.KPIs, KPI{
				Name:   obj.String(analytics.NotAvailable, "name", "metric", "kpi"),
				Target: obj.String(analytics.NotAvailable, "target", "goal"),
			})
		}
	}

	for _, p := range doc.Objects("timeline", "phases") {
		view.Timeline = append(view.Timeline, CampaignPhase{
			Phase:      p.String(analytics.NotAvailable, "phase", "name"),
			Duration:   p.String(analytics.NotAvailable, "duration", "period"),
			Activities: p.Strings("activities", "tasks"),
		})
	}
	return view, nil
}

func audience(doc analytics.Object) string {
	if obj := doc.Object("targetAudience"); obj != nil {
		return obj.String(analytics.NotAvailable, "primary", "description", "name")
	}
	return doc.String(analytics.NotAvailable, "targetAudience", "audience")
}

func strategy(el any) Strategy {
	if s, ok := el.(string); ok {
		return Strategy{Name: s, Description: analytics.NotAvailable, Channels: []string{}}
	}
	obj, _ := analytics.AsObject(el)
	budget, _ := obj.Get("budget", "allocatedBudget", "cost")
	return Strategy{
		Name:        obj.String(analytics.NotAvailable, "name", "strategy", "title"),
		Description: obj.String(analytics.NotAvailable, "description", "details"),
		Channels:    obj.Strings("channels", "channel"),
		Budget:      analytics.CurrencyValue(budget),
	}
}

func tactic(el any) Tactic {
	if s, ok := el.(string); ok {
		return Tactic{Name: s, Channel: analytics.NotAvailable, Description: analytics.NotAvailable}
	}
	obj, _ := analytics.AsObject(el)
	cost, _ := obj.Get("cost", "budget", "estimatedCost")
	return Tactic{
		Name:        obj.String(analytics.NotAvailable, "name", "tactic", "title"),
		Channel:     obj.String(analytics.NotAvailable, "channel", "platform"),
		Description: obj.String(analytics.NotAvailable, "description", "details"),
		Cost:        analytics.CurrencyValue(cost),
	}
}
