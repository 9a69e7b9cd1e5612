// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/appinsight/insightviz/internal/analytics"
)

func arrayOf(item map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": item}
}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": props,
	}
}

var (
	str     = map[string]interface{}{"type": "string"}
	num     = map[string]interface{}{"type": "number"}
	integer = map[string]interface{}{"type": "integer"}
	strList = arrayOf(str)
	pct     = map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100}

	nameValue    = object([]string{"name", "value"}, map[string]interface{}{"name": str, "value": num})
	nameValuePct = object([]string{"name", "value", "percentage"}, map[string]interface{}{"name": str, "value": num, "percentage": pct})
)

// contracts describes the view model each tag must produce. Every listed
// field is required because downstream renderers never branch on absence.
var contracts = map[analytics.Tag]map[string]interface{}{
	analytics.TagProblemAnalysis: object(
		[]string{"problemCategories", "problems", "segmentImpact", "actionableInsights", "criticalProblemsCount", "totalProblems"},
		map[string]interface{}{
			"problemCategories": arrayOf(object([]string{"name", "count"}, map[string]interface{}{"name": str, "count": num})),
			"problems": arrayOf(object(
				[]string{"name", "severity", "frequency", "impact", "affectedSegments"},
				map[string]interface{}{
					"name":             str,
					"severity":         map[string]interface{}{"type": "number", "minimum": 2, "maximum": 10},
					"frequency":        num,
					"impact":           map[string]interface{}{"type": "number", "minimum": 2, "maximum": 10},
					"affectedSegments": strList,
				},
			)),
			"segmentImpact":         arrayOf(object([]string{"name", "score"}, map[string]interface{}{"name": str, "score": map[string]interface{}{"type": "number", "maximum": 10}})),
			"actionableInsights":    strList,
			"criticalProblemsCount": integer,
			"totalProblems":         integer,
		},
	),
	analytics.TagReviewQuality: object(
		[]string{"ratingDistribution", "spamVsAuthentic", "sentimentBreakdown", "totalReviews", "averageRating", "spamPercentage"},
		map[string]interface{}{
			"ratingDistribution": map[string]interface{}{
				"type":     "array",
				"minItems": 5,
				"maxItems": 5,
				"items": object([]string{"stars", "name", "count", "percentage"}, map[string]interface{}{
					"stars": integer, "name": str, "count": num, "percentage": pct,
				}),
			},
			"spamVsAuthentic":    arrayOf(nameValuePct),
			"sentimentBreakdown": arrayOf(nameValuePct),
			"totalReviews":       num,
			"averageRating":      num,
			"spamPercentage":     pct,
		},
	),
	analytics.TagVersionComparison: object(
		[]string{"timeline", "bestSentiment", "worstSentiment", "sentimentDelta", "keyChanges"},
		map[string]interface{}{
			"timeline": arrayOf(object([]string{"version", "date", "sentiment", "rating", "reviewCount"}, map[string]interface{}{
				"version": str, "date": str, "sentiment": num, "rating": num, "reviewCount": num,
			})),
			"bestSentiment":  object([]string{"version", "score", "summary"}, map[string]interface{}{"version": str, "score": num, "summary": str}),
			"worstSentiment": object([]string{"version", "score", "summary"}, map[string]interface{}{"version": str, "score": num, "summary": str}),
			"sentimentDelta": num,
			"keyChanges":     strList,
		},
	),
	analytics.TagUserSegmentation: object(
		[]string{"segments", "segmentSizes", "totalUsers"},
		map[string]interface{}{
			"segments": arrayOf(object([]string{"name", "size", "percentage", "characteristics", "painPoints"}, map[string]interface{}{
				"name": str, "size": num, "percentage": pct, "characteristics": strList, "painPoints": strList,
			})),
			"segmentSizes": arrayOf(nameValue),
			"totalUsers":   num,
		},
	),
	analytics.TagUserStories: object(
		[]string{"themes", "themeDistribution", "priorityBreakdown", "totalStories"},
		map[string]interface{}{
			"themes": arrayOf(object([]string{"name", "frequency", "storyCount", "stories"}, map[string]interface{}{
				"name": str, "frequency": num, "storyCount": integer,
				"stories": arrayOf(object([]string{"title", "priority"}, map[string]interface{}{"title": str, "priority": str})),
			})),
			"themeDistribution": arrayOf(nameValue),
			"priorityBreakdown": arrayOf(nameValue),
			"totalStories":      integer,
		},
	),
	analytics.TagMarketingCampaign: object(
		[]string{"campaignName", "targetAudience", "strategies", "tactics", "budgetAllocation", "totalBudget", "channelMix", "kpis", "timeline"},
		map[string]interface{}{
			"campaignName":     str,
			"targetAudience":   str,
			"strategies":       arrayOf(object([]string{"name", "channels", "budget"}, map[string]interface{}{"name": str, "channels": strList, "budget": num})),
			"tactics":          arrayOf(object([]string{"name", "channel", "cost"}, map[string]interface{}{"name": str, "channel": str, "cost": num})),
			"budgetAllocation": arrayOf(nameValue),
			"totalBudget":      num,
			"channelMix":       arrayOf(nameValue),
			"kpis":             arrayOf(object([]string{"name", "target"}, map[string]interface{}{"name": str, "target": str})),
			"timeline":         arrayOf(object([]string{"phase", "duration", "activities"}, map[string]interface{}{"phase": str, "duration": str, "activities": strList})),
		},
	),
	analytics.TagFTUEAnalysis: object(
		[]string{"compliance", "complianceRate", "improvements", "steps", "overallAssessment"},
		map[string]interface{}{
			"compliance":        arrayOf(nameValuePct),
			"complianceRate":    pct,
			"improvements":      arrayOf(object([]string{"area", "description", "priority", "impact"}, map[string]interface{}{"area": str, "description": str, "priority": str, "impact": str})),
			"steps":             arrayOf(object([]string{"step", "status"}, map[string]interface{}{"step": str, "status": str})),
			"overallAssessment": str,
		},
	),
	analytics.TagStoreAnalysis: object(
		[]string{"overallScore", "criteria", "criteriaScores", "statusBreakdown", "recommendations"},
		map[string]interface{}{
			"overallScore": num,
			"criteria": arrayOf(object([]string{"name", "score", "maxScore", "percentage", "status", "feedback"}, map[string]interface{}{
				"name": str, "score": num, "maxScore": map[string]interface{}{"type": "number", "minimum": 0}, "percentage": pct, "status": str, "feedback": str,
			})),
			"criteriaScores":  arrayOf(nameValue),
			"statusBreakdown": arrayOf(nameValue),
			"recommendations": strList,
		},
	),
}

// ContractError lists every output-contract violation of a view model.
type ContractError struct {
	Tag        analytics.Tag
	Violations []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s view violates its output contract: %v", e.Tag, e.Violations)
}

// Contract checks that view satisfies the output contract for tag.
func Contract(tag analytics.Tag, view any) error {
	schema, ok := contracts[tag]
	if !ok {
		return fmt.Errorf("%w: no output contract for %q", analytics.ErrUnknownTag, tag)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(view))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return &ContractError{Tag: tag, Violations: errs}
	}
	return nil
}
