// SPDX-License-Identifier: Apache-2.0

// Package validate checks analytics documents against strict structural
// schemas (CUE) and view models against their output contracts (JSON Schema).
package validate

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/appinsight/insightviz/internal/analytics"
)

//go:embed schemas.cue
var structureSource string

var structureDefs = map[string]map[analytics.Tag]string{
	analytics.ConventionDashboard: {
		analytics.TagProblemAnalysis:   "#ProblemAnalysis",
		analytics.TagReviewQuality:     "#ReviewQuality",
		analytics.TagVersionComparison: "#VersionComparison",
		analytics.TagUserSegmentation:  "#UserSegmentation",
		analytics.TagUserStories:       "#UserStories",
		analytics.TagMarketingCampaign: "#MarketingCampaign",
		analytics.TagFTUEAnalysis:      "#FTUEAnalysis",
		analytics.TagStoreAnalysis:     "#StoreAnalysis",
	},
	analytics.ConventionRaw: {
		analytics.TagProblemAnalysis:   "#RawProblemAnalysis",
		analytics.TagReviewQuality:     "#RawReviewQuality",
		analytics.TagVersionComparison: "#RawVersionComparison",
		analytics.TagUserSegmentation:  "#RawUserSegmentation",
		analytics.TagFTUEAnalysis:      "#RawFTUEAnalysis",
		analytics.TagStoreAnalysis:     "#RawStoreAnalysis",
	},
}

// Structure validates raw documents against the CUE definition for their
// convention and tag. A cue.Context is not safe for concurrent use, so calls
// are serialized.
type Structure struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewStructure compiles the embedded CUE definitions.
func NewStructure() (*Structure, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(structureSource, cue.Filename("schemas.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile structure schemas: %w", err)
	}
	return &Structure{ctx: ctx, schema: schema}, nil
}

// Definition returns the CUE definition name used for tag under convention.
func Definition(convention string, tag analytics.Tag) (string, bool) {
	def, ok := structureDefs[convention][tag]
	return def, ok
}

// Validate checks doc against the definition for tag.
func (s *Structure) Validate(convention string, tag analytics.Tag, doc any) error {
	def, ok := Definition(convention, tag)
	if !ok {
		return fmt.Errorf("%w: no structure schema for %q in convention %q", analytics.ErrUnknownTag, tag, convention)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.schema.LookupPath(cue.ParsePath(def))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("schema %s: %w", def, err)
	}
	value := s.ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := schema.Unify(value).Validate(); err != nil {
		return fmt.Errorf("%s document does not match %s: %w", tag, def, err)
	}
	return nil
}
