// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/appinsight/insightviz/internal/analytics"
	"github.com/appinsight/insightviz/internal/analytics/extractors"
	"github.com/appinsight/insightviz/internal/analytics/source"
	"github.com/appinsight/insightviz/internal/validate"
)

var documentProperties = map[string]interface{}{
	"content": map[string]interface{}{
		"type":        "string",
		"description": "Raw analytics document as JSON or YAML text",
	},
	"format": map[string]interface{}{
		"type":        "string",
		"description": "Format hint for the document. One of: json, yaml. If omitted, auto-detection is used.",
		"enum":        []string{"json", "yaml"},
	},
	"convention": map[string]interface{}{
		"type":        "string",
		"description": "Marker-key convention to classify with. dashboard (default) or raw. The two are never mixed.",
		"enum":        []string{analytics.ConventionDashboard, analytics.ConventionRaw},
	},
}

// MetadataClassifyDocument describes the classify_analytics_document tool.
var MetadataClassifyDocument = &mcp.Tool{
	Name: "classify_analytics_document",
	Description: "Detect which analytics schema a pre-computed JSON document follows " +
		"(problem-analysis, review-quality, version-comparison, user-segmentation, user-stories, " +
		"marketing-campaign, ftue-analysis, store-analysis) by its marker keys. " +
		"Rules are evaluated in a fixed order and the first match wins; documents matching nothing are \"unknown\".",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"required":   []string{"content"},
		"properties": documentProperties,
	},
}

// MetadataVisualizeDocument describes the visualize_analytics_document tool.
var MetadataVisualizeDocument = &mcp.Tool{
	Name: "visualize_analytics_document",
	Description: "Classify a pre-computed analytics document and reshape it into a chart-ready view model " +
		"(flat arrays of name/value records with defaults for missing fields). " +
		"Unknown documents are returned unchanged with pass_through set.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": merge(documentProperties, map[string]interface{}{
			"verify": map[string]interface{}{
				"type":        "boolean",
				"description": "Check the view model against its output contract before returning it.",
			},
		}),
	},
}

// MetadataListSchemas describes the list_analytics_schemas tool.
var MetadataListSchemas = &mcp.Tool{
	Name:        "list_analytics_schemas",
	Description: "List the marker-key conventions and their rule tables in evaluation order.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"convention": documentProperties["convention"],
		},
	},
}

// InputClassifyDocument is the input for the classify_analytics_document tool.
type InputClassifyDocument struct {
	Content    string `json:"content"`
	Format     string `json:"format"`
	Convention string `json:"convention"`
}

// OutputClassifyDocument is the output of the classify_analytics_document tool.
type OutputClassifyDocument struct {
	Tag        string `json:"tag"`
	Convention string `json:"convention"`
	// Markers is the marker condition of the matching rule.
	Markers string `json:"markers,omitempty"`
}

// InputVisualizeDocument is the input for the visualize_analytics_document tool.
type InputVisualizeDocument struct {
	Content    string `json:"content"`
	Format     string `json:"format"`
	Convention string `json:"convention"`
	Verify     bool   `json:"verify"`
}

// OutputVisualizeDocument is the output of the visualize_analytics_document tool.
type OutputVisualizeDocument struct {
	RequestID   string `json:"request_id"`
	Tag         string `json:"tag"`
	Convention  string `json:"convention"`
	Extractor   string `json:"extractor,omitempty"`
	PassThrough bool   `json:"pass_through"`
	// View is the normalized view model, the raw document on pass-through, or
	// null for an empty document.
	View any `json:"view"`
}

// InputListSchemas is the input for the list_analytics_schemas tool.
type InputListSchemas struct {
	Convention string `json:"convention"`
}

// OutputListSchemas is the output of the list_analytics_schemas tool.
type OutputListSchemas struct {
	Conventions []ConventionInfo `json:"conventions"`
}

// ConventionInfo lists the rules of one convention in evaluation order.
type ConventionInfo struct {
	Name  string     `json:"name"`
	Rules []RuleInfo `json:"rules"`
}

// RuleInfo describes a single classification rule.
type RuleInfo struct {
	Order   int    `json:"order"`
	Tag     string `json:"tag"`
	Markers string `json:"markers"`
}

// Service holds one dispatcher per convention and serves the MCP tools.
type Service struct {
	dispatchers       map[string]*analytics.Dispatcher
	defaultConvention string
	verifyOutput      bool
	logger            *zap.Logger
}

// ServiceOptions configures NewService.
type ServiceOptions struct {
	DefaultConvention string
	VerifyOutput      bool
	Logger            *zap.Logger
	Observer          analytics.Observer
}

// NewService builds dispatchers for every built-in convention.
func NewService(opts ServiceOptions) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := analytics.LookupConvention(opts.DefaultConvention); err != nil {
		return nil, err
	}

	s := &Service{
		dispatchers:       make(map[string]*analytics.Dispatcher),
		defaultConvention: opts.DefaultConvention,
		verifyOutput:      opts.VerifyOutput,
		logger:            logger,
	}
	if s.defaultConvention == "" {
		s.defaultConvention = analytics.ConventionDashboard
	}
	for _, conv := range analytics.Conventions() {
		d, err := extractors.NewDispatcher(conv.Name,
			analytics.WithLogger(logger),
			analytics.WithObserver(opts.Observer),
		)
		if err != nil {
			return nil, err
		}
		s.dispatchers[conv.Name] = d
	}
	return s, nil
}

// Register adds the insightviz tools to server.
func (s *Service) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataClassifyDocument, s.ClassifyDocument)
	mcp.AddTool(server, MetadataVisualizeDocument, s.VisualizeDocument)
	mcp.AddTool(server, MetadataListSchemas, s.ListSchemas)
}

func (s *Service) dispatcher(name string) (*analytics.Dispatcher, error) {
	if name == "" {
		name = s.defaultConvention
	}
	conv, err := analytics.LookupConvention(name)
	if err != nil {
		return nil, err
	}
	return s.dispatchers[conv.Name], nil
}

func decode(content, format string) (any, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	return source.Decode([]byte(content), format)
}

// ClassifyDocument reports the schema tag of the provided document.
func (s *Service) ClassifyDocument(_ context.Context, _ *mcp.CallToolRequest, input InputClassifyDocument) (*mcp.CallToolResult, OutputClassifyDocument, error) {
	d, err := s.dispatcher(input.Convention)
	if err != nil {
		return nil, OutputClassifyDocument{}, err
	}
	doc, err := decode(input.Content, input.Format)
	if err != nil {
		return nil, OutputClassifyDocument{}, err
	}

	tag := d.Classify(doc)
	out := OutputClassifyDocument{Tag: tag.String(), Convention: d.Convention().Name}
	if rule, ok := d.Convention().Rule(tag); ok {
		out.Markers = rule.Markers
	}
	return nil, out, nil
}

// VisualizeDocument classifies the document and returns its view model.
func (s *Service) VisualizeDocument(_ context.Context, _ *mcp.CallToolRequest, input InputVisualizeDocument) (*mcp.CallToolResult, OutputVisualizeDocument, error) {
	d, err := s.dispatcher(input.Convention)
	if err != nil {
		return nil, OutputVisualizeDocument{}, err
	}
	doc, err := decode(input.Content, input.Format)
	if err != nil {
		return nil, OutputVisualizeDocument{}, err
	}

	requestID := uuid.NewString()
	log := s.logger.With(zap.String("request_id", requestID))

	res, err := d.Dispatch(doc)
	if err != nil {
		log.Warn("visualize failed", zap.Error(err))
		return nil, OutputVisualizeDocument{}, err
	}

	if (input.Verify || s.verifyOutput) && !res.PassThrough && !res.Empty() {
		if err := validate.Contract(res.Tag, res.View); err != nil {
			log.Error("view model violates output contract", zap.Stringer("tag", res.Tag), zap.Error(err))
			return nil, OutputVisualizeDocument{}, err
		}
	}

	log.Debug("visualized document", zap.Stringer("tag", res.Tag), zap.Bool("pass_through", res.PassThrough))
	return nil, OutputVisualizeDocument{
		RequestID:   requestID,
		Tag:         res.Tag.String(),
		Convention:  res.Convention,
		Extractor:   res.Extractor,
		PassThrough: res.PassThrough,
		View:        res.View,
	}, nil
}

// ListSchemas describes the rule tables.
func (s *Service) ListSchemas(_ context.Context, _ *mcp.CallToolRequest, input InputListSchemas) (*mcp.CallToolResult, OutputListSchemas, error) {
	convs := analytics.Conventions()
	if input.Convention != "" {
		conv, err := analytics.LookupConvention(input.Convention)
		if err != nil {
			return nil, OutputListSchemas{}, err
		}
		convs = []analytics.Convention{conv}
	}
	return nil, OutputListSchemas{Conventions: DescribeConventions(convs)}, nil
}

// DescribeConventions flattens rule tables for display.
func DescribeConventions(convs []analytics.Convention) []ConventionInfo {
	out := make([]ConventionInfo, 0, len(convs))
	for _, c := range convs {
		info := ConventionInfo{Name: c.Name, Rules: make([]RuleInfo, 0, len(c.Rules))}
		for i, r := range c.Rules {
			info.Rules = append(info.Rules, RuleInfo{Order: i + 1, Tag: r.Tag.String(), Markers: r.Markers})
		}
		out = append(out, info)
	}
	return out
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
