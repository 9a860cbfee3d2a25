package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/metrics"
)

// PlanRequest is a business plan generation request
type PlanRequest struct {
	Form PlanForm `json:"formData"`
	// Context describes the business, e.g. "handmade candle shop"
	Context string `json:"context,omitempty"`
	// CustomPrompt replaces the default template; it may use the form placeholders
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// Service builds prompts, calls the model and recovers from malformed output
type Service struct {
	gen             TextGenerator
	temperature     float32
	maxTokens       int
	businessContext string
	fallback        FallbackFunc
}

// NewService creates a new AI service
func NewService(gen TextGenerator, cfg config.AIConfig) *Service {
	return &Service{
		gen:             gen,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxTokens,
		businessContext: cfg.BusinessContext,
		fallback:        DefaultFallbackPlan,
	}
}

// WithFallback replaces the plan used when a response cannot be parsed
func (s *Service) WithFallback(f FallbackFunc) *Service {
	if f != nil {
		s.fallback = f
	}
	return s
}

// AnalyzeListing asks the model for an SEO analysis of a listing.
// Only provider failures are returned as errors.
func (s *Service) AnalyzeListing(ctx context.Context, listing ListingData) (AnalysisResult, error) {
	if strings.TrimSpace(listing.Title) == "" {
		return AnalysisResult{}, fmt.Errorf("%w: listing title is required", ErrInvalidInput)
	}

	raw, err := s.gen.Generate(ctx, Request{
		System:      ListingAnalysisSystemPrompt,
		Prompt:      RenderListingPrompt(listing),
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		return AnalysisResult{}, err
	}

	result, err := ParseListingAnalysis(raw)
	if err != nil {
		metrics.AIFallbacks.WithLabelValues("listing_analysis").Inc()
		logger.Warn(ctx).Err(err).Msg("⚠️ AI listing analysis was not valid JSON")
	}
	return result, nil
}

// GenerateBusinessPlan renders the template, calls the model and parses the
// plan. An unusable response is replaced by the fallback plan.
func (s *Service) GenerateBusinessPlan(ctx context.Context, req PlanRequest) (*BusinessPlan, error) {
	if req.CustomPrompt == "" && strings.TrimSpace(req.Form.Title) == "" {
		return nil, fmt.Errorf("%w: plan title is required", ErrInvalidInput)
	}

	tmpl := req.CustomPrompt
	if tmpl == "" {
		businessContext := req.Context
		if businessContext == "" {
			businessContext = s.businessContext
		}
		tmpl = DefaultPlanTemplate(businessContext)
	}

	raw, err := s.gen.Generate(ctx, Request{
		System:      BusinessPlanSystemPrompt,
		Prompt:      RenderPlanPrompt(tmpl, req.Form),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	plan, err := ParseBusinessPlan(raw)
	if err != nil {
		metrics.AIFallbacks.WithLabelValues("business_plan").Inc()
		logger.Warn(ctx).Err(err).Msg("⚠️ AI business plan unusable, returning fallback plan")

		fallback := s.fallback(req.Form)
		fallback.Fallback = true
		return &fallback, nil
	}
	return plan, nil
}
