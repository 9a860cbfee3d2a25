package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/shopdeskgo/internal/config"
)

// scriptedGenerator returns canned responses in order and records requests
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []Request
}

func (g *scriptedGenerator) Generate(_ context.Context, req Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	resp := g.responses[0]
	g.responses = g.responses[1:]
	return resp, nil
}

func newTestService(responses ...string) (*Service, *scriptedGenerator) {
	gen := &scriptedGenerator{responses: responses}
	return NewService(gen, config.AIConfig{Temperature: 0.7, MaxTokens: 2000, BusinessContext: "small business"}), gen
}

const validPlan = `{
  "planSummary": "Grow holiday candle sales.",
  "timelineBreakdown": {"week1": "Design", "week2": "Launch"},
  "marketingStrategy": "Instagram reels",
  "operationalConsiderations": "Pour in batches of 50",
  "risksConstraints": "Wax price swings",
  "keyMetrics": "Conversion rate",
  "tasks": [{"title": "Design labels", "description": "Seasonal labels"}]
}`

var candleForm = PlanForm{
	Title:          "Holiday Candles",
	Goal:           "Sell 500 candles",
	Timeline:       "8 weeks",
	Budget:         "$2,000",
	TargetAudience: "gift shoppers",
	Description:    "Soy candles in winter scents",
}

func TestRenderPlanPrompt(t *testing.T) {
	got := RenderPlanPrompt("{title}: {goal} in {timeline} for {budget} to {target_audience}. {description}. Again {title}", candleForm)
	assert.Equal(t, "Holiday Candles: Sell 500 candles in 8 weeks for $2,000 to gift shoppers. Soy candles in winter scents. Again Holiday Candles", got)
}

func TestDefaultPlanTemplate(t *testing.T) {
	assert.Contains(t, DefaultPlanTemplate(""), "expert for a small business.")
	assert.Contains(t, DefaultPlanTemplate("candle shop"), "expert for a candle shop.")
	assert.NotContains(t, DefaultPlanTemplate("candle shop"), "{context}")
}

func TestParseBusinessPlan(t *testing.T) {
	plan, err := ParseBusinessPlan(validPlan)
	require.NoError(t, err)
	assert.Equal(t, Text("Grow holiday candle sales."), plan.PlanSummary)
	assert.Equal(t, Text(`{"week1":"Design","week2":"Launch"}`), plan.TimelineBreakdown)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "Design labels", plan.Tasks[0].Title)
	assert.False(t, plan.Fallback)

	fenced, err := ParseBusinessPlan("```json\n" + validPlan + "\n```")
	require.NoError(t, err)
	assert.Equal(t, plan, fenced)
}

func TestParseBusinessPlanRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Here is your plan: do great things"},
		{"missing tasks", `{"planSummary": "x"}`},
		{"empty tasks", `{"planSummary": "x", "tasks": []}`},
		{"tasks not array", `{"planSummary": "x", "tasks": "later"}`},
		{"untitled task", `{"tasks": [{"description": "no title"}]}`},
		{"truncated", validPlan[:len(validPlan)/2]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParseBusinessPlan(tt.raw)
			assert.Nil(t, plan)
			assert.True(t, IsParseError(err))
		})
	}

	_, err := ParseBusinessPlan(`{"planSummary": "x"}`)
	assert.ErrorIs(t, err, ErrMissingTasks)
}

func TestGenerateBusinessPlan(t *testing.T) {
	svc, gen := newTestService(validPlan)

	plan, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: candleForm, Context: "candle shop"})
	require.NoError(t, err)
	assert.False(t, plan.Fallback)
	assert.Equal(t, "Design labels", plan.Tasks[0].Title)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, BusinessPlanSystemPrompt, req.System)
	assert.Contains(t, req.Prompt, "expert for a candle shop.")
	assert.Contains(t, req.Prompt, "- Target Audience: gift shoppers")
	assert.NotContains(t, req.Prompt, "{title}")
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Equal(t, 2000, req.MaxTokens)
}

func TestGenerateBusinessPlanCustomPrompt(t *testing.T) {
	svc, gen := newTestService(validPlan)

	_, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{
		Form:         candleForm,
		CustomPrompt: "Plan {title} with {budget}",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan Holiday Candles with $2,000", gen.requests[0].Prompt)
}

func TestGenerateBusinessPlanFallsBack(t *testing.T) {
	svc, _ := newTestService("Sorry, I cannot produce JSON today.")

	plan, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: candleForm})
	require.NoError(t, err)
	assert.True(t, plan.Fallback)
	assert.Len(t, plan.Tasks, 8)
	assert.Equal(t, "Market Research and Analysis", plan.Tasks[0].Title)
	assert.Contains(t, string(plan.PlanSummary), "Holiday Candles")

	// Fallback marker stays internal
	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Fallback")
	assert.Contains(t, string(data), `"tasks":[`)
}

func TestGenerateBusinessPlanPluggableFallback(t *testing.T) {
	svc, _ := newTestService(`{"planSummary": "no tasks"}`)
	svc.WithFallback(func(form PlanForm) BusinessPlan {
		return BusinessPlan{
			PlanSummary: Text("Sweet Wick plan for " + form.Title),
			Tasks:       []PlanTask{{Title: "Pour test batch"}},
		}
	})

	plan, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: candleForm})
	require.NoError(t, err)
	assert.True(t, plan.Fallback)
	assert.Equal(t, Text("Sweet Wick plan for Holiday Candles"), plan.PlanSummary)
	assert.Equal(t, "Pour test batch", plan.Tasks[0].Title)
}

func TestGenerateBusinessPlanProviderError(t *testing.T) {
	svc, gen := newTestService()
	gen.err = errors.New("rate limited")

	_, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: candleForm})
	assert.EqualError(t, err, "rate limited")
	assert.False(t, IsParseError(err))
}

func TestGenerateBusinessPlanRequiresTitle(t *testing.T) {
	svc, gen := newTestService(validPlan)

	_, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: PlanForm{Goal: "x"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, gen.requests)
}

func TestAnalyzeListing(t *testing.T) {
	raw := `{
	  "titleAnalysis": {"score": 7, "issues": ["too short"], "suggestions": ["Lavender Soy Candle"]},
	  "seoAnalysis": {"keywordDensity": "low", "missingKeywords": ["gift"], "recommendedTags": ["candle"]},
	  "pricingAnalysis": {"competitiveness": "fair", "suggestedPrice": 26.5, "reasoning": "market"},
	  "descriptionAnalysis": {"readabilityScore": 8, "improvements": [], "suggestedDescription": "..."},
	  "marketResearch": {"targetAudience": "gift buyers", "competitorInsights": "many", "trends": ["soy"]},
	  "overallScore": 72,
	  "priorityActions": ["Add tags"]
	}`
	svc, gen := newTestService(raw)

	listing := ListingData{Title: "Lavender", Description: "Calming", Price: decimal.RequireFromString("24.99")}
	result, err := svc.AnalyzeListing(context.Background(), listing)
	require.NoError(t, err)
	require.NotEmpty(t, result.Analysis)

	var analysis struct {
		OverallScore    float64 `json:"overallScore"`
		PricingAnalysis struct {
			SuggestedPrice float64 `json:"suggestedPrice"`
		} `json:"pricingAnalysis"`
	}
	require.NoError(t, json.Unmarshal(result.Analysis, &analysis))
	assert.Equal(t, float64(72), analysis.OverallScore)
	assert.Equal(t, 26.5, analysis.PricingAnalysis.SuggestedPrice)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))

	prompt := gen.requests[0].Prompt
	assert.Contains(t, prompt, "- Price: $24.99")
	assert.Contains(t, prompt, "- Tags/Keywords: Not provided")
	assert.Equal(t, ListingAnalysisSystemPrompt, gen.requests[0].System)
}

func TestAnalyzeListingInvalidJSON(t *testing.T) {
	svc, _ := newTestService("I think this listing is great!")

	result, err := svc.AnalyzeListing(context.Background(), ListingData{Title: "Lavender"})
	require.NoError(t, err)
	assert.Empty(t, result.Analysis)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Failed to parse AI response","rawResponse":"I think this listing is great!"}`, string(data))
}

func TestListingDataTags(t *testing.T) {
	var fromString, fromList ListingData
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","price":"12.50","tags":"soy, candle ,gift"}`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","price":12.5,"tags":["soy","candle","gift"]}`), &fromList))

	assert.Equal(t, StringList{"soy", "candle", "gift"}, fromString.Tags)
	assert.Equal(t, fromString.Tags, fromList.Tags)
	assert.True(t, fromString.Price.Equal(fromList.Price))
	assert.True(t, strings.Contains(RenderListingPrompt(fromList), "Tags/Keywords: soy, candle, gift"))
}

func TestAnalyzeListingKeepsLooselyTypedFields(t *testing.T) {
	raw := "Here is my analysis:\n```json\n" + `{
	  "titleAnalysis": {"score": "7/10", "issues": "too short"},
	  "pricingAnalysis": {"suggestedPrice": "$26.99", "reasoning": "market"},
	  "overallScore": "72",
	}` + "\n```\nGood luck with your shop!"
	svc, _ := newTestService(raw)

	result, err := svc.AnalyzeListing(context.Background(), ListingData{Title: "Lavender"})
	require.NoError(t, err)
	assert.Empty(t, result.Error)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "titleAnalysis": {"score": "7/10", "issues": "too short"},
	  "pricingAnalysis": {"suggestedPrice": "$26.99", "reasoning": "market"},
	  "overallScore": "72"
	}`, string(data))
}

func TestParseListingAnalysisRejectsNonObject(t *testing.T) {
	result, err := ParseListingAnalysis(`["not", "an", "object"]`)
	assert.True(t, IsParseError(err))
	assert.Empty(t, result.Analysis)
	assert.Equal(t, "Failed to parse AI response", result.Error)
}

func TestListingDataLoosePrice(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty string", `{"title":"a","price":""}`, "0"},
		{"missing", `{"title":"a"}`, "0"},
		{"null", `{"title":"a","price":null}`, "0"},
		{"dollar sign", `{"title":"a","price":"$12.345"}`, "12.345"},
		{"number", `{"title":"a","price":12.5}`, "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l ListingData
			require.NoError(t, json.Unmarshal([]byte(tt.body), &l))
			assert.Equal(t, "a", l.Title)
			assert.Equal(t, tt.want, l.Price.String())
		})
	}

	var bad ListingData
	assert.Error(t, json.Unmarshal([]byte(`{"title":"a","price":"cheap"}`), &bad))
}

func TestGenerateBusinessPlanWithLeadInProse(t *testing.T) {
	svc, _ := newTestService("Here is your plan:\n```json\n" + validPlan + "\n```")

	plan, err := svc.GenerateBusinessPlan(context.Background(), PlanRequest{Form: candleForm})
	require.NoError(t, err)
	assert.False(t, plan.Fallback)
	assert.Equal(t, "Design labels", plan.Tasks[0].Title)
}
