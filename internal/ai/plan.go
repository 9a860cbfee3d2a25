package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xelth-com/shopdeskgo/internal/utils"
)

// PlanForm holds the user's answers that fill a plan template
type PlanForm struct {
	Title          string `json:"title"`
	Goal           string `json:"goal"`
	Timeline       string `json:"timeline"`
	Budget         string `json:"budget"`
	TargetAudience string `json:"target_audience"`
	Description    string `json:"description"`
}

// PlanTask is one actionable step of a plan
type PlanTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Text is a plan section. Models sometimes answer with a nested object or
// list instead of prose; such values are kept as compact JSON text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	*t = Text(buf.String())
	return nil
}

// BusinessPlan is the generated plan
type BusinessPlan struct {
	PlanSummary               Text       `json:"planSummary"`
	TimelineBreakdown         Text       `json:"timelineBreakdown"`
	MarketingStrategy         Text       `json:"marketingStrategy"`
	OperationalConsiderations Text       `json:"operationalConsiderations"`
	RisksConstraints          Text       `json:"risksConstraints"`
	KeyMetrics                Text       `json:"keyMetrics"`
	Tasks                     []PlanTask `json:"tasks"`

	// Fallback is set when the plan was substituted for an unusable response
	Fallback bool `json:"-"`
}

// FallbackFunc builds the plan returned when a model response cannot be used.
// It must be deterministic and return at least one task.
type FallbackFunc func(form PlanForm) BusinessPlan

// RenderPlanPrompt substitutes the form placeholders in tmpl.
// Every occurrence of each placeholder is replaced.
func RenderPlanPrompt(tmpl string, form PlanForm) string {
	return strings.NewReplacer(
		"{title}", form.Title,
		"{goal}", form.Goal,
		"{timeline}", form.Timeline,
		"{budget}", form.Budget,
		"{target_audience}", form.TargetAudience,
		"{description}", form.Description,
	).Replace(tmpl)
}

// DefaultPlanTemplate returns the built-in prompt for a business context
func DefaultPlanTemplate(businessContext string) string {
	if businessContext == "" {
		businessContext = "small business"
	}
	return strings.ReplaceAll(DefaultBusinessPlanPrompt, "{context}", businessContext)
}

// ParseBusinessPlan decodes the JSON object found in a model response.
// A response without a non-empty tasks array is rejected as a whole.
func ParseBusinessPlan(raw string) (*BusinessPlan, error) {
	var plan BusinessPlan
	if err := json.Unmarshal([]byte(utils.ExtractJSON(raw)), &plan); err != nil {
		return nil, &ParseError{Kind: "business plan", Raw: raw, err: err}
	}
	if len(plan.Tasks) == 0 {
		return nil, &ParseError{Kind: "business plan", Raw: raw, err: ErrMissingTasks}
	}
	for i, task := range plan.Tasks {
		if strings.TrimSpace(task.Title) == "" {
			return nil, &ParseError{Kind: "business plan", Raw: raw, err: fmt.Errorf("task %d has no title", i)}
		}
	}
	return &plan, nil
}

// DefaultFallbackPlan is a generic plan usable for any small business
func DefaultFallbackPlan(form PlanForm) BusinessPlan {
	summary := "This plan aims to achieve your business goals through strategic planning and execution."
	if form.Title != "" {
		summary = fmt.Sprintf("This plan aims to achieve %q through strategic planning and execution.", form.Title)
	}

	return BusinessPlan{
		PlanSummary:               Text(summary),
		TimelineBreakdown:         "Please regenerate for a detailed timeline based on your specific inputs.",
		MarketingStrategy:         "Marketing approach will be tailored to your target audience and budget.",
		OperationalConsiderations: "Operational planning will focus on efficiency and resource optimization.",
		RisksConstraints:          "Consider potential bottlenecks and resource limitations.",
		KeyMetrics:                "Track progress through relevant KPIs and success metrics.",
		Tasks: []PlanTask{
			{
				Title:       "Market Research and Analysis",
				Description: "Conduct thorough market research to understand your target audience, competitors, and market opportunities. Analyze pricing strategies and identify your unique value proposition.",
			},
			{
				Title:       "Business Model Validation",
				Description: "Validate your business model by testing key assumptions. Create prototypes or MVP versions of your products/services and gather feedback from potential customers.",
			},
			{
				Title:       "Financial Planning and Budgeting",
				Description: "Develop detailed financial projections including startup costs, operational expenses, revenue forecasts, and break-even analysis. Set up accounting systems and financial tracking.",
			},
			{
				Title:       "Brand Development and Positioning",
				Description: "Create a strong brand identity including logo, messaging, and visual elements. Develop your brand positioning strategy to differentiate from competitors.",
			},
			{
				Title:       "Marketing Strategy Development",
				Description: "Create a comprehensive marketing plan including digital marketing, social media strategy, content marketing, and customer acquisition tactics within your budget.",
			},
			{
				Title:       "Operational Framework Setup",
				Description: "Establish operational processes, supply chain management, quality control procedures, and workflow systems to ensure smooth business operations.",
			},
			{
				Title:       "Legal and Compliance Requirements",
				Description: "Research and complete all necessary legal requirements including business registration, permits, licenses, insurance, and compliance with industry regulations.",
			},
			{
				Title:       "Launch Preparation and Execution",
				Description: "Plan and execute your launch strategy including soft launch testing, marketing campaigns, inventory preparation, and customer support systems.",
			},
		},
		Fallback: true,
	}
}
