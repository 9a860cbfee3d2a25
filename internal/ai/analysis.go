package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/shopdeskgo/internal/utils"
)

// StringList accepts either a JSON array of strings or one comma separated string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// ListingData is the listing submitted for analysis
type ListingData struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Tags        StringList      `json:"tags,omitempty"`
}

// UnmarshalJSON accepts the price as a number or a string such as "12.50",
// "$12.50" or "". A missing or empty price is zero.
func (l *ListingData) UnmarshalJSON(data []byte) error {
	type plain ListingData
	var aux struct {
		plain
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = ListingData(aux.plain)

	price, err := parseLoosePrice(aux.Price)
	if err != nil {
		return err
	}
	l.Price = price
	return nil
}

func parseLoosePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, err
		}
	}
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	if text == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(text)
}

// AnalysisResult holds either the model's analysis object or the raw text
// that did not contain one. The analysis is passed through as returned, so
// fields the model shapes differently (a "7/10" score, a "$26.99" price)
// still reach the caller.
type AnalysisResult struct {
	Analysis    json.RawMessage
	Error       string
	RawResponse string
}

// MarshalJSON renders the analysis itself, or {error, rawResponse}
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if len(r.Analysis) > 0 {
		return r.Analysis, nil
	}
	return json.Marshal(struct {
		Error       string `json:"error"`
		RawResponse string `json:"rawResponse"`
	}{r.Error, r.RawResponse})
}

// RenderListingPrompt fills the analysis prompt with the listing
func RenderListingPrompt(l ListingData) string {
	tags := "Not provided"
	if len(l.Tags) > 0 {
		tags = strings.Join(l.Tags, ", ")
	}
	return strings.NewReplacer(
		"{title}", l.Title,
		"{description}", l.Description,
		"{price}", l.Price.String(),
		"{tags}", tags,
	).Replace(ListingAnalysisPrompt)
}

var errNotAnObject = errors.New("response is not a JSON object")

// ParseListingAnalysis extracts the JSON object from a model response. The
// result is always usable: text without an object becomes {error, rawResponse}
// and the returned *ParseError only reports that this happened.
func ParseListingAnalysis(raw string) (AnalysisResult, error) {
	extracted := utils.ExtractJSON(raw)

	var fields map[string]json.RawMessage
	err := json.Unmarshal([]byte(extracted), &fields)
	if err == nil && fields == nil {
		err = errNotAnObject
	}
	if err != nil {
		return AnalysisResult{
			Error:       "Failed to parse AI response",
			RawResponse: raw,
		}, &ParseError{Kind: "listing analysis", Raw: raw, err: err}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(extracted)); err != nil {
		return AnalysisResult{Error: "Failed to parse AI response", RawResponse: raw},
			&ParseError{Kind: "listing analysis", Raw: raw, err: err}
	}
	return AnalysisResult{Analysis: compact.Bytes()}, nil
}
