package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidResponse = errors.New("engine response does not match the schema")

var responseValidator = validator.New()

type wireInsight struct {
	Title            *string  `json:"title" validate:"required"`
	Description      *string  `json:"description" validate:"required"`
	PotentialSavings *float64 `json:"potentialSavings" validate:"required,gte=0"`
	Priority         *float64 `json:"priority" validate:"required,min=0,max=1"`
	Type             *string  `json:"type" validate:"required,oneof=Optimization Duplicate HighCost Lifestyle"`
}

type wireResult struct {
	Insights              []wireInsight `json:"insights" validate:"required,dive"`
	Summary               *string       `json:"summary" validate:"required"`
	TotalPotentialSavings *float64      `json:"totalPotentialSavings" validate:"required,gte=0"`
}

type wireNotification struct {
	Title *string `json:"title" validate:"required"`
	Body  *string `json:"body" validate:"required"`
}

// ParseAnalysis decodes engine output into a validated result.
// Fenced code markers are removed; anything else that deviates from the schema is rejected.
func ParseAnalysis(content string) (*AnalysisResult, error) {
	var wire wireResult
	if err := decodeStrict(content, &wire); err != nil {
		return nil, err
	}

	insights := make([]Insight, 0, len(wire.Insights))
	for i, item := range wire.Insights {
		if strings.TrimSpace(*item.Title) == "" {
			return nil, fmt.Errorf("%w: insight %d has an empty title", ErrInvalidResponse, i)
		}
		insights = append(insights, Insight{
			Title:            *item.Title,
			Description:      *item.Description,
			PotentialSavings: *item.PotentialSavings,
			Priority:         *item.Priority,
			Type:             InsightType(*item.Type),
		})
	}
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}

	return &AnalysisResult{
		Insights:              insights,
		Summary:               *wire.Summary,
		TotalPotentialSavings: *wire.TotalPotentialSavings,
	}, nil
}

// ParseNotification decodes a {title, body} pair.
func ParseNotification(content string) (Notification, error) {
	var wire wireNotification
	if err := decodeStrict(content, &wire); err != nil {
		return Notification{}, err
	}

	title := strings.TrimSpace(*wire.Title)
	body := strings.TrimSpace(*wire.Body)
	if title == "" || body == "" {
		return Notification{}, fmt.Errorf("%w: empty notification text", ErrInvalidResponse)
	}

	return Notification{Title: title, Body: body}, nil
}

func decodeStrict(content string, target interface{}) error {
	payload := stripFences(content)
	if payload == "" {
		return ErrEmptyResponse
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after json object", ErrInvalidResponse)
	}

	if err := responseValidator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

func stripFences(input string) string {
	cleaned := strings.ReplaceAll(input, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```JSON", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
