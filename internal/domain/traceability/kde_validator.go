package traceability

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// KDESeverity ranks a validation finding
type KDESeverity string

const (
	KDESeverityError   KDESeverity = "error"
	KDESeverityWarning KDESeverity = "warning"
	KDESeverityInfo    KDESeverity = "info"
)

// KDEValidationIssue describes one finding against one field
type KDEValidationIssue struct {
	Field    string      `json:"field"`
	Label    string      `json:"label"`
	Severity KDESeverity `json:"severity"`
	Message  string      `json:"message"`
}

// KDEValidationResult is the complete outcome of validating one event's key
// data elements. Errors carries every blocking finding at once; a caller
// never has to resubmit to discover the next problem.
type KDEValidationResult struct {
	Valid             bool                 `json:"valid"`
	Errors            []KDEValidationIssue `json:"errors"`
	Warnings          []KDEValidationIssue `json:"warnings"`
	Infos             []KDEValidationIssue `json:"infos"`
	MissingRequired   []string             `json:"missingRequired"`
	CompletenessScore float64              `json:"completenessScore"`
}

// KDEValidator validates key data elements against the static rule table
type KDEValidator struct{}

// NewKDEValidator creates a KDE validator
func NewKDEValidator() *KDEValidator {
	return &KDEValidator{}
}

// Validate checks the supplied field values against the rule table for the
// event type. Required fields must be present and well-typed. Recognized
// optional fields are type-checked too; a present well-typed optional field
// adds an informational entry and raises the completeness score. Fields
// outside the registry never block.
func (v *KDEValidator) Validate(eventType EventType, values map[string]any) KDEValidationResult {
	result := KDEValidationResult{
		Valid:           true,
		Errors:          []KDEValidationIssue{},
		Warnings:        []KDEValidationIssue{},
		Infos:           []KDEValidationIssue{},
		MissingRequired: []string{},
	}

	required := RequiredKDEs(eventType)
	optional := OptionalKDEs(eventType)

	for _, key := range required {
		def, _ := LookupKDEField(key)
		raw, present := values[key]
		if !present || raw == nil || raw == "" {
			result.MissingRequired = append(result.MissingRequired, key)
			result.Errors = append(result.Errors, KDEValidationIssue{
				Field:    key,
				Label:    def.Label,
				Severity: KDESeverityError,
				Message:  fmt.Sprintf("%s is required for %s events", def.Label, eventType),
			})
			continue
		}
		if issue, ok := checkFieldValue(def, raw); ok {
			result.Errors = append(result.Errors, issue)
		}
	}

	optionalPresent := 0
	for _, key := range optional {
		def, _ := LookupKDEField(key)
		raw, present := values[key]
		if !present || raw == nil || raw == "" {
			continue
		}
		if issue, ok := checkFieldValue(def, raw); ok {
			// Optional values that fail type checks warn instead of block
			issue.Severity = KDESeverityWarning
			result.Warnings = append(result.Warnings, issue)
			continue
		}
		optionalPresent++
		result.Infos = append(result.Infos, KDEValidationIssue{
			Field:    key,
			Label:    def.Label,
			Severity: KDESeverityInfo,
			Message:  fmt.Sprintf("%s provided", def.Label),
		})
	}

	// Unrecognized extra fields are reported but never counted or blocked
	known := make(map[string]struct{}, len(required)+len(optional))
	for _, key := range required {
		known[key] = struct{}{}
	}
	for _, key := range optional {
		known[key] = struct{}{}
	}
	for key := range values {
		if _, ok := known[key]; !ok {
			result.Infos = append(result.Infos, KDEValidationIssue{
				Field:    key,
				Label:    key,
				Severity: KDESeverityInfo,
				Message:  fmt.Sprintf("%s is not part of the %s rule set and was recorded as-is", key, eventType),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	result.CompletenessScore = completenessScore(len(required), len(result.MissingRequired), len(optional), optionalPresent)
	return result
}

// completenessScore weighs required coverage at 80% and optional coverage at
// 20%, returning 0..100.
func completenessScore(requiredTotal, missingRequired, optionalTotal, optionalPresent int) float64 {
	score := 0.0
	if requiredTotal == 0 {
		score += 80
	} else {
		score += 80 * float64(requiredTotal-missingRequired) / float64(requiredTotal)
	}
	if optionalTotal == 0 {
		score += 20
	} else {
		score += 20 * float64(optionalPresent) / float64(optionalTotal)
	}
	return score
}

// checkFieldValue type-checks (and range-checks) one value against its
// definition. It returns an issue and true when the value fails.
func checkFieldValue(def KDEFieldDef, raw any) (KDEValidationIssue, bool) {
	switch def.Type {
	case KDETypeString:
		if _, ok := raw.(string); !ok {
			return KDEValidationIssue{
				Field: def.Key, Label: def.Label, Severity: KDESeverityError,
				Message: fmt.Sprintf("%s must be text", def.Label),
			}, true
		}
	case KDETypeNumber:
		num, ok := parseNumeric(raw)
		if !ok {
			return KDEValidationIssue{
				Field: def.Key, Label: def.Label, Severity: KDESeverityError,
				Message: fmt.Sprintf("%s must be a number", def.Label),
			}, true
		}
		if def.Range != nil && (num < def.Range.Min || num > def.Range.Max) {
			return KDEValidationIssue{
				Field: def.Key, Label: def.Label, Severity: KDESeverityError,
				Message: fmt.Sprintf("%s must be between %g and %g", def.Label, def.Range.Min, def.Range.Max),
			}, true
		}
	case KDETypeDate:
		if !parseableDate(raw) {
			return KDEValidationIssue{
				Field: def.Key, Label: def.Label, Severity: KDESeverityError,
				Message: fmt.Sprintf("%s must be a calendar date (YYYY-MM-DD)", def.Label),
			}, true
		}
	case KDETypeArray:
		if !isList(raw) {
			return KDEValidationIssue{
				Field: def.Key, Label: def.Label, Severity: KDESeverityError,
				Message: fmt.Sprintf("%s must be a list", def.Label),
			}, true
		}
	}
	return KDEValidationIssue{}, false
}

func parseNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func parseableDate(raw any) bool {
	switch v := raw.(type) {
	case time.Time:
		return true
	case string:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
	}
	return false
}

func isList(raw any) bool {
	switch raw.(type) {
	case []any, []string, []float64:
		return true
	}
	return false
}
