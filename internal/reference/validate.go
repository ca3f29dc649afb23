package reference

import (
	"errors"
	"fmt"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/insight"
)

// ValidationError 검증 실패 (로딩 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every collection of a reference dataset.
// Ranking preconditions failures also match contracts.ErrInvalidInsight.
func Validate(ref *contracts.ReferenceData) error {
	if ref.Brand == "" {
		return ValidationError{"brand", "required"}
	}

	// === Categories ===
	seen := make(map[string]bool, len(ref.Categories))
	for i, c := range ref.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if c.Category == "" {
			return ValidationError{field + ".category", "required"}
		}
		if seen[c.Category] {
			return ValidationError{field + ".category", fmt.Sprintf("duplicate %q", c.Category)}
		}
		seen[c.Category] = true
		if c.Sentiment < 0 || c.Sentiment > 100 {
			return ValidationError{field + ".sentiment", "must be in [0, 100]"}
		}
		if c.Volume < 0 {
			return ValidationError{field + ".volume", "must be >= 0"}
		}
		switch c.Trend {
		case contracts.TrendUp, contracts.TrendDown, contracts.TrendStable:
		default:
			return ValidationError{field + ".trend", fmt.Sprintf("unknown trend %q", c.Trend)}
		}
	}

	// === Competitors ===
	for i, c := range ref.Competitors {
		field := fmt.Sprintf("competitors[%d]", i)
		if c.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		s := c.Sentiment
		if s.Good < 0 || s.Neutral < 0 || s.Bad < 0 {
			return ValidationError{field + ".sentiment", "components must be >= 0"}
		}
		if s.Good+s.Neutral+s.Bad == 0 {
			return ValidationError{field + ".sentiment", "components must not all be zero"}
		}
	}

	// === Insights ===
	if err := validateInsights("insights", ref.Insights); err != nil {
		return err
	}
	if err := validateInsights("positive_insights", ref.PositiveInsights); err != nil {
		return err
	}

	// === Alerts ===
	for i, a := range ref.Alerts {
		field := fmt.Sprintf("alerts[%d]", i)
		if a.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		switch a.Type {
		case contracts.AlertSpike, contracts.AlertDrop, contracts.AlertAnomaly:
		default:
			return ValidationError{field + ".type", fmt.Sprintf("unknown type %q", a.Type)}
		}
		if a.Severity.Rank() > contracts.SeverityInfo.Rank() {
			return ValidationError{field + ".severity", fmt.Sprintf("unknown severity %q", a.Severity)}
		}
	}

	// === Social posts ===
	for i, p := range ref.SocialPosts {
		field := fmt.Sprintf("social_posts[%d]", i)
		switch p.Sentiment {
		case contracts.PostGood, contracts.PostNeutral, contracts.PostBad:
		default:
			return ValidationError{field + ".sentiment", fmt.Sprintf("unknown sentiment %q", p.Sentiment)}
		}
		if p.Interactions < 0 {
			return ValidationError{field + ".interactions", "must be >= 0"}
		}
	}

	return nil
}

// insightError keeps the field path while matching ErrInvalidInsight
type insightError struct {
	ValidationError
	cause error
}

func (e insightError) Unwrap() error { return e.cause }

func validateInsights(name string, list []contracts.WeightedInsight) error {
	ids := make(map[string]bool, len(list))
	for i, in := range list {
		field := fmt.Sprintf("%s[%d]", name, i)
		if in.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if ids[in.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate %q", in.ID)}
		}
		ids[in.ID] = true

		switch in.Type {
		case contracts.InsightRisk, contracts.InsightOpportunity:
		default:
			return ValidationError{field + ".type", fmt.Sprintf("unknown type %q", in.Type)}
		}
		switch in.Impact {
		case contracts.ImpactHigh, contracts.ImpactMedium, contracts.ImpactLow:
		default:
			return ValidationError{field + ".impact", fmt.Sprintf("unknown impact %q", in.Impact)}
		}

		if err := insight.Validate(in); err != nil {
			return insightError{ValidationError{field, err.Error()}, err}
		}
	}
	return nil
}

// IsValidationError reports whether err came from dataset validation
func IsValidationError(err error) bool {
	var ve ValidationError
	var ie insightError
	return errors.As(err, &ve) || errors.As(err, &ie)
}
