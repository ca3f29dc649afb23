package insight

import (
	"fmt"
	"sort"

	"github.com/wonny/happiness/internal/contracts"
)

// Partitioned holds the two disjoint insight partitions, each ranked
type Partitioned struct {
	Risks         []contracts.WeightedInsight `json:"risks"`
	Opportunities []contracts.WeightedInsight `json:"opportunities"`
}

// Validate checks the ranking preconditions of one record
func Validate(in contracts.WeightedInsight) error {
	if in.WeightedScore < 0 || in.WeightedScore > 100 {
		return fmt.Errorf("insight %s: weighted score %d outside [0,100]: %w", in.ID, in.WeightedScore, contracts.ErrInvalidInsight)
	}
	if in.Priority <= 0 {
		return fmt.Errorf("insight %s: priority %d must be positive: %w", in.ID, in.Priority, contracts.ErrInvalidInsight)
	}
	return nil
}

// Rank filters insights by type and orders them by weighted score descending.
// Ties keep ascending priority, then input order. The input is not modified.
// ⭐ SSOT: 인사이트 정렬 규칙은 여기서만
func Rank(insights []contracts.WeightedInsight, typ contracts.InsightType) ([]contracts.WeightedInsight, error) {
	selected := make([]contracts.WeightedInsight, 0, len(insights))
	for _, in := range insights {
		if in.Type != typ {
			continue
		}
		if err := Validate(in); err != nil {
			return nil, err
		}
		selected = append(selected, in)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].WeightedScore != selected[j].WeightedScore {
			return selected[i].WeightedScore > selected[j].WeightedScore
		}
		return selected[i].Priority < selected[j].Priority
	})

	return selected, nil
}

// Partition ranks risks and opportunities separately
func Partition(insights []contracts.WeightedInsight) (*Partitioned, error) {
	risks, err := Rank(insights, contracts.InsightRisk)
	if err != nil {
		return nil, fmt.Errorf("rank risks: %w", err)
	}

	opportunities, err := Rank(insights, contracts.InsightOpportunity)
	if err != nil {
		return nil, fmt.Errorf("rank opportunities: %w", err)
	}

	return &Partitioned{Risks: risks, Opportunities: opportunities}, nil
}

// Summarize counts insights by impact level
func Summarize(insights []contracts.WeightedInsight) contracts.InsightSummary {
	summary := contracts.InsightSummary{Total: len(insights)}
	for _, in := range insights {
		switch in.Impact {
		case contracts.ImpactHigh:
			summary.HighImpact++
		case contracts.ImpactMedium:
			summary.MediumImpact++
		case contracts.ImpactLow:
			summary.LowImpact++
		}
	}
	return summary
}
