package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
)

func ins(id string, score, priority int, typ contracts.InsightType) contracts.WeightedInsight {
	return contracts.WeightedInsight{
		ID:            id,
		Title:         "insight " + id,
		WeightedScore: score,
		Priority:      priority,
		Type:          typ,
		Impact:        contracts.ImpactMedium,
	}
}

func ids(list []contracts.WeightedInsight) []string {
	out := make([]string, len(list))
	for i, in := range list {
		out[i] = in.ID
	}
	return out
}

// mixed mirrors the weighted insight set of the dashboard
func mixed() []contracts.WeightedInsight {
	return []contracts.WeightedInsight{
		ins("1", 94, 1, contracts.InsightRisk),
		ins("2", 88, 2, contracts.InsightOpportunity),
		ins("3", 82, 3, contracts.InsightRisk),
		ins("4", 76, 4, contracts.InsightRisk),
		ins("5", 71, 5, contracts.InsightRisk),
		ins("6", 65, 6, contracts.InsightOpportunity),
	}
}

func TestRank_FiltersAndSorts(t *testing.T) {
	risks, err := Rank(mixed(), contracts.InsightRisk)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3", "4", "5"}, ids(risks))

	opps, err := Rank(mixed(), contracts.InsightOpportunity)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "6"}, ids(opps))
}

func TestRank_ScoreDescending(t *testing.T) {
	input := []contracts.WeightedInsight{
		ins("a", 50, 1, contracts.InsightRisk),
		ins("b", 90, 2, contracts.InsightRisk),
		ins("c", 70, 3, contracts.InsightRisk),
	}

	got, err := Rank(input, contracts.InsightRisk)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
	assert.Equal(t, "a", input[0].ID, "input must not be reordered")
}

func TestRank_TiesByPriorityThenInputOrder(t *testing.T) {
	input := []contracts.WeightedInsight{
		ins("late", 80, 3, contracts.InsightRisk),
		ins("early", 80, 1, contracts.InsightRisk),
		ins("dup-a", 80, 2, contracts.InsightRisk),
		ins("dup-b", 80, 2, contracts.InsightRisk),
	}

	got, err := Rank(input, contracts.InsightRisk)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "dup-a", "dup-b", "late"}, ids(got))
}

func TestRank_Idempotent(t *testing.T) {
	once, err := Rank(mixed(), contracts.InsightRisk)
	require.NoError(t, err)

	twice, err := Rank(once, contracts.InsightRisk)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestRank_InvalidInsight(t *testing.T) {
	tests := []struct {
		name string
		bad  contracts.WeightedInsight
	}{
		{"score above 100", ins("x", 101, 1, contracts.InsightRisk)},
		{"negative score", ins("x", -1, 1, contracts.InsightRisk)},
		{"zero priority", ins("x", 50, 0, contracts.InsightRisk)},
		{"negative priority", ins("x", 50, -3, contracts.InsightRisk)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rank(append(mixed(), tt.bad), contracts.InsightRisk)
			assert.ErrorIs(t, err, contracts.ErrInvalidInsight)
		})
	}
}

func TestRank_InvalidRecordOutsideSelectionIgnored(t *testing.T) {
	input := append(mixed(), ins("bad-opp", 150, 0, contracts.InsightOpportunity))

	_, err := Rank(input, contracts.InsightRisk)
	assert.NoError(t, err)

	_, err = Rank(input, contracts.InsightOpportunity)
	assert.ErrorIs(t, err, contracts.ErrInvalidInsight)
}

func TestRank_BoundaryScores(t *testing.T) {
	input := []contracts.WeightedInsight{
		ins("zero", 0, 1, contracts.InsightRisk),
		ins("hundred", 100, 2, contracts.InsightRisk),
	}

	got, err := Rank(input, contracts.InsightRisk)
	require.NoError(t, err)
	assert.Equal(t, []string{"hundred", "zero"}, ids(got))
}

func TestPartition_DisjointAndExhaustive(t *testing.T) {
	inputs := [][]contracts.WeightedInsight{
		mixed(),
		{},
		{ins("only-risk", 10, 1, contracts.InsightRisk)},
		{ins("o1", 10, 1, contracts.InsightOpportunity), ins("o2", 20, 2, contracts.InsightOpportunity)},
	}

	for _, input := range inputs {
		p, err := Partition(input)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, in := range p.Risks {
			assert.Equal(t, contracts.InsightRisk, in.Type)
			seen[in.ID]++
		}
		for _, in := range p.Opportunities {
			assert.Equal(t, contracts.InsightOpportunity, in.Type)
			seen[in.ID]++
		}

		assert.Len(t, seen, len(input))
		for _, in := range input {
			assert.Equal(t, 1, seen[in.ID], "id %s", in.ID)
		}
	}
}

func TestPartition_PropagatesInvalid(t *testing.T) {
	_, err := Partition([]contracts.WeightedInsight{ins("x", 50, 0, contracts.InsightOpportunity)})
	assert.ErrorIs(t, err, contracts.ErrInvalidInsight)
}

func TestSummarize(t *testing.T) {
	input := []contracts.WeightedInsight{
		{ID: "1", Impact: contracts.ImpactHigh},
		{ID: "2", Impact: contracts.ImpactHigh},
		{ID: "3", Impact: contracts.ImpactMedium},
		{ID: "4", Impact: contracts.ImpactLow},
	}

	assert.Equal(t, contracts.InsightSummary{Total: 4, HighImpact: 2, MediumImpact: 1, LowImpact: 1}, Summarize(input))
}
