package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/happiness/internal/contracts"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestDefault(t *testing.T) {
	ds, err := Default(fixedNow)
	require.NoError(t, err)

	ref := ds.Data
	assert.Equal(t, "T-Mobile", ref.Brand)
	assert.Len(t, ref.Categories, 8)
	assert.Len(t, ref.Competitors, 4)
	assert.Len(t, ref.Insights, 6)
	assert.Len(t, ref.PositiveInsights, 6)
	assert.Len(t, ref.Alerts, 5)
	assert.Len(t, ref.SocialPosts, 6)

	assert.Equal(t, "embedded", ds.Source)
	assert.Len(t, ds.Hash, 64)

	// ages resolve against load time
	assert.Equal(t, fixedNow.Add(-30*time.Minute), ref.Alerts[0].Timestamp)
	assert.Equal(t, fixedNow.Add(-2*time.Hour), ref.SocialPosts[0].Timestamp)
}

func TestDefault_HashIndependentOfLoadTime(t *testing.T) {
	a, err := Default(fixedNow)
	require.NoError(t, err)
	b, err := Default(fixedNow.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Data.Alerts[0].Timestamp, b.Data.Alerts[0].Timestamp)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	ds, err := Load("", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "embedded", ds.Source)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.yaml")
	content := `
brand: Acme
categories:
  - {category: Support, sentiment: 40, volume: 100, trend: down, change_percent: -2}
competitors: []
insights:
  - {id: r1, title: Churn, weighted_score: 90, priority: 1, type: risk, impact: high}
positive_insights: []
alerts:
  - id: a1
    type: drop
    severity: warning
    title: Drop
    timestamp: 2026-10-18T08:00:00Z
social_posts: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	ds, err := Load(path, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "Acme", ds.Data.Brand)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC), ds.Data.Alerts[0].Timestamp.UTC())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), fixedNow)
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{
			name:    "unknown field",
			yaml:    "brand: Acme\nbrnad: typo\n",
			errPart: "brnad",
		},
		{
			name:    "missing brand",
			yaml:    "categories: []\n",
			errPart: "brand",
		},
		{
			name:    "bad age",
			yaml:    "brand: Acme\nalerts:\n  - {id: a, type: spike, severity: info, age: soon}\n",
			errPart: "age",
		},
		{
			name:    "age and timestamp",
			yaml:    "brand: Acme\nalerts:\n  - id: a\n    type: spike\n    severity: info\n    age: 1h\n    timestamp: 2026-10-18T08:00:00Z\n",
			errPart: "mutually exclusive",
		},
		{
			name:    "no time",
			yaml:    "brand: Acme\nsocial_posts:\n  - {id: p, sentiment: good}\n",
			errPart: "timestamp or age required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "test", fixedNow)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errPart), err.Error())
		})
	}
}

func TestParse_InvalidInsightMatchesSentinel(t *testing.T) {
	content := "brand: Acme\ninsights:\n  - {id: r1, title: x, weighted_score: 120, priority: 1, type: risk, impact: high}\n"

	_, err := Parse([]byte(content), "test", fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidInsight)
	assert.True(t, IsValidationError(err))
}
