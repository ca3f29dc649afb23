package social

import (
	"sort"

	"github.com/wonny/happiness/internal/contracts"
)

// DefaultTopPosts is the number of posts shown in the engagement feed
const DefaultTopPosts = 5

// Summarize aggregates interactions and sentiment shares across posts and
// returns the top n posts by interactions (newest first on ties).
// Shares are percentages of the post count; an empty feed yields zero shares.
func Summarize(posts []contracts.SocialPost, n int) contracts.SocialSummary {
	var summary contracts.SocialSummary

	for _, p := range posts {
		summary.TotalInteractions += p.Interactions
		switch p.Sentiment {
		case contracts.PostGood:
			summary.PositivePosts++
		case contracts.PostBad:
			summary.NegativePosts++
		}
	}

	if len(posts) > 0 {
		summary.PositiveShare = float64(summary.PositivePosts) / float64(len(posts)) * 100
		summary.NegativeShare = float64(summary.NegativePosts) / float64(len(posts)) * 100
	}

	summary.TopPosts = Top(posts, n)
	return summary
}

// Top returns up to n posts ordered by interactions descending. The input is
// not modified.
func Top(posts []contracts.SocialPost, n int) []contracts.SocialPost {
	sorted := make([]contracts.SocialPost, len(posts))
	copy(sorted, posts)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Interactions != sorted[j].Interactions {
			return sorted[i].Interactions > sorted[j].Interactions
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
