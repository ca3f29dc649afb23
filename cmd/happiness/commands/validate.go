package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/happiness/internal/reference"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/trend"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "참조 데이터 검증",
	Long: `참조 데이터셋(YAML)을 로드하고 검증합니다.

- 스키마/범위 오류는 실패로 처리
- 저장된 trend 와 change_percent 불일치는 경고로 출력
- 경쟁사 점수를 현재 가중치로 재계산해 저장값과 비교

Example:
  go run ./cmd/happiness validate
  go run ./cmd/happiness validate --reference ./reference.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataset, err := reference.Load(cfg.ReferenceFile, time.Now())
	if err != nil {
		PrintError(err.Error())
		return err
	}
	ref := dataset.Data

	PrintHeader("Reference Data",
		[2]string{"Source", dataset.Source},
		[2]string{"Hash", dataset.Hash[:12]},
		[2]string{"Brand", ref.Brand})

	PrintKeyValue("Categories", fmt.Sprintf("%d", len(ref.Categories)), 18)
	PrintKeyValue("Competitors", fmt.Sprintf("%d", len(ref.Competitors)), 18)
	PrintKeyValue("Insights", fmt.Sprintf("%d", len(ref.Insights)), 18)
	PrintKeyValue("Positive insights", fmt.Sprintf("%d", len(ref.PositiveInsights)), 18)
	PrintKeyValue("Alerts", fmt.Sprintf("%d", len(ref.Alerts)), 18)
	PrintKeyValue("Social posts", fmt.Sprintf("%d", len(ref.SocialPosts)), 18)
	PrintSeparator()

	warnings := trend.CheckCategories(ref.Categories)
	for _, w := range warnings {
		PrintWarning(w.String())
	}

	scorer := scoring.NewScorer(cfg.EngineParams().Weights)
	widths := []int{12, 7, 10}
	fmt.Fprintln(out)
	PrintTableHeader([]string{"COMPETITOR", "STORED", "RECOMPUTED"}, widths)
	for _, c := range ref.Competitors {
		recomputed, err := scorer.Recompute(c)
		if err != nil {
			return fmt.Errorf("recompute %s: %w", c.Name, err)
		}
		PrintTableRow([]string{c.Name, fmt.Sprintf("%d", c.HappinessScore), fmt.Sprintf("%d", recomputed)}, widths)
	}
	fmt.Fprintln(out)

	PrintSuccess(fmt.Sprintf("Reference data valid (%d warnings)", len(warnings)))
	return nil
}
