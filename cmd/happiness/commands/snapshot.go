package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/sentiment"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "대시보드 1회 계산 및 출력",
	Long: `윈도우를 한 번 생성하고 대시보드를 계산해 출력합니다.

--from-cache 를 지정하면 계산 대신 Redis에 마지막으로 게시된
대시보드를 읽습니다 (REDIS_ENABLED=true 필요).

Example:
  go run ./cmd/happiness snapshot
  go run ./cmd/happiness snapshot --range 7d
  go run ./cmd/happiness snapshot --json
  go run ./cmd/happiness snapshot --from-cache`,
	RunE: runSnapshot,
}

var (
	snapshotRange     string
	snapshotJSON      bool
	snapshotFromCache bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotRange, "range", "30d", "조회 범위 (24h, 7d, 30d)")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "JSON 출력")
	snapshotCmd.Flags().BoolVar(&snapshotFromCache, "from-cache", false, "Redis에 게시된 대시보드 읽기")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	r, err := sentiment.ParseRange(snapshotRange)
	if err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	eng, err := newEngine(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	var d *contracts.Dashboard
	if snapshotFromCache {
		if eng.redisPub == nil {
			return fmt.Errorf("--from-cache requires REDIS_ENABLED=true")
		}
		cached, found, err := eng.redisPub.Load(ctx)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no dashboard published yet")
		}
		d = cached
	} else {
		if _, err := eng.refreshOnce(ctx); err != nil {
			return err
		}
		d, err = eng.builder.Build(r)
		if err != nil {
			return err
		}
	}

	if snapshotJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	printDashboard(d, time.Now())
	return nil
}

// printDashboard renders the dashboard as console sections
func printDashboard(d *contracts.Dashboard, now time.Time) {
	o := d.Overview

	PrintHeader("Customer Happiness Index", [2]string{"Brand", d.Brand},
		[2]string{"Version", fmt.Sprintf("#%d", d.Version)},
		[2]string{"As of", o.AsOf.Format(time.RFC3339)})

	PrintKeyValue("Happiness", fmt.Sprintf("%d (%s)", o.HappinessScore, o.Label), 12)
	PrintKeyValue("Change", formatSigned(o.ScoreChange, "%"), 12)
	PrintKeyValue("Sentiment", fmt.Sprintf("good %.1f / neutral %.1f / bad %.1f", o.Good, o.Neutral, o.Bad), 12)
	PrintKeyValue("Volume", fmt.Sprintf("%s (%s)", formatVolume(o.TotalVolume), formatSigned(o.VolumeChange, "%")), 12)

	s := d.Volume.Stats
	PrintSeparator()
	PrintKeyValue("Mean", formatFloatVolume(s.Mean), 12)
	PrintKeyValue("Std dev", formatFloatVolume(s.StdDev), 12)
	PrintKeyValue("Upper", fmt.Sprintf("%s (%.1fσ)", formatFloatVolume(s.UpperThreshold), s.SigmaMultiplier), 12)

	fmt.Fprintln(out)
	widths := []int{22, 9, 10, 8}
	PrintTableHeader([]string{"CATEGORY", "SENTIMENT", "VOLUME", "TREND"}, widths)
	for _, c := range d.Categories {
		PrintTableRow([]string{
			c.Category,
			fmt.Sprintf("%d", c.Sentiment),
			formatVolume(c.Volume),
			formatSigned(c.ChangePercent, "%"),
		}, widths)
	}
	for _, w := range d.IntegrityWarnings {
		PrintWarning(w.String())
	}

	fmt.Fprintln(out)
	widths = []int{12, 7, 10, 6}
	PrintTableHeader([]string{"COMPETITOR", "STORED", "RECOMPUTED", "GAP"}, widths)
	for _, c := range d.Competitors {
		PrintTableRow([]string{
			c.Profile.Name,
			fmt.Sprintf("%d", c.Profile.HappinessScore),
			fmt.Sprintf("%d", c.RecomputedScore),
			fmt.Sprintf("%+d", c.GapToBrand),
		}, widths)
	}

	fmt.Fprintln(out)
	PrintInfo(fmt.Sprintf("Top risks (%d)", len(d.Risks)))
	for _, in := range d.Risks {
		fmt.Fprintf(out, "   %d. [%d] %s\n", in.Priority, in.WeightedScore, in.Title)
	}
	PrintInfo(fmt.Sprintf("Top opportunities (%d)", len(d.Opportunities)))
	for _, in := range d.Opportunities {
		fmt.Fprintf(out, "   %d. [%d] %s\n", in.Priority, in.WeightedScore, in.Title)
	}

	fmt.Fprintln(out)
	PrintInfo(fmt.Sprintf("Alerts (%d)", len(d.Alerts)))
	for _, a := range d.Alerts {
		fmt.Fprintf(out, "   %s %-40s %s\n", severityIcon(a.Severity), a.Title, formatAge(a.Timestamp, now))
	}

	fmt.Fprintln(out)
	PrintInfo(fmt.Sprintf("Social: %s interactions, %.0f%% positive / %.0f%% negative",
		formatVolume(d.Social.TotalInteractions), d.Social.PositiveShare, d.Social.NegativeShare))
	PrintSeparator()
}
