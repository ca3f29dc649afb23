package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/happiness/internal/refresh"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `윈도우 새로고침 스케줄러를 HTTP 없이 실행하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작 (Ctrl+C 종료)
  list    - 등록된 작업 목록
  run     - 새로고침 즉시 실행 후 통계 출력

Example:
  go run ./cmd/happiness scheduler start
  go run ./cmd/happiness scheduler list
  go run ./cmd/happiness scheduler run --times 3`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 REFRESH_INTERVAL 주기로 윈도우를 재생성합니다.

REDIS_ENABLED=true 이면 매 새로고침마다 대시보드를 Redis에 게시합니다.`,
		RunE: runSchedulerStart,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run",
		Short: "새로고침 즉시 실행",
		RunE:  runRefreshJob,
	}

	runTimes int
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerRunCmd.Flags().IntVar(&runTimes, "times", 1, "연속 실행 횟수")
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== Customer Happiness Index Scheduler ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	eng.scheduler.Start(ctx)

	fmt.Fprintln(out)
	PrintSuccess("Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, name := range eng.scheduler.GetAllJobs() {
		fmt.Fprintf(out, "  - %s (@every %s)\n", name, cfg.Engine.RefreshInterval)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	eng.Close()
	printJobStats(eng.scheduler.GetJobStats())
	fmt.Fprintln(out, "Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	eng, err := newEngine(cmd.Context(), cfg, log, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Fprintln(out, "Registered jobs:")
	stats := eng.scheduler.GetJobStats()
	for _, name := range eng.scheduler.GetAllJobs() {
		fmt.Fprintf(out, "  - %s (%s)\n", name, stats[name].Schedule)
	}
	return nil
}

func runRefreshJob(cmd *cobra.Command, args []string) error {
	if runTimes < 1 {
		return fmt.Errorf("--times must be at least 1")
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	eng, err := newEngine(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	for i := 1; i <= runTimes; i++ {
		fmt.Fprintf(out, "[Refresh] Running %s [%d/%d]\n", refresh.WindowJobName, i, runTimes)
		result, err := eng.refreshOnce(ctx)
		if err != nil {
			PrintError(err.Error())
			continue
		}
		if d := eng.latest.Get(); d != nil {
			fmt.Fprintf(out, "          version #%d, score %d, %d alerts (%s)\n",
				d.Version, d.Overview.HappinessScore, len(d.Alerts), result.Duration.Round(time.Microsecond))
		}
	}

	fmt.Fprintln(out)
	printJobStats(eng.scheduler.GetJobStats())
	return nil
}

// printJobStats prints per-job run statistics
func printJobStats(stats map[string]refresh.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "Job Statistics:")
	fmt.Fprintln(out)
	for _, name := range names {
		stat := stats[name]
		fmt.Fprintf(out, "📊 %s\n", name)
		fmt.Fprintf(out, "   Schedule: %s\n", stat.Schedule)
		fmt.Fprintf(out, "   Total Runs: %d\n", stat.TotalRuns)
		fmt.Fprintf(out, "   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Fprintf(out, "   Failures: %d\n", stat.FailureCount)
		if stat.LastRun != nil {
			fmt.Fprintf(out, "   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(out)
	}
}
