package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/happiness/internal/api"
	"github.com/wonny/happiness/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Feed 서버 시작",
	Long: `대시보드 feed 서버를 시작합니다.

이 명령어는:
- 초기 윈도우 생성 및 대시보드 계산
- REFRESH_INTERVAL 주기로 윈도우 재생성
- 읽기 전용 feed + WebSocket 푸시 제공

Endpoints:
  GET  /health               - Health check
  GET  /api/dashboard        - 전체 대시보드 (?range=24h|7d|30d)
  GET  /api/volume           - 볼륨 통계 + 이상치 플래그
  GET  /api/insights         - 리스크/기회 랭킹 (?type=risk|opportunity)
  GET  /api/alerts           - 알림 목록
  POST /api/refresh          - 수동 새로고침 (rate limited)
  GET  /api/refresh/status   - 새로고침 상태
  GET  /ws                   - 대시보드 스트림
  GET  /metrics              - Prometheus metrics

Example:
  go run ./cmd/happiness serve
  go run ./cmd/happiness serve --port 9000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "feed 서버 포트 (default: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Customer Happiness Index Feed ===")

	// 1. Load config + logger
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port":             cfg.Port,
		"env":              cfg.Env,
		"window_length":    cfg.Engine.WindowLength,
		"refresh_interval": cfg.Engine.RefreshInterval.String(),
	}).Info("Initializing feed server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Wire engine
	eng, err := newEngine(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	// 3. Initial window so the feed is never empty once listening
	if _, err := eng.refreshOnce(ctx); err != nil {
		log.WithError(err).Warn("Initial refresh failed, serving empty feed until next tick")
	}

	// 4. Background loops
	go eng.hub.Run(ctx)
	eng.scheduler.Start(ctx)

	// 5. HTTP
	feed := handlers.NewFeedHandler(eng.builder, eng.scheduler, log)
	router := api.NewRouter(feed, eng.hub, eng.metrics, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("Feed server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /api/dashboard")
	fmt.Println("  GET  /api/volume")
	fmt.Println("  GET  /api/insights")
	fmt.Println("  GET  /api/alerts")
	fmt.Println("  POST /api/refresh")
	fmt.Println("  GET  /ws")
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
