package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// Runner executes one full pipeline pass
type Runner interface {
	Run(ctx context.Context) (*domain.Report, error)
}

// Scheduler triggers pipeline runs on a fixed interval (daily by default)
// and persists each rendered report under the reports directory.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	reportsDir string

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	Interval   time.Duration
	ReportsDir string
}

// New creates a scheduler around the given runner
func New(runner Runner, cfg Config) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	return &Scheduler{
		runner:     runner,
		interval:   cfg.Interval,
		reportsDir: cfg.ReportsDir,
	}
}

// Start begins the scheduler, running once immediately and then on each tick
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.worker(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v, reports dir %s", s.interval, s.reportsDir)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		lgr.Printf("[ERROR] run failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				lgr.Printf("[ERROR] run failed: %v", err)
			}
		}
	}
}

// RunOnce triggers a single pipeline run and writes the report file.
// A failed run writes nothing.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	report, err := s.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	path, err := s.writeReport(report)
	if err != nil {
		return fmt.Errorf("persist report: %w", err)
	}

	lgr.Printf("[INFO] report with %d new posts written to %s", report.NewPostCount(), path)
	return nil
}

// writeReport persists the rendered document under the reports directory
func (s *Scheduler) writeReport(report *domain.Report) (string, error) {
	if err := os.MkdirAll(s.reportsDir, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(s.reportsDir, report.Filename)
	if err := os.WriteFile(path, []byte(report.Text), 0o600); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}
