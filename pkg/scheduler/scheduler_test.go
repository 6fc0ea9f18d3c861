package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
	"github.com/chrismah84/ai-competitive-intel/pkg/scheduler/mocks"
)

func TestScheduler_RunOnce(t *testing.T) {
	dir := t.TempDir()
	runner := &mocks.RunnerMock{
		RunFunc: func(ctx context.Context) (*domain.Report, error) {
			return &domain.Report{
				Text:     "# AI Competitive Intelligence Report\n",
				Filename: "competitive_intel_20250823_090000.md",
			}, nil
		},
	}

	sched := New(runner, Config{ReportsDir: dir})
	require.NoError(t, sched.RunOnce(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "competitive_intel_20250823_090000.md"))
	require.NoError(t, err)
	assert.Equal(t, "# AI Competitive Intelligence Report\n", string(data))
	assert.Len(t, runner.RunCalls(), 1)
}

func TestScheduler_RunOnceFailedRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	runner := &mocks.RunnerMock{
		RunFunc: func(ctx context.Context) (*domain.Report, error) {
			return nil, errors.New("ledger unavailable")
		},
	}

	sched := New(runner, Config{ReportsDir: dir})
	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline run")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed run must not leave a report behind")
}

func TestScheduler_StartStop(t *testing.T) {
	dir := t.TempDir()
	var runs int32
	runner := &mocks.RunnerMock{
		RunFunc: func(ctx context.Context) (*domain.Report, error) {
			n := atomic.AddInt32(&runs, 1)
			return &domain.Report{
				Text:     "report body\n",
				Filename: fmt.Sprintf("competitive_intel_run%d.md", n),
			}, nil
		},
	}

	sched := New(runner, Config{Interval: 50 * time.Millisecond, ReportsDir: dir})
	sched.Start(context.Background())

	// wait for the immediate run plus at least one tick
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 2*time.Second, 10*time.Millisecond)
	sched.Stop()

	stopped := atomic.LoadInt32(&runs)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&runs), "no runs after Stop")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestScheduler_Defaults(t *testing.T) {
	sched := New(&mocks.RunnerMock{}, Config{})
	assert.Equal(t, 24*time.Hour, sched.interval)
	assert.Equal(t, "reports", sched.reportsDir)
}

func TestScheduler_RunOnceCreatesReportsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	runner := &mocks.RunnerMock{
		RunFunc: func(ctx context.Context) (*domain.Report, error) {
			return &domain.Report{Text: "x", Filename: "competitive_intel_20250823_100000.md"}, nil
		},
	}

	sched := New(runner, Config{ReportsDir: dir})
	require.NoError(t, sched.RunOnce(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "competitive_intel_20250823_100000.md"))
	require.NoError(t, err)
}
