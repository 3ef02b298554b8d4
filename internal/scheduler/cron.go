package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"go-newsrank/config"
	"go-newsrank/internal/logging"
	"go-newsrank/internal/metrics"
	"go-newsrank/internal/model"
)

var ErrStopped = model.ErrStopped

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Cycle 一次刷新周期
type Cycle interface {
	Run(ctx context.Context) (model.CycleReport, error)
}

// Scheduler 按固定周期触发刷新,同一时间最多只有一个周期在执行
type Scheduler struct {
	cron    *cron.Cron
	cycle   Cycle
	config  config.CronConfig
	entryID cron.EntryID

	mu      sync.Mutex
	state   State
	stopped bool
	last    *model.CycleReport
	wg      sync.WaitGroup
}

func NewScheduler(cycle Cycle, cfg config.CronConfig) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger))),
		cycle:  cycle,
		config: cfg,
	}
}

func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.config.RefreshInterval, func() {
		s.tick()
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh %q: %w", s.config.RefreshInterval, err)
	}
	s.entryID = id

	s.cron.Start()
	slog.Info("[Cron] Scheduler started", "interval", s.config.RefreshInterval)

	if s.config.RunOnStart {
		go s.tick()
	}
	return nil
}

func (s *Scheduler) tick() {
	_, err := s.RunOnce(context.Background())
	if errors.Is(err, model.ErrCycleRunning) {
		slog.Info("[Cron] Previous refresh still running, skipping tick")
	}
}

// RunOnce 在空闲状态下执行一次刷新周期;正在执行时返回 ErrCycleRunning。
// 周期不随 ctx 取消而中断,只受 cycle_timeout 限制,避免淘汰做到一半。
func (s *Scheduler) RunOnce(ctx context.Context) (model.CycleReport, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return model.CycleReport{}, ErrStopped
	}
	if s.state == Running {
		s.mu.Unlock()
		metrics.RefreshSkippedTotal.Inc()
		return model.CycleReport{}, model.ErrCycleRunning
	}
	s.state = Running
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = Idle
		s.mu.Unlock()
		s.wg.Done()
	}()

	cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.CycleTimeout)
	defer cancel()
	cycleCtx = logging.WithID(cycleCtx, logging.NewID())

	start := time.Now()
	report, err := s.cycle.Run(cycleCtx)
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	switch {
	case err == nil:
		metrics.RefreshCyclesTotal.WithLabelValues("ok").Inc()
		slog.InfoContext(cycleCtx, "[Cron] Refresh finished",
			"fetched", report.Fetched, "inserted", report.Inserted,
			"rescored", report.Rescored, "evicted", report.Evicted,
			"duration", time.Since(start))
	case errors.Is(err, model.ErrFeedFetch):
		metrics.RefreshCyclesTotal.WithLabelValues("fetch_error").Inc()
		slog.WarnContext(cycleCtx, "[Cron] Refresh aborted, feed fetch failed", "error", err)
	default:
		metrics.RefreshCyclesTotal.WithLabelValues("store_error").Inc()
		slog.ErrorContext(cycleCtx, "[Cron] Refresh aborted", "error", err,
			"inserted", report.Inserted, "rescored", report.Rescored, "evicted", report.Evicted)
	}

	return report, err
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Running() bool {
	return s.State() == Running
}

// LastReport 最近一次周期的结果
func (s *Scheduler) LastReport() (model.CycleReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return model.CycleReport{}, false
	}
	return *s.last, true
}

// NextRefreshTime 获取下次刷新时间
func (s *Scheduler) NextRefreshTime() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Stop 停止定时器并等待进行中的周期结束,ctx 到期则放弃等待
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("[Cron] Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for refresh cycle: %w", ctx.Err())
	}
}

// cronLogger 将 cron 内部日志转到 slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("[Cron] "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("[Cron] "+msg, append(keysAndValues, "error", err)...)
}
