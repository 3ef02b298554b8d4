package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"go-newsrank/config"
	"go-newsrank/internal/handler"
	"go-newsrank/internal/logging"
	"go-newsrank/internal/ranking"
	"go-newsrank/internal/scheduler"
	"go-newsrank/internal/service"
	"go-newsrank/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(db); err != nil {
			slog.Warn("Database close", "error", err)
		}
	}()

	// 初始化服务
	clock := clockwork.NewRealClock()
	locks := ranking.NewLocker()
	articleStore := store.NewArticleStore(db)

	feedSvc := service.NewFeedService(db, cfg.Feed, clock)
	if err := feedSvc.Seed(ctx, cfg.Feeds); err != nil {
		return err
	}
	refreshSvc := service.NewRefreshService(feedSvc, articleStore, locks, clock, cfg.Ranking.Policy())
	voteSvc := service.NewVoteService(articleStore, locks, clock)
	articleSvc := service.NewArticleService(articleStore, locks)
	statusSvc := service.NewStatusService(db, articleStore)

	// 启动定时任务
	sched := scheduler.NewScheduler(refreshSvc, cfg.Cron)
	if err := sched.Start(); err != nil {
		return err
	}

	// 初始化Gin
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())

	// 注册路由
	h := handler.NewHandler(articleSvc, voteSvc, feedSvc, statusSvc)
	h.SetScheduler(sched)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			_ = sched.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Cron.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown", "error", err)
	}
	// 等待进行中的刷新周期结束,避免淘汰做到一半
	return sched.Stop(shutdownCtx)
}
