package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-newsrank/internal/model"
	"go-newsrank/internal/service"
)

// Refresher 调度器对外暴露的能力
type Refresher interface {
	RunOnce(ctx context.Context) (model.CycleReport, error)
	Running() bool
	LastReport() (model.CycleReport, bool)
	NextRefreshTime() time.Time
}

type Handler struct {
	articles  *service.ArticleService
	votes     *service.VoteService
	feeds     *service.FeedService
	status    *service.StatusService
	scheduler Refresher
}

func NewHandler(articles *service.ArticleService, votes *service.VoteService, feeds *service.FeedService, status *service.StatusService) *Handler {
	return &Handler{
		articles: articles,
		votes:    votes,
		feeds:    feeds,
		status:   status,
	}
}

// SetScheduler 设置调度器引用
func (h *Handler) SetScheduler(scheduler Refresher) {
	h.scheduler = scheduler
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Articles
		api.GET("/articles", h.ListArticles)
		api.GET("/articles/:id", h.GetArticle)
		api.POST("/articles/:id/upvote", h.Upvote)
		api.POST("/articles/:id/downvote", h.Downvote)
		api.DELETE("/articles/:id", h.DeleteArticle)
		api.DELETE("/articles", h.DeleteAllArticles)

		// Feeds
		api.GET("/feeds", h.ListFeeds)
		api.POST("/feeds", h.CreateFeed)
		api.DELETE("/feeds/:id", h.DeleteFeed)

		// Refresh
		api.POST("/refresh", h.Refresh)

		// Status
		api.GET("/status", h.GetStatus)
	}
}

// ===== Article相关 =====

func (h *Handler) ListArticles(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	articles, err := h.articles.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) Upvote(c *gin.Context) {
	h.vote(c, h.votes.Upvote)
}

func (h *Handler) Downvote(c *gin.Context) {
	h.vote(c, h.votes.Downvote)
}

func (h *Handler) vote(c *gin.Context, apply func(context.Context, uint) (model.VoteResult, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := apply(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.articles.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) DeleteAllArticles(c *gin.Context) {
	n, err := h.articles.RemoveAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// ===== Feed相关 =====

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feeds.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feeds)
}

func (h *Handler) CreateFeed(c *gin.Context) {
	feed := model.Feed{Enabled: true}
	if err := c.ShouldBindJSON(&feed); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feeds.Create(c.Request.Context(), &feed); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.feeds.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// ===== 刷新与状态 =====

func (h *Handler) Refresh(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not configured"})
		return
	}

	report, err := h.scheduler.RunOnce(c.Request.Context())
	if err != nil && report.StartedAt.IsZero() {
		// 周期未启动:正在运行或调度器已停止
		respondError(c, err)
		return
	}
	// 周期失败同样返回报告,错误写在 report.Error 中
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.status.GetSystemStatus(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	// 添加定时任务信息
	if h.scheduler != nil {
		status.Running = h.scheduler.Running()
		status.NextRefreshTime = h.scheduler.NextRefreshTime()
		if last, ok := h.scheduler.LastReport(); ok {
			status.LastCycle = &last
		}
	}

	c.JSON(http.StatusOK, status)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidVote):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrCycleRunning):
		status = http.StatusConflict
	case errors.Is(err, model.ErrStopped):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
