package sync

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"leasesync/internal/dns"
	"leasesync/internal/httpx"
	"leasesync/internal/model"
)

// Runner runs sync passes
type Runner interface {
	RunOnce(ctx context.Context, dryRun bool) (*dns.Report, error)
	LastReport() *dns.Report
}

// HistoryLister reads recorded passes
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]model.SyncRun, error)
}

// Handler serves the sync endpoints
type Handler struct {
	runner  Runner
	history HistoryLister
}

// NewHandler creates a sync handler. history may be nil when no database is configured.
func NewHandler(runner Runner, history HistoryLister) *Handler {
	return &Handler{runner: runner, history: history}
}

// Last returns the report of the most recent pass
func (h *Handler) Last(c *gin.Context) {
	report := h.runner.LastReport()
	if report == nil {
		httpx.FailErr(c, httpx.ErrNotFound("no sync pass has run yet"))
		return
	}
	httpx.OK(c, report)
}

// Run triggers one pass and waits for it. ?dry_run=1 plans without writing.
func (h *Handler) Run(c *gin.Context) {
	dryRun := false
	if v := c.Query("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("dry_run must be a boolean"))
			return
		}
		dryRun = b
	}

	report, err := h.runner.RunOnce(c.Request.Context(), dryRun)
	if err != nil {
		appErr := httpx.FromSyncError(err)
		if report != nil {
			appErr = appErr.WithData(report)
		}
		httpx.FailErr(c, appErr)
		return
	}

	msg := "sync complete"
	if dryRun {
		msg = "dry run complete"
	}
	httpx.OKMsg(c, msg, report)
}

// History lists recorded passes, newest first
func (h *Handler) History(c *gin.Context) {
	if h.history == nil {
		httpx.FailErr(c, httpx.ErrServiceUnavailable("sync history is not configured"))
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.FailErr(c, httpx.ErrParamInvalid("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list sync history", err))
		return
	}
	httpx.OKItems(c, runs, len(runs))
}
