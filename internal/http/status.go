package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// DatabaseChecker reports on the store backing the tracker.
type DatabaseChecker interface {
	Driver() string
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// SchedulerStatus exposes the statistics refresher state.
type SchedulerStatus interface {
	IsRunning() bool
	LastRefreshAt() *time.Time
	NextRefreshAt() time.Time
}

// StatusHandler handles the /status endpoint.
type StatusHandler struct {
	db        DatabaseChecker
	scheduler SchedulerStatus
	startTime time.Time
}

// NewStatusHandler creates a new StatusHandler. Both arguments may be nil.
func NewStatusHandler(db DatabaseChecker, sched SchedulerStatus) *StatusHandler {
	return &StatusHandler{
		db:        db,
		scheduler: sched,
		startTime: time.Now(),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := models.StatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	if h.scheduler != nil {
		response.RefresherRunning = h.scheduler.IsRunning()
		response.LastRefreshAt = h.scheduler.LastRefreshAt()
		next := h.scheduler.NextRefreshAt()
		if !next.IsZero() {
			response.NextRefreshAt = &next
		}
	}

	response.Database = h.getDatabaseStatus(r.Context())
	if !response.Database.Connected {
		response.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (h *StatusHandler) getDatabaseStatus(ctx context.Context) models.DatabaseStatus {
	status := models.DatabaseStatus{
		Connected: false,
	}

	if h.db == nil {
		return status
	}
	status.Driver = h.db.Driver()

	// Check database connection
	if err := h.db.Ping(ctx); err != nil {
		return status
	}
	status.Connected = true

	// Get total records count
	count, err := h.db.Count(ctx)
	if err == nil {
		status.TotalRecordsStored = count
	}

	return status
}
