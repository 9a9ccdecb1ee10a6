package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"projecthub/api/models"
	"projecthub/api/store"
	"projecthub/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsHandlers struct {
	PageViews *store.PageViewStore
	Users     UserLookup
	Archive   *store.ArchiveStore // nil when ClickHouse is not configured
}

func NewAnalyticsHandlers(pageViews *store.PageViewStore, users UserLookup, archive *store.ArchiveStore) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		PageViews: pageViews,
		Users:     users,
		Archive:   archive,
	}
}

// Track creates one durable page-view row per navigation event and returns
// its id. The row starts at time_spent = 0; a view that never heartbeats
// stays there, which is a valid terminal state.
func (h *AnalyticsHandlers) Track(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding track request JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and pagePath are required"})
		return
	}

	createdAt := time.Now().UTC()
	if req.Timestamp != nil {
		createdAt = req.Timestamp.UTC()
	}

	ipAddress := c.ClientIP()
	if ipAddress == "" {
		ipAddress = "unknown"
	}

	agent := utils.ClassifyUserAgent(req.UserAgent)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	// Identity is optional: the middleware sets user_email only when a valid
	// token was presented. Everything else records as anonymous.
	email, _ := c.Get("user_email")
	verifiedEmail, _ := email.(string)

	pv := &models.PageView{
		ID:         uuid.New().String(),
		SessionID:  req.SessionID,
		PagePath:   req.PagePath,
		FullPath:   req.FullPath,
		PageTitle:  req.PageTitle,
		Referrer:   req.Referrer,
		UserAgent:  req.UserAgent,
		DeviceType: agent.DeviceType,
		Browser:    agent.Browser,
		OS:         agent.OS,
		IPAddress:  ipAddress,
		UserID:     ResolveUserID(ctx, h.Users, verifiedEmail),
		CreatedAt:  createdAt,
	}

	if err := h.PageViews.CreatePageView(ctx, pv); err != nil {
		log.Printf("Error inserting page view (session %s): %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record page view"})
		return
	}

	if h.Archive != nil {
		go h.archivePageView(pv)
	}

	c.JSON(http.StatusOK, gin.H{"pageViewId": pv.ID, "success": true})
}

// archivePageView mirrors the created row into ClickHouse off the request
// path. The archive is best-effort; a failed write is logged and dropped.
func (h *AnalyticsHandlers) archivePageView(pv *models.PageView) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.Archive.InsertPageViewEvent(ctx, pv); err != nil {
		log.Printf("Error archiving page view %s: %v", pv.ID, err)
	}
}

// UpdateTime overwrites the accumulated time spent for an existing page view.
// Last writer wins: the stored value is replaced unconditionally, with no
// check against what was there before.
func (h *AnalyticsHandlers) UpdateTime(c *gin.Context) {
	var req models.UpdateTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding update-time request JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.PageViewID == "" || req.TimeSpent <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageViewId and a positive timeSpent are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.PageViews.UpdateTimeSpent(ctx, req.PageViewID, req.TimeSpent); err != nil {
		log.Printf("Error updating time spent for page view %s: %v", req.PageViewID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update time spent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetViewCountsOverTime serves bucketed page-view counts from the archive.
func (h *AnalyticsHandlers) GetViewCountsOverTime(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analytics archive is not configured"})
		return
	}

	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Archive.GetViewCountsOverTime(ctx, interval, start, end)
	if err != nil {
		log.Printf("Error getting view counts over time: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve view statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetTopPaths(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analytics archive is not configured"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	if limitParam := c.Query("limit"); limitParam != "" {
		parsedLimit, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsedLimit == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsedLimit
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Archive.GetTopPaths(ctx, start, end, limit)
	if err != nil {
		log.Printf("Error getting top page paths: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top paths statistics"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetSessionDepth serves page views per distinct session from the archive.
func (h *AnalyticsHandlers) GetSessionDepth(c *gin.Context) {
	if h.Archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analytics archive is not configured"})
		return
	}

	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	avg, err := h.Archive.GetAverageSessionPageViews(ctx, start, end)
	if err != nil {
		log.Printf("Error getting session depth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session depth statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":                  start.Format(time.RFC3339),
		"endDate":                    end.Format(time.RFC3339),
		"averagePageViewsPerSession": avg,
	})
}

// GetAverageTimeSpent reads dwell-time averages from the canonical Postgres
// rows, since heartbeat overwrites are not mirrored into the archive.
func (h *AnalyticsHandlers) GetAverageTimeSpent(c *gin.Context) {
	start, end, ok := parseTimeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	avg, err := h.PageViews.AverageTimeSpent(ctx, start, end)
	if err != nil {
		log.Printf("Error getting average time spent: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve average time spent"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate":               start.Format(time.RFC3339),
		"endDate":                 end.Format(time.RFC3339),
		"averageTimeSpentSeconds": avg,
	})
}

// parseTimeRange reads optional RFC3339 start/end query parameters with the
// usual defaults (7 days ago to now). On a malformed value it writes the 400
// response itself and returns ok = false.
func parseTimeRange(c *gin.Context) (start, end time.Time, ok bool) {
	var err error

	if startParam := c.Query("start"); startParam != "" {
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	} else {
		start = time.Now().UTC().Add(-7 * 24 * time.Hour)
	}

	if endParam := c.Query("end"); endParam != "" {
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)"})
			return start, end, false
		}
	} else {
		end = time.Now().UTC()
	}

	return start, end, true
}
