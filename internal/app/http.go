package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mapletrack/internal/auth"
	"mapletrack/internal/checklist"
	"mapletrack/internal/config"
	"mapletrack/internal/period"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPServer struct {
	service    *checklist.Service
	db         Pinger
	secret     []byte
	corsOrigin string
	logger     *zap.Logger
}

func NewHTTPServer(service *checklist.Service, db Pinger, cfg config.Config, logger *zap.Logger) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{
		service:    service,
		db:         db,
		secret:     []byte(cfg.JWTSecret),
		corsOrigin: cfg.CORSOrigin,
		logger:     logger,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.accessLog(), gin.Recovery(), s.requestID(), s.cors())

	r.GET("/api/health", s.handleHealth)
	r.HEAD("/api/health", s.handleHealth)
	r.GET("/api/ready", s.handleReady)
	r.HEAD("/api/ready", s.handleReady)

	api := r.Group("/api", s.requireUser())
	api.GET("/periods/current", s.handleCurrentPeriods)
	api.GET("/calendar/:month", s.handleCalendar)

	api.GET("/weekly-boss/history", s.handleWeeklyHistory)
	api.GET("/weekly-boss/:periodKey", s.handleGetWeekly)
	api.PUT("/weekly-boss/:periodKey", s.handlePutWeekly)

	api.GET("/monthly-boss/history", s.handleMonthlyHistory)
	api.GET("/monthly-boss/:periodKey", s.handleGetMonthly)
	api.PUT("/monthly-boss/:periodKey", s.handlePutMonthly)

	api.GET("/memos/:periodKey", s.handleGetMemos)
	api.PUT("/memos/:periodKey", s.handlePutMemos)
	api.POST("/memos/:periodKey", s.handleAddMemo)

	api.GET("/calendar-events/:periodKey", s.handleGetEvents)
	api.PUT("/calendar-events/:periodKey", s.handlePutEvents)
	api.POST("/calendar-events/:periodKey", s.handleAddEvent)

	api.GET("/dashboard", s.handleDashboard)
	api.POST("/cleanup", s.handleCleanup)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	return r
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *HTTPServer) handleReady(c *gin.Context) {
	// Check database connectivity
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := gin.H{
		"database": gin.H{"status": "ok"},
	}

	if err := s.db.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["database"] = gin.H{
			"status": "error",
			"error":  err.Error(),
		}
	}

	c.JSON(statusCode, gin.H{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleCurrentPeriods(c *gin.Context) {
	now := s.service.Now()
	monthKey := period.DefaultCalendarMonthKey(now)
	c.JSON(http.StatusOK, gin.H{
		"weeklyPeriodKey":  period.CurrentWeeklyPeriodKey(now),
		"monthlyPeriodKey": period.CurrentMonthlyPeriodKey(now),
		"monthKey":         monthKey,
		"selectedDate":     period.DefaultSelectedDate(monthKey, now),
	})
}

func (s *HTTPServer) handleCalendar(c *gin.Context) {
	monthKey := c.Param("month")
	if _, _, ok := period.ParseMonthKey(monthKey); !ok {
		writeError(c, http.StatusBadRequest, "INVALID_MONTH", "Month must be YYYY-MM", nil)
		return
	}
	now := s.service.Now()
	c.JSON(http.StatusOK, gin.H{
		"monthKey":     monthKey,
		"selectedDate": period.DefaultSelectedDate(monthKey, now),
		"weeks":        period.CalendarMatrix(monthKey, now),
	})
}

func (s *HTTPServer) handleGetWeekly(c *gin.Context) {
	state, err := s.service.LoadWeeklyBossState(c.Request.Context(), c.Param("periodKey"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *HTTPServer) handlePutWeekly(c *gin.Context) {
	raw, ok := s.rawBody(c)
	if !ok {
		return
	}
	state := checklist.SanitizeWeeklyState(raw)
	if err := s.service.SaveWeeklyBossState(c.Request.Context(), c.Param("periodKey"), state); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *HTTPServer) handleWeeklyHistory(c *gin.Context) {
	months, ok := monthsQuery(c)
	if !ok {
		return
	}
	entries, err := s.service.LoadWeeklyBossHistory(c.Request.Context(), months)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *HTTPServer) handleGetMonthly(c *gin.Context) {
	state, err := s.service.LoadMonthlyBossState(c.Request.Context(), c.Param("periodKey"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *HTTPServer) handlePutMonthly(c *gin.Context) {
	raw, ok := s.rawBody(c)
	if !ok {
		return
	}
	state := checklist.SanitizeMonthlyState(raw)
	if err := s.service.SaveMonthlyBossState(c.Request.Context(), c.Param("periodKey"), state); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *HTTPServer) handleMonthlyHistory(c *gin.Context) {
	months, ok := monthsQuery(c)
	if !ok {
		return
	}
	entries, err := s.service.LoadMonthlyBossHistory(c.Request.Context(), months)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *HTTPServer) handleGetMemos(c *gin.Context) {
	memos, err := s.service.LoadMemos(c.Request.Context(), c.Param("periodKey"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, memos)
}

func (s *HTTPServer) handlePutMemos(c *gin.Context) {
	raw, ok := s.rawBody(c)
	if !ok {
		return
	}
	memos := checklist.SanitizeMemos(raw)
	if err := s.service.SaveMemos(c.Request.Context(), c.Param("periodKey"), memos); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, memos)
}

type createMemoRequest struct {
	Text    string `json:"text" binding:"required"`
	DueDate string `json:"dueDate"`
}

func (s *HTTPServer) handleAddMemo(c *gin.Context) {
	var req createMemoRequest
	if !s.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	periodKey := c.Param("periodKey")
	memo, err := checklist.NewMemo(req.Text, req.DueDate, s.service.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}
	memos, err := s.service.LoadMemos(ctx, periodKey)
	if err != nil {
		s.respondError(c, err)
		return
	}
	memos = append([]checklist.Memo{memo}, memos...)
	if err := s.service.SaveMemos(ctx, periodKey, memos); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, memo)
}

func (s *HTTPServer) handleGetEvents(c *gin.Context) {
	events, err := s.service.LoadCalendarEvents(c.Request.Context(), c.Param("periodKey"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *HTTPServer) handlePutEvents(c *gin.Context) {
	raw, ok := s.rawBody(c)
	if !ok {
		return
	}
	events := checklist.SanitizeEvents(raw)
	if err := s.service.SaveCalendarEvents(c.Request.Context(), c.Param("periodKey"), events); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

type createEventRequest struct {
	DateKey string   `json:"dateKey" binding:"required"`
	Title   string   `json:"title" binding:"required"`
	Friends []string `json:"friends"`
	Memo    string   `json:"memo"`
}

func (s *HTTPServer) handleAddEvent(c *gin.Context) {
	var req createEventRequest
	if !s.bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	periodKey := c.Param("periodKey")
	event, err := checklist.NewEvent(req.DateKey, req.Title, req.Friends, req.Memo, s.service.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if month, _ := period.MonthKeyOfDate(event.DateKey); month+"-01" != periodKey {
		writeError(c, http.StatusUnprocessableEntity, "EVENT_OUT_OF_MONTH", "Event date must fall in "+periodKey, nil)
		return
	}
	events, err := s.service.LoadCalendarEvents(ctx, periodKey)
	if err != nil {
		s.respondError(c, err)
		return
	}
	events = append(events, event)
	checklist.SortEvents(events)
	if err := s.service.SaveCalendarEvents(ctx, periodKey, events); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *HTTPServer) handleDashboard(c *gin.Context) {
	dashboard, err := s.service.LoadDashboard(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *HTTPServer) handleCleanup(c *gin.Context) {
	report, err := s.service.EnsureCleanup(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// requireUser resolves the bearer token into the request's user.
func (s *HTTPServer) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" {
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		claims, err := auth.ParseToken(s.secret, token)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Set("user_id", claims.Sub)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), claims.Sub))
		c.Next()
	}
}

func (s *HTTPServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func (s *HTTPServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCORSHeaders(c.Writer.Header(), s.corsOrigin)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *HTTPServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(started).Milliseconds()),
		)
	}
}

func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status, code, message, details := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	writeError(c, status, code, message, details)
}

// rawBody decodes the request body into generic JSON for the sanitizers.
func (s *HTTPServer) rawBody(c *gin.Context) (any, bool) {
	var raw any
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body", nil)
		return nil, false
	}
	return raw, true
}

func (s *HTTPServer) bind(c *gin.Context, target any) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, strings.ToLower(fe.Field()[:1])+fe.Field()[1:])
		}
		writeError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Missing required fields", gin.H{"fields": fields})
		return false
	}
	writeError(c, http.StatusBadRequest, "INVALID_BODY", "Invalid JSON body", nil)
	return false
}

func monthsQuery(c *gin.Context) (int, bool) {
	value := c.Query("months")
	if value == "" {
		return 0, true
	}
	months, err := strconv.Atoi(value)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_MONTHS", "months must be an integer", nil)
		return 0, false
	}
	return months, true
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
}

func writeError(c *gin.Context, status int, code, message string, details any) {
	response := gin.H{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	c.AbortWithStatusJSON(status, response)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
