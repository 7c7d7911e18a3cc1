package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"library-stats/internal/analytics"
	"library-stats/internal/domain"
	"library-stats/internal/repository"
	"library-stats/internal/seed"
	"library-stats/internal/service"
	"library-stats/internal/storage"
)

// Reseeder regenerates the library data set.
type Reseeder interface {
	Seed(ctx context.Context, today time.Time) (seed.Summary, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	catalog   service.CatalogService
	analytics service.AnalyticsService
	reseeder  Reseeder
	clock     func() time.Time
}

// NewHandler builds the route handler. reseeder may be nil to disable POST /api/seed.
func NewHandler(catalog service.CatalogService, analytics service.AnalyticsService, reseeder Reseeder, clock func() time.Time) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		catalog:   catalog,
		analytics: analytics,
		reseeder:  reseeder,
		clock:     clock,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/books", h.listBooks)
		api.GET("/books/:id", h.getBook)
		api.GET("/users", h.listUsers)
		api.GET("/users/:id", h.getUser)
		api.GET("/loans", h.listLoans)
		api.GET("/report", h.getReport)
		api.POST("/report/archive", h.archiveReport)
		api.GET("/reports", h.listArchives)
		api.POST("/seed", h.seed)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]BookResponse, len(books))
	for i := range books {
		resp[i] = bookToResponse(books[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := parseID(c, "book")
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookToResponse(*book))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.catalog.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = UserResponse{ID: users[i].ID, Name: users[i].Name}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	user, err := h.catalog.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name})
}

func (h *Handler) listLoans(c *gin.Context) {
	var filter repository.LoanFilter
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		filter.UserID = &userID
	}
	period, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !period.IsZero() {
		filter.Period = &period
	}

	loans, err := h.catalog.ListLoans(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]LoanResponse, len(loans))
	for i := range loans {
		resp[i] = loanToResponse(loans[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getReport(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) archiveReport(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}

	result, err := h.analytics.Archive(c.Request.Context(), report)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) listArchives(c *gin.Context) {
	objects, err := h.analytics.ListArchives(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) seed(c *gin.Context) {
	if h.reseeder == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "reseeding is disabled"})
		return
	}

	summary, err := h.reseeder.Seed(c.Request.Context(), h.clock())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *Handler) buildReport(c *gin.Context) (analytics.Report, bool) {
	var req service.ReportRequest

	if raw := c.Query("now"); raw != "" {
		now, err := parseInstant(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return analytics.Report{}, false
		}
		req.Now = &now
	}
	if raw := c.Query("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid top"})
			return analytics.Report{}, false
		}
		req.TopBorrowers = top
	}
	period, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Report{}, false
	}
	req.Period = period

	report, err := h.analytics.Report(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return analytics.Report{}, false
	}
	return report, true
}

func parseID(c *gin.Context, kind string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s id", kind)})
		return 0, false
	}
	return id, true
}

// parsePeriod reads the optional from/to query dates; to is exclusive.
func parsePeriod(c *gin.Context) (domain.Period, error) {
	var period domain.Period
	if raw := c.Query("from"); raw != "" {
		from, err := domain.ParseDate(raw)
		if err != nil {
			return period, fmt.Errorf("invalid from: %w", err)
		}
		period.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := domain.ParseDate(raw)
		if err != nil {
			return period, fmt.Errorf("invalid to: %w", err)
		}
		period.To = to
	}
	if !period.From.IsZero() && !period.To.IsZero() && !period.From.Before(period.To) {
		return period, errors.New("from must be before to")
	}
	return period, nil
}

// parseInstant accepts RFC 3339 timestamps and plain dates.
func parseInstant(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid now: %w", err)
	}
	return t, nil
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidID):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrArchiveDisabled):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type BookResponse struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	PublishedDate string            `json:"published_date"`
	Status        domain.BookStatus `json:"status"`
	Pages         int               `json:"pages"`
	Rating        float64           `json:"goodread_rating"`
}

type UserResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LoanResponse struct {
	ID         int64   `json:"id"`
	BookID     int64   `json:"book_id"`
	UserID     int64   `json:"user_id"`
	LoanDate   string  `json:"loan_date"`
	ReturnDate *string `json:"return_date,omitempty"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func bookToResponse(book domain.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		PublishedDate: book.PublishedDate,
		Status:        book.Status,
		Pages:         book.Pages,
		Rating:        book.Rating,
	}
}

func loanToResponse(loan domain.Loan) LoanResponse {
	resp := LoanResponse{
		ID:       loan.ID,
		BookID:   loan.BookID,
		UserID:   loan.UserID,
		LoanDate: loan.LoanDate.Format(domain.DateLayout),
	}
	if loan.ReturnDate != nil {
		v := loan.ReturnDate.Format(domain.DateLayout)
		resp.ReturnDate = &v
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
