package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shenanigigs/services/board/internal/board"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Boards is what the web layer needs from the board registry.
type Boards interface {
	Acquire(ctx context.Context, sessionID string) (*board.Board, error)
	Select(ctx context.Context, sessionID, department string) (*board.Board, error)
}

type Handler struct {
	boards Boards
	logger *zap.Logger
}

func NewHandler(boards Boards, logger *zap.Logger) *Handler {
	return &Handler{boards: boards, logger: logger}
}

type selectDepartmentRequest struct {
	Department *string `json:"department" binding:"required"`
}

type RouterOptions struct {
	SessionTTL     time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(h *Handler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), LoggerMiddleware(logger))

	r.GET("/healthz", HealthCheck)

	limit := RateLimitMiddleware(opts.RateLimitRPS, opts.RateLimitBurst)

	viewer := r.Group("/", SessionMiddleware(opts.SessionTTL), limit)
	{
		viewer.GET("/", h.Page)
		viewer.POST("/department", h.SelectForm)
	}

	api := r.Group("/api")
	if len(opts.CORSOrigins) > 0 {
		api.Use(CORSMiddleware(opts.CORSOrigins))
		// Preflight requests only reach group middleware on a matched route.
		api.OPTIONS("/board", noContent)
		api.OPTIONS("/board/department", noContent)
	}
	api.Use(SessionMiddleware(opts.SessionTTL), limit)
	{
		api.GET("/board", h.GetBoard)
		api.PUT("/board/department", h.PutDepartment)
	}

	return r
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Page renders the viewer's board as HTML.
func (h *Handler) Page(c *gin.Context) {
	b, err := h.boards.Acquire(c.Request.Context(), viewerKey(c))
	if err != nil {
		h.unavailable(c, err)
		return
	}
	templ.Handler(BoardPage(b.Snapshot())).ServeHTTP(c.Writer, c.Request)
}

// SelectForm handles the department form post and redirects back to the page.
func (h *Handler) SelectForm(c *gin.Context) {
	department, ok := c.GetPostForm("department")
	if !ok {
		c.String(http.StatusBadRequest, "department is required")
		return
	}
	if _, err := h.boards.Select(c.Request.Context(), sessionID(c), department); err != nil {
		h.unavailable(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) GetBoard(c *gin.Context) {
	b, err := h.boards.Acquire(c.Request.Context(), viewerKey(c))
	if err != nil {
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Snapshot())
}

func (h *Handler) PutDepartment(c *gin.Context) {
	var req selectDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	b, err := h.boards.Select(c.Request.Context(), sessionID(c), *req.Department)
	if err != nil {
		h.unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Snapshot())
}

func (h *Handler) unavailable(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, board.ErrRegistryClosed) || errors.Is(err, board.ErrRegistryFull) {
		status = http.StatusServiceUnavailable
	}
	h.logger.Error("board unavailable", zap.String("session", sessionID(c)), zap.Error(err))
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": "board unavailable"})
}
