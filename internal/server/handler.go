package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bangtanmom/contentsync/internal/etl"
	"github.com/bangtanmom/contentsync/pkg/models"
)

// maxRequestSize caps the migrate request body.
const maxRequestSize = 64 << 10

// Runner performs one migration run.
type Runner interface {
	Run(ctx context.Context, opts etl.RunOptions) (*models.MigrationResult, error)
}

// Handler serves the migration endpoint.
type Handler struct {
	Runner Runner
}

// NewHandler returns a handler running migrations with runner.
func NewHandler(runner Runner) *Handler {
	return &Handler{Runner: runner}
}

// RegisterRoutes mounts the migrate endpoint on rg. Every method is routed to
// it so that preflights and method errors get the CORS headers too.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Any("/migrate", h.migrate)
}

type migrateRequest struct {
	DryRun         *bool  `json:"dryRun"`
	SourceInstance string `json:"sourceInstance"`
}

func (h *Handler) migrate(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		c.Header("Allow", "POST, OPTIONS")
		c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": "Method not allowed"})
		return
	}

	opts, err := parseMigrateRequest(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	// A run outlives its caller: only the configured run timeout cuts it short.
	res, err := h.Runner.Run(context.WithoutCancel(c.Request.Context()), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// parseMigrateRequest decodes the optional JSON body. An empty body is a dry
// run against the configured source instance.
func parseMigrateRequest(body io.Reader) (etl.RunOptions, error) {
	opts := etl.RunOptions{DryRun: true}
	if body == nil {
		return opts, nil
	}

	raw, err := io.ReadAll(io.LimitReader(body, maxRequestSize))
	if err != nil {
		return opts, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return opts, nil
	}

	var req migrateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		slog.Debug("Rejected migrate request", "error", err)
		return opts, errInvalidBody
	}
	if req.DryRun != nil {
		opts.DryRun = *req.DryRun
	}
	opts.SourceInstance = strings.TrimSpace(req.SourceInstance)
	return opts, nil
}

type requestError string

func (e requestError) Error() string { return string(e) }

const errInvalidBody = requestError("request body must be a JSON object")
