package viewer

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	"github.com/cutekitek/rankode-jplag/internal/repository/results"
	"github.com/cutekitek/rankode-jplag/internal/similarity"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type ResultReader interface {
	Get(ctx context.Context, contest, problem, language string) (*models.ContestResult, error)
}

// Handler redirects staff to the viewer page of a stored report.
type Handler struct {
	results    ResultReader
	viewerBase string
}

func NewHandler(reader ResultReader, viewerBase string) *Handler {
	return &Handler{results: reader, viewerBase: viewerBase}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/jplag/:contest/:problem/:language", h.Redirect)
}

func (h *Handler) Redirect(c *gin.Context) {
	row, err := h.results.Get(c.Request.Context(), c.Param("contest"), c.Param("problem"), c.Param("language"))
	if errors.Is(err, results.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no jplag result"})
		return
	}
	if err != nil {
		slog.Error("failed to load jplag result", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if row.URL == nil || *row.URL == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"error":            "not enough submissions",
			"submission_count": row.SubmissionCount,
		})
		return
	}

	target := similarity.RebuildViewerURL(*row.URL, h.viewerBase, RequestResolver(c.Request))
	c.Redirect(http.StatusFound, target)
}

// RequestResolver resolves references against the URL the request was made to.
func RequestResolver(r *http.Request) similarity.BaseURLResolver {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	base := &url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return &similarity.StaticBaseURL{Base: base}
}
