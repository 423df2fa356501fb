package tourism

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tourstats/internal/stats"
	"tourstats/pkg/models"
)

// Modeler is the boundary to the remote regression/GLM service.
type Modeler interface {
	LinearRegression(ctx context.Context, modelName string, y []float64, x map[string][]float64) (json.RawMessage, error)
	GLM(ctx context.Context, modelName string, y []float64, x map[string][]float64, family string) (json.RawMessage, error)
}

// modelTargets are the response columns each batch model run targets;
// glmFamilies maps them to their GLM family (stay counts are Poisson).
var (
	modelTargets    = []string{"stays_italians", "stays_foreigners", "total_stays"}
	modelPredictors = []string{
		"arrivals_italians", "arrivals_foreigners", "total_arrivals",
		"beds", "rooms", "establishments",
	}
	glmFamilies = map[string]string{
		"stays_italians":   "poisson",
		"stays_foreigners": "poisson",
		"total_stays":      "poisson",
	}
)

type Handler struct {
	Cache   *Cache
	TTL     time.Duration
	Modeler Modeler
}

func NewHandler(cache *Cache, ttl time.Duration, modeler Modeler) *Handler {
	return &Handler{Cache: cache, TTL: ttl, Modeler: modeler}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.dataset)
	rg.GET("/normalizedData", h.normalized)
	rg.GET("/central-tendency", h.centralTendency)
	rg.GET("/seasonality-monthly-trends", h.seasonality)
	rg.GET("/dominance-ratio", h.dominance)
	rg.GET("/kpi", h.kpi)
	rg.GET("/pcc12", h.correlation(stats.CompleteColumns, false, stats.PearsonMatrix))
	rg.GET("/pcc15", h.correlation(stats.ExtendedColumns, true, stats.PearsonMatrix))
	rg.GET("/scc12", h.correlation(stats.CompleteColumns, false, stats.SpearmanMatrix))
	rg.GET("/scc15", h.correlation(stats.ExtendedColumns, true, stats.SpearmanMatrix))
	rg.GET("/variables", h.variables)
	rg.GET("/linearRegression", h.linearRegression)
	rg.GET("/glm", h.glm)
}

// dataset serves the raw envelope with a provenance tag.
func (h *Handler) dataset(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	env, source, err := h.Cache.GetOrRefresh(c.Request.Context(), h.TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream_fetch_failed", "details": err.Error()})
		return
	}

	resp := gin.H{"source": source}
	for k, v := range env {
		resp[k] = v
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) normalized(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}

	sample := rows
	if len(sample) > 20 {
		sample = sample[:20]
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(rows), "sample": sample})
}

func (h *Handler) centralTendency(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.CentralTendency(rows))
}

func (h *Handler) seasonality(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	perYear := c.Query("per_year") == "true"
	c.JSON(http.StatusOK, stats.Seasonality(rows, perYear))
}

func (h *Handler) dominance(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Dominance(rows))
}

func (h *Handler) kpi(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.KPI(rows))
}

func (h *Handler) correlation(columns []string, dropMissing bool, build func([]models.Row, []string, bool) models.CorrelationMatrix) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, ok := h.loadRows(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, build(rows, columns, dropMissing))
	}
}

func (h *Handler) variables(c *gin.Context) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Variables(rows))
}

func (h *Handler) linearRegression(c *gin.Context) {
	h.runModels(c, func(ctx context.Context, target string, y []float64, x map[string][]float64) (json.RawMessage, error) {
		return h.Modeler.LinearRegression(ctx, "ols_"+target, y, x)
	}, nil)
}

func (h *Handler) glm(c *gin.Context) {
	h.runModels(c, func(ctx context.Context, target string, y []float64, x map[string][]float64) (json.RawMessage, error) {
		return h.Modeler.GLM(ctx, "glm_"+target, y, x, glmFamilies[target])
	}, glmFamilies)
}

// runModels fits one model per target column. A missing column or a
// remote failure produces a per-column error entry instead of failing
// the whole batch.
func (h *Handler) runModels(c *gin.Context, fit func(ctx context.Context, target string, y []float64, x map[string][]float64) (json.RawMessage, error), families map[string]string) {
	rows, ok := h.loadRows(c)
	if !ok {
		return
	}

	results := gin.H{}
	for _, target := range modelTargets {
		columns := append([]string{target}, modelPredictors...)
		vectors := stats.ColumnVectors(rows, columns, true)

		y := vectors[target]
		if len(y) == 0 {
			results[target] = gin.H{"error": "column " + target + " has no numeric values"}
			continue
		}

		x := make(map[string][]float64, len(modelPredictors))
		for _, p := range modelPredictors {
			x[p] = vectors[p]
		}

		resp, err := fit(c.Request.Context(), target, y, x)
		if err != nil {
			results[target] = gin.H{"error": err.Error()}
			continue
		}
		results[target] = resp
	}

	out := gin.H{"results": results}
	if families != nil {
		out["families"] = families
	}
	c.JSON(http.StatusOK, out)
}

// ready answers 503 until the warm-up (or any later fetch) has
// succeeded once.
func (h *Handler) ready(c *gin.Context) bool {
	if h.Cache.Ready() {
		return true
	}

	details := ErrNotReady.Error()
	if entry := h.Cache.Snapshot(); entry.LastErr != nil {
		details = entry.LastErr.Error()
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "not_ready", "details": details})
	return false
}

func (h *Handler) loadRows(c *gin.Context) ([]models.Row, bool) {
	if !h.ready(c) {
		return nil, false
	}

	env, _, err := h.Cache.GetOrRefresh(c.Request.Context(), h.TTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upstream_fetch_failed", "details": err.Error()})
		return nil, false
	}

	rows, err := NormalizeAll(env)
	if err != nil {
		status := http.StatusInternalServerError
		code := "internal"
		if errors.Is(err, ErrInvalidEnvelope) {
			code = "invalid_envelope"
		}
		c.JSON(status, gin.H{"error": code, "details": err.Error()})
		return nil, false
	}
	return rows, true
}
