// Package admin exposes the operator surface: login, forced dataset
// refresh and the fetch audit log. All routes except login require a
// bearer token.
package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tourstats/internal/fetchlog"
	"tourstats/internal/tourism"
)

type Handler struct {
	Tokens       TokenService
	Username     string
	PasswordHash string // bcrypt hash from config
	Cache        *tourism.Cache
	Log          *fetchlog.Repo
}

func NewHandler(tokens TokenService, username, passwordHash string, cache *tourism.Cache, logRepo *fetchlog.Repo) *Handler {
	return &Handler{
		Tokens:       tokens,
		Username:     username,
		PasswordHash: passwordHash,
		Cache:        cache,
		Log:          logRepo,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.POST("/refresh", h.middleware(), h.refresh)
	rg.GET("/fetch-log", h.middleware(), h.fetchLog)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json", "details": err.Error()})
		return
	}

	if req.Username != h.Username ||
		bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, exp, err := h.Tokens.Sign(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_sign_failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp})
}

// refresh forces an origin fetch regardless of the TTL.
func (h *Handler) refresh(c *gin.Context) {
	env, err := h.Cache.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_fetch_failed", "details": err.Error()})
		return
	}

	count := 0
	if records, rerr := tourism.EnvelopeRows(env); rerr == nil {
		count = len(records)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "rows": count})
}

func (h *Handler) fetchLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.Log.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch_log_failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "items": records})
}

func (h *Handler) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		raw := strings.TrimSpace(header[len("Bearer "):])
		claims, err := h.Tokens.Parse(raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("admin_user", claims.Username)
		c.Next()
	}
}
