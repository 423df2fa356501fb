package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"tourstats/internal/admin"
	"tourstats/internal/fetchlog"
	"tourstats/internal/live"
	"tourstats/internal/modeling"
	"tourstats/internal/tourism"
	"tourstats/internal/upstream"
	"tourstats/pkg/database"
	"tourstats/pkg/utils"
)

func main() {
	cfg := utils.Load()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := live.NewHub()
	router.GET("/ws", live.WSHandler(hub))

	// fetch chain: upstream transport -> audit log -> refresh broadcast
	logRepo := fetchlog.NewRepo(db)
	var fetcher tourism.Fetcher = upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamToken)
	fetcher = fetchlog.Wrap(fetcher, logRepo)
	fetcher = live.Notify(fetcher, hub)

	cache := tourism.NewCache(fetcher, clockwork.NewRealClock())

	// warm-up: one fetch before serving; a failure keeps the service up
	// and data endpoints answer 503 until a later fetch succeeds
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if err := cache.WarmUp(warmCtx); err != nil {
		log.Printf("[warmup] initial fetch failed: %v", err)
	} else {
		log.Println("[warmup] dataset ready")
	}
	cancelWarm()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"ready":      cache.Ready(),
			"ws_clients": hub.Stats().WSClients,
		})
	})

	modeler := modeling.NewClient(cfg.ModelServiceURL, 30*time.Second)

	tourismHandler := tourism.NewHandler(cache, cfg.CacheTTL, modeler)
	tourismHandler.RegisterRoutes(router.Group("/tourism"))

	tokens := admin.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: cfg.JWTDuration,
	}
	adminHandler := admin.NewHandler(tokens, cfg.AdminUsername, cfg.AdminPasswordHash, cache, logRepo)
	adminHandler.RegisterRoutes(router.Group("/admin"))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
