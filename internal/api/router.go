package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/augesrob/Badger-sub000/config"
	"github.com/augesrob/Badger-sub000/internal/agent"
	"github.com/augesrob/Badger-sub000/internal/mw"
	"github.com/augesrob/Badger-sub000/internal/store"
)

// NewRouter creates the document store's router.
func NewRouter(s store.Store, dispatcher Dispatcher, webpushOptions *webpush.Options, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, dispatcher, webpushOptions)

	limit := rate.Inf
	if cfg.RateLimitPerSec > 0 {
		limit = rate.Limit(cfg.RateLimitPerSec)
	}
	rateLimiter := mw.RateLimiter(limit, cfg.RateLimitBurst)

	// Agents poll every few seconds; the cache absorbs identical reads
	// between writes and is dropped on every successful write.
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	cacheStore := cache.New(ttl, 10*time.Minute)
	caching := mw.Cache(cacheStore, ttl)
	invalidate := mw.Invalidate(cacheStore)

	r.GET("/healthz", Health)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/snapshot", caching, handler.GetSnapshot)
		api.POST("/snapshot", invalidate, handler.PutSnapshot)
		api.PUT("/snapshot", invalidate, handler.PutSnapshot)
		api.DELETE("/snapshot", invalidate, handler.DeleteSnapshot)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

// NewTerminalRouter creates the router an agent serves to its own terminal.
func NewTerminalRouter(e *agent.Engine) *gin.Engine {
	r := gin.Default()
	h := NewTerminalHandler(e)

	r.GET("/healthz", Health)
	r.GET("/status", h.Status)
	r.GET("/snapshot", h.Snapshot)
	r.GET("/classify/:truckNumber", h.Classify)
	r.POST("/sync", h.Sync)

	r.POST("/print-room", h.AddPrintRoomTruck)
	r.PUT("/print-room/:id", h.UpdatePrintRoomTruck)
	r.DELETE("/print-room/:id", h.DeletePrintRoomTruck)

	r.POST("/pre-shift", h.AddPreShiftTruck)
	r.PUT("/pre-shift/:id", h.UpdatePreShiftTruck)
	r.DELETE("/pre-shift/:id", h.DeletePreShiftTruck)

	r.PATCH("/movement/:truckNumber", h.UpdateMovement)

	r.POST("/drivers", h.AddDriver)
	r.PUT("/drivers/:id", h.UpdateDriver)
	r.DELETE("/drivers/:id", h.DeleteDriver)

	r.POST("/fleet", h.AddFleetNumber)
	r.PUT("/fleet/:id", h.UpdateFleetNumber)
	r.DELETE("/fleet/:id", h.DeleteFleetNumber)

	return r
}
