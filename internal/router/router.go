package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-watchlist/internal/config"
	"github.com/iliyamo/movie-watchlist/internal/handler"
	"github.com/iliyamo/movie-watchlist/internal/middleware"
)

// Handlers groups everything the router needs to wire the API surface.
type Handlers struct {
	Auth      *handler.AuthHandler
	Movies    *handler.MovieHandler
	Watchlist *handler.WatchlistHandler
	Users     middleware.UserResolver
}

// Register wires all routes onto the Echo instance. Catalog and account
// routes are public; the watchlist group sits behind the JWT gate so its
// handlers only ever see a resolved, existing user. Public catalog reads
// additionally go through the Redis response cache, and every route
// shares the token-bucket rate limiter.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	v1 := e.Group("/v1")

	// Account lifecycle: signup, activation link target, login.
	v1.POST("/users", h.Auth.Register)
	v1.GET("/users/activate", h.Auth.Activate)
	v1.POST("/token", h.Auth.Login)

	// Shared catalog. Reads are cacheable; the static segments must be
	// registered before the :id route so echo does not swallow them.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	v1.GET("/movies", h.Movies.List, cache)
	v1.GET("/movies/search", h.Movies.Search, cache)
	v1.GET("/movies/upcoming", h.Movies.Upcoming, cache)
	v1.GET("/movies/:id", h.Movies.Get)
	v1.POST("/movies", h.Movies.Create)
	v1.DELETE("/movies/:id", h.Movies.Delete)

	// Per-user watchlist, bearer-token protected.
	wl := v1.Group("/watchlist")
	wl.Use(middleware.JWTAuth(cfg.JWTSecret, h.Users))
	wl.POST("", h.Watchlist.Add)
	wl.GET("", h.Watchlist.List)
	wl.GET("/upcoming", h.Watchlist.Upcoming)
	wl.GET("/:movieId", h.Watchlist.Get)
	wl.DELETE("/:movieId", h.Watchlist.Remove)
	wl.PUT("/:movieId/watch", h.Watchlist.Watch)
}
