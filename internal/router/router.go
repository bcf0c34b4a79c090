package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/handler"
	"github.com/iliyamo/venue-box-office/internal/middleware"
	"github.com/iliyamo/venue-box-office/internal/model"
)

// Deps carries the handlers and middleware settings of the API.
type Deps struct {
	Auth      *handler.AuthHandler
	Events    *handler.EventHandler
	Sessions  *handler.SessionHandler
	Discounts *handler.DiscountHandler
	Tickets   *handler.TicketHandler
	Friends   *handler.FriendHandler
	Ready     map[string]handler.Pinger

	JWTSecret string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
	Log       logrus.FieldLogger
}

// RegisterRoutes registers every route on e.  Probes and login are
// public; everything else under /v1 needs a staff token and is rate
// limited per user.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(d.Ready))

	e.POST("/v1/auth/login", d.Auth.Login)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(d.JWTSecret))
	v1.Use(middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
	v1.Use(middleware.RequireRole(model.RoleStaff, model.RoleManager, model.RoleDeputy))
	managers := middleware.RequireRole(model.RoleManager, model.RoleDeputy)

	v1.GET("/me", d.Auth.Me)

	v1.GET("/events", d.Events.List)
	v1.GET("/events/:id/seating", d.Events.Seating)

	s := v1.Group("/sessions")
	s.POST("", d.Sessions.Open)
	s.GET("/:id", d.Sessions.Get)
	s.DELETE("/:id", d.Sessions.Cancel)
	s.PUT("/:id/showing", d.Sessions.Reselect)
	s.PUT("/:id/options", d.Sessions.Options)
	s.POST("/:id/seats/:seat", d.Sessions.ToggleSeat)
	s.POST("/:id/discount", d.Sessions.ApplyDiscount)
	s.POST("/:id/proceed", d.Sessions.Proceed)
	s.POST("/:id/back", d.Sessions.Back)
	s.POST("/:id/commit", d.Sessions.Commit)

	v1.GET("/discounts/reasons", d.Discounts.Reasons)
	v1.POST("/discounts", d.Discounts.Generate, managers)

	v1.GET("/tickets/:id", d.Tickets.Get)
	v1.GET("/tickets/:id/receipt", d.Tickets.Receipt)
	v1.DELETE("/tickets/:id", d.Tickets.Refund, managers)

	v1.GET("/friends", d.Friends.List, managers)
	v1.GET("/friends/:id", d.Friends.Get, managers)
}
