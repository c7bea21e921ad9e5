package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"palmsgig.com/palmsgig/internal/cache"
	middleware "palmsgig.com/palmsgig/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, store cache.Store, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(store, rateLimitPerMinute, time.Minute))

	e.POST("/tasks", h.CreateTask)
	e.POST("/tasks/draft", h.CreateDraft)
	e.POST("/tasks/:id/publish", h.PublishTask)
	e.GET("/tasks", h.ListTasks)
	e.GET("/tasks/:id", h.GetTask)
	e.PUT("/tasks/:id", h.UpdateTask)
	e.DELETE("/tasks/:id", h.DeleteTask)
}
