package handlers

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups everything RegisterRoutes mounts. Dev may be nil.
type Handlers struct {
	Auth    *AuthHandler
	Expense *ExpenseHandler
	Summary *SummaryHandler
	Health  *HealthCheckHandler
	Dev     *DevHandler
}

// RegisterRoutes mounts the API under /api and the health probe at /health
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.HealthCheck)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)

	expenses := api.Group("/expenses")
	expenses.POST("/daily", h.Expense.AddTransaction)
	expenses.GET("/daily", h.Expense.GetDailyLog)
	expenses.GET("/daily/:email", h.Expense.GetDailyLog)
	expenses.DELETE("/daily/:email/:id", h.Expense.DeleteTransaction)
	expenses.POST("/quick-add", h.Expense.QuickAdd)
	expenses.GET("/grouped/:email", h.Expense.GetGrouped)
	expenses.GET("/overview/:email", h.Expense.GetOverview)

	summaries := api.Group("/summaries")
	summaries.GET("/:email", h.Summary.ListSummaries)
	summaries.POST("/:email/weekly", h.Summary.RecomputeWeekly)
	summaries.POST("/:email/monthly", h.Summary.RecomputeMonthly)

	if h.Dev != nil {
		api.POST("/dev/seed/:email", h.Dev.SeedTransactions)
	}
}
