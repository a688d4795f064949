package server

import (
	"github.com/labstack/echo/v4"

	"example.com/envelope-budget/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	envelopeHandler *handlers.EnvelopeHandler,
	incomeHandler *handlers.IncomeHandler,
	allocationHandler *handlers.AllocationHandler,
	debtHandler *handlers.DebtHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	envelopes := api.Group("/envelopes", authMiddleware)
	envelopes.GET("", envelopeHandler.List)
	envelopes.POST("", envelopeHandler.Create)
	envelopes.GET("/:id", envelopeHandler.Get)
	envelopes.PUT("/:id", envelopeHandler.Update)
	envelopes.DELETE("/:id", envelopeHandler.Delete)
	envelopes.GET("/:id/prediction", envelopeHandler.Prediction)
	envelopes.GET("/:id/opening-balance", envelopeHandler.OpeningBalance)
	envelopes.PUT("/:id/allocations", allocationHandler.Replace)
	envelopes.PATCH("/:id/allocations/lock", allocationHandler.Lock)
	envelopes.PATCH("/:id/allocations/unlock", allocationHandler.Unlock)

	incomes := api.Group("/incomes", authMiddleware)
	incomes.GET("", incomeHandler.List)
	incomes.POST("", incomeHandler.Create)
	incomes.PUT("/:id", incomeHandler.Update)
	incomes.DELETE("/:id", incomeHandler.Delete)

	allocations := api.Group("/allocations", authMiddleware)
	allocations.GET("", allocationHandler.List)
	allocations.POST("/suggest", allocationHandler.Suggest)
	allocations.GET("/gaps", allocationHandler.Gaps)

	debts := api.Group("/debts", authMiddleware)
	debts.GET("", debtHandler.List)
	debts.POST("", debtHandler.Create)
	debts.PUT("/:id", debtHandler.Update)
	debts.DELETE("/:id", debtHandler.Delete)
	debts.GET("/:id/payoff", debtHandler.Payoff)
	debts.POST("/payoff-plan", debtHandler.PayoffPlan)
}
