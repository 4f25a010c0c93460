package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/alert"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// Roles con permiso para cambiar la configuración del stock y dar de baja lotes.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Consume   *inventory.ConsumeUseCase
	Replenish *inventory.ReplenishUseCase
	Reverse   *inventory.ReverseUseCase
	Stock     *inventory.StockUseCase
	Evaluator *alert.EvaluatorUseCase
	Alerts    *alert.AlertUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	httpLog := deps.Log.Component("http")

	// Rutas protegidas (requieren Bearer Token); la empresa sale del token.
	inv := api.Group("/inventory", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(RoleAdmin, RoleBodeguero)

	inventoryHandler := NewInventoryHandler(deps.Consume, deps.Replenish, deps.Reverse, deps.Stock, httpLog)
	articles := inv.Group("/articles/:articleID")
	articles.Post("/consume", inventoryHandler.Consume)
	articles.Post("/reversals", inventoryHandler.Reverse)
	articles.Post("/lots", inventoryHandler.Replenish)
	articles.Get("/lots", inventoryHandler.ListLots)
	articles.Get("/available", inventoryHandler.Available)
	articles.Get("/near-expiration", inventoryHandler.NearExpiration)
	articles.Get("/expired", inventoryHandler.ExpiredLots)
	articles.Get("/stock", inventoryHandler.Summary)
	articles.Put("/stock", managers, inventoryHandler.ConfigureStock)
	articles.Get("/movements", inventoryHandler.ListMovements)
	inv.Delete("/lots/:lotID", managers, inventoryHandler.SoftDeleteLot)
	inv.Get("/consistency", managers, inventoryHandler.Consistency)

	alertHandler := NewAlertHandler(deps.Evaluator, deps.Alerts, httpLog)
	alerts := inv.Group("/alerts")
	alerts.Get("/", alertHandler.List)
	alerts.Post("/evaluate", alertHandler.Evaluate)
	alerts.Post("/signals", alertHandler.RecordSignal)
	alerts.Post("/:alertID/start", alertHandler.Start)
	alerts.Post("/:alertID/resolve", alertHandler.Resolve)
	alerts.Post("/:alertID/ignore", alertHandler.Ignore)
}
