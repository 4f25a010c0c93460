package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/alert"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// AlertHandler evaluación, consulta y gestión de alertas de stock (protegido).
type AlertHandler struct {
	evaluator *alert.EvaluatorUseCase
	alerts    *alert.AlertUseCase
	log       *logger.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(evaluator *alert.EvaluatorUseCase, alerts *alert.AlertUseCase, log *logger.Logger) *AlertHandler {
	return &AlertHandler{evaluator: evaluator, alerts: alerts, log: log}
}

// Evaluate godoc
// @Summary      Evaluar alertas de la empresa
// @Description  Crea o actualiza alertas de stock crítico, vencimiento próximo y lote vencido.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        article_id  query  string  false  "Limitar la evaluación a un artículo"
// @Success      200  {object}  dto.EvaluateAlertsResponse
// @Router       /api/inventory/alerts/evaluate [post]
func (h *AlertHandler) Evaluate(c *fiber.Ctx) error {
	var (
		out *dto.EvaluateAlertsResponse
		err error
	)
	if articleID := c.Query("article_id"); articleID != "" {
		out, err = h.evaluator.EvaluateArticle(c.UserContext(), GetCompanyID(c), articleID)
	} else {
		out, err = h.evaluator.Evaluate(c.UserContext(), GetCompanyID(c))
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "NEW | IN_PROGRESS | RESOLVED | IGNORED"
// @Param        limit   query  int     false  "Tamaño de página (1-100)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/inventory/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.alerts.List(c.UserContext(), GetCompanyID(c), c.Query("status"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// RecordSignal godoc
// @Summary      Registrar señal externa de cadena de frío o temperatura
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSignalRequest  true  "type, article_id, lot_id, temperature"
// @Success      201  {object}  dto.RecordSignalResponse  "alerta nueva"
// @Success      200  {object}  dto.RecordSignalResponse  "alerta abierta actualizada"
// @Router       /api/inventory/alerts/signals [post]
func (h *AlertHandler) RecordSignal(c *fiber.Ctx) error {
	var in dto.RecordSignalRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.alerts.RecordSignal(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusOK
	if out.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(out)
}

// Start pasa la alerta a IN_PROGRESS.
func (h *AlertHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, h.alerts.Start)
}

// Resolve cierra la alerta como RESOLVED.
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	return h.transition(c, h.alerts.Resolve)
}

// Ignore cierra la alerta como IGNORED.
func (h *AlertHandler) Ignore(c *fiber.Ctx) error {
	return h.transition(c, h.alerts.Ignore)
}

func (h *AlertHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, companyID, alertID string) (*dto.AlertResponse, error)) error {
	out, err := fn(c.UserContext(), GetCompanyID(c), c.Params("alertID"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
