package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// InventoryHandler maneja consumo, reposición y consultas de stock por lotes (protegido).
type InventoryHandler struct {
	consume   *inventory.ConsumeUseCase
	replenish *inventory.ReplenishUseCase
	reverse   *inventory.ReverseUseCase
	stock     *inventory.StockUseCase
	log       *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	consume *inventory.ConsumeUseCase,
	replenish *inventory.ReplenishUseCase,
	reverse *inventory.ReverseUseCase,
	stock *inventory.StockUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{consume: consume, replenish: replenish, reverse: reverse, stock: stock, log: log}
}

// Consume godoc
// @Summary      Consumir stock de un artículo
// @Description  Descuenta la cantidad repartiéndola entre lotes según FIFO o FEFO. Todo o nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        articleID  path  string              true  "ID del artículo"
// @Param        body       body  dto.ConsumeRequest  true  "quantity, policy, event_ref"
// @Success      201  {object}  dto.ConsumeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/articles/{articleID}/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.consume.Consume(c.UserContext(), GetCompanyID(c), c.Params("articleID"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Replenish godoc
// @Summary      Registrar un lote nuevo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        articleID  path  string                true  "ID del artículo"
// @Param        body       body  dto.ReplenishRequest  true  "quantity, entry_date, expiration_date, unit_cost"
// @Success      201  {object}  dto.ReplenishResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/articles/{articleID}/lots [post]
func (h *InventoryHandler) Replenish(c *fiber.Ctx) error {
	var in dto.ReplenishRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.replenish.Replenish(c.UserContext(), GetCompanyID(c), c.Params("articleID"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reverse godoc
// @Summary      Anular un evento de consumo
// @Description  Registra entradas compensatorias por cada salida del evento aún no compensada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        articleID  path  string              true  "ID del artículo"
// @Param        body       body  dto.ReverseRequest  true  "event_ref"
// @Success      201  {object}  dto.ReverseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/articles/{articleID}/reversals [post]
func (h *InventoryHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.reverse.Reverse(c.UserContext(), GetCompanyID(c), c.Params("articleID"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Available godoc
// @Summary      Cantidad disponible
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        articleID  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.AvailableResponse
// @Router       /api/inventory/articles/{articleID}/available [get]
func (h *InventoryHandler) Available(c *fiber.Ctx) error {
	out, err := h.stock.QueryAvailable(c.UserContext(), GetCompanyID(c), c.Params("articleID"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// NearExpiration godoc
// @Summary      Lotes próximos a vencer
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        articleID     path   string  true   "ID del artículo"
// @Param        horizon_days  query  int     false  "Días hacia adelante. 0 o vacío = anticipación de la categoría."
// @Success      200  {object}  dto.NearExpirationResponse
// @Router       /api/inventory/articles/{articleID}/near-expiration [get]
func (h *InventoryHandler) NearExpiration(c *fiber.Ctx) error {
	horizon := 0
	if s := c.Query("horizon_days"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return respondError(c, h.log, &requestError{dto.ErrorResponse{Code: "VALIDATION", Message: "horizon_days debe ser un entero mayor o igual a cero"}})
		}
		horizon = v
	}
	out, err := h.stock.QueryNearExpiration(c.UserContext(), GetCompanyID(c), c.Params("articleID"), horizon)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ExpiredLots indica si el artículo tiene lotes vivos vencidos a la fecha as_of (hoy si se omite).
func (h *InventoryHandler) ExpiredLots(c *fiber.Ctx) error {
	asOf := time.Now().UTC()
	if s := c.Query("as_of"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return respondError(c, h.log, &requestError{dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe tener formato YYYY-MM-DD"}})
		}
		asOf = t
	}
	articleID := c.Params("articleID")
	expired, err := h.stock.HasExpiredLots(c.UserContext(), GetCompanyID(c), articleID, asOf)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"article_id": articleID, "as_of": asOf.Format(time.DateOnly), "has_expired_lots": expired})
}

// Summary godoc
// @Summary      Agregado de stock del artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        articleID  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/articles/{articleID}/stock [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	out, err := h.stock.Summary(c.UserContext(), GetCompanyID(c), c.Params("articleID"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ConfigureStock godoc
// @Summary      Configurar umbral crítico y política por defecto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        articleID  path  string                     true  "ID del artículo"
// @Param        body       body  dto.ConfigureStockRequest  true  "critical_threshold, default_policy"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventory/articles/{articleID}/stock [put]
func (h *InventoryHandler) ConfigureStock(c *fiber.Ctx) error {
	var in dto.ConfigureStockRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.stock.ConfigureStock(c.UserContext(), GetCompanyID(c), c.Params("articleID"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListLots lotes del artículo; include_deleted=true incluye los borrados.
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.stock.ListLots(c.UserContext(), GetCompanyID(c), c.Params("articleID"), c.QueryBool("include_deleted", false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(lots), "lots": lots})
}

// SoftDeleteLot godoc
// @Summary      Dar de baja un lote
// @Description  Borrado lógico: el lote deja de contar para el stock y no se registra movimiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        lotID  path  string                    true  "ID del lote"
// @Param        body   body  dto.SoftDeleteLotRequest  true  "reason"
// @Success      200  {object}  dto.LotResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{lotID} [delete]
func (h *InventoryHandler) SoftDeleteLot(c *fiber.Ctx) error {
	var in dto.SoftDeleteLotRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.stock.SoftDeleteLot(c.UserContext(), GetCompanyID(c), c.Params("lotID"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListMovements libro de movimientos del artículo, paginado.
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.stock.ListMovements(c.UserContext(), GetCompanyID(c), c.Params("articleID"), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Consistency compara el agregado de cada artículo con la suma de sus lotes.
func (h *InventoryHandler) Consistency(c *fiber.Ctx) error {
	issues, err := h.stock.CheckConsistency(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"consistent": len(issues) == 0, "issues": issues})
}

