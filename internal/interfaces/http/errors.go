package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// retryAfterSeconds sugerencia al cliente ante conflictos de concurrencia.
const retryAfterSeconds = "1"

// requestError cuerpo o query inválidos, se responde 400 con el detalle.
type requestError struct {
	resp dto.ErrorResponse
}

func (e *requestError) Error() string { return e.resp.Message }

// respondError traduce errores de dominio a status HTTP y código estable. Los 5xx se registran.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var short *domain.InsufficientStockError
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return c.Status(fiber.StatusBadRequest).JSON(reqErr.resp)
	case errors.As(err, &short):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: short.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrTenantMismatch):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_MISMATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrArticleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ARTICLE_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "operación en conflicto con otra concurrente, reintente"})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// parseBody decodifica y valida el cuerpo JSON.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &requestError{dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}}
	}
	if err := validate.Struct(out); err != nil {
		return &requestError{dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: validationDetails(err)}}
	}
	return nil
}

// parsePage lee limit y offset de la query con sus valores por defecto.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, &requestError{dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"}}
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return page, &requestError{dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida", Details: validationDetails(err)}}
	}
	return page, nil
}
