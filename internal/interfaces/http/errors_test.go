package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

func TestRespondError_Mapeo(t *testing.T) {
	log := logger.Nop()
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("get stock: %w", domain.ErrConcurrencyConflict), http.StatusServiceUnavailable},
		{&domain.InsufficientStockError{ArticleID: "a", Requested: 5, Available: 2}, http.StatusConflict},
		{domain.ErrTenantMismatch, http.StatusForbidden},
		{fmt.Errorf("insert stock alert: %w", domain.ErrDuplicate), http.StatusConflict},
		{domain.ErrArticleNotFound, http.StatusNotFound},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return respondError(c, log, tc.err) })
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		if tc.status == http.StatusServiceUnavailable {
			assert.Equal(t, retryAfterSeconds, resp.Header.Get(fiber.HeaderRetryAfter))
		}
		_ = resp.Body.Close()
	}
}
