package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/application/alert"
	"github.com/jhoicas/labstock-api/internal/application/dto"
	"github.com/jhoicas/labstock-api/internal/application/inventory"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/cache"
	"github.com/jhoicas/labstock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/labstock-api/internal/interfaces/http"
	"github.com/jhoicas/labstock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testArticleID = "art-glucosa"
	foreignArtID  = "art-ajeno"
)

// buildInventoryApp arma el router completo sobre el store en memoria.
func buildInventoryApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.AddArticle(&entity.Article{
		ID: testArticleID, CompanyID: testCompanyID, Name: "Reactivo glucosa", UnitMeasure: "ml",
		UnitPrice: decimal.NewFromInt(3),
	})
	store.AddArticle(&entity.Article{ID: foreignArtID, CompanyID: foreignCompany, Name: "Ajeno"})

	log := logger.Nop()
	tx := memory.NewTxRunner(store)
	articles := memory.NewArticleRepository(store)
	stocks := memory.NewStockRepository(store)
	lots := memory.NewStockLotRepository(store)
	movs := memory.NewStockMovementRepository(store)
	alerts := memory.NewStockAlertRepository(store)
	guard := cache.NewInMemoryIdempotencyGuard(time.Hour)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Consume:   inventory.NewConsumeUseCase(tx, articles, guard, nil, log),
		Replenish: inventory.NewReplenishUseCase(tx, articles, nil),
		Reverse:   inventory.NewReverseUseCase(tx, articles, guard, nil, log),
		Stock:     inventory.NewStockUseCase(tx, articles, stocks, lots, movs, nil),
		Evaluator: alert.NewEvaluatorUseCase(stocks, lots, articles, alerts, 30, log),
		Alerts:    alert.NewAlertUseCase(alerts, stocks, lots, articles),
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return app
}

// call lanza una petición JSON con el rol indicado y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, []byte, http.Header) {
	t.Helper()
	auth := ""
	if role != "" {
		auth = tokenForRole(t, role)
	}
	return callWith(t, app, method, path, auth, body)
}

// callWith como call, con el header Authorization tal cual.
func callWith(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, []byte, http.Header) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out, resp.Header
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

const articlePath = "/api/inventory/articles/" + testArticleID

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinTokenRetorna401(t *testing.T) {
	app := buildInventoryApp(t)
	status, _, _ := call(t, app, http.MethodGet, articlePath+"/available", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_ReponerYConsumir(t *testing.T) {
	app := buildInventoryApp(t)

	status, body, _ := call(t, app, http.MethodPost, articlePath+"/lots", "laboratorista", map[string]any{
		"quantity": 10, "entry_date": "2026-01-01", "expiration_date": "2027-01-01", "unit_cost": "2.5", "lot_number": "L-01",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	rep := decode[dto.ReplenishResponse](t, body)
	assert.NotEmpty(t, rep.LotID)
	assert.Equal(t, int64(10), rep.AvailableAfter)

	status, body, _ = call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", dto.ConsumeRequest{Quantity: 4, Policy: "FEFO", EventRef: "exam-1"})
	require.Equal(t, http.StatusCreated, status, string(body))
	res := decode[dto.ConsumeResponse](t, body)
	assert.Equal(t, int64(6), res.RemainingAfter)
	require.Len(t, res.Movements, 1)
	assert.Equal(t, int64(-4), res.Movements[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(res.TotalCost))

	status, body, _ = call(t, app, http.MethodGet, articlePath+"/available", "laboratorista", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(6), decode[dto.AvailableResponse](t, body).Available)

	status, body, _ = call(t, app, http.MethodGet, articlePath+"/movements?limit=1", "laboratorista", nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[dto.MovementListResponse](t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, entity.MovementEntry, page.Items[0].Direction)
}

func TestRouter_ErroresDeConsumo(t *testing.T) {
	app := buildInventoryApp(t)
	status, _, _ := call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusCreated, status)

	cases := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"cantidad cero", articlePath + "/consume", dto.ConsumeRequest{Quantity: 0}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"política inválida", articlePath + "/consume", map[string]any{"quantity": 1, "policy": "LIFO"}, http.StatusBadRequest, "VALIDATION"},
		{"stock insuficiente", articlePath + "/consume", dto.ConsumeRequest{Quantity: 8}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"artículo ajeno", "/api/inventory/articles/" + foreignArtID + "/consume", dto.ConsumeRequest{Quantity: 1}, http.StatusForbidden, "TENANT_MISMATCH"},
		{"artículo inexistente", "/api/inventory/articles/nope/consume", dto.ConsumeRequest{Quantity: 1}, http.StatusNotFound, "ARTICLE_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body, _ := call(t, app, http.MethodPost, tc.path, "laboratorista", tc.body)
			assert.Equal(t, tc.status, status, string(body))
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, body).Code)
		})
	}

	_, body, _ := call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", dto.ConsumeRequest{Quantity: 8})
	msg := decode[dto.ErrorResponse](t, body).Message
	assert.Contains(t, msg, testArticleID)
	assert.Contains(t, msg, "faltan 3")

	_, body, _ = call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", map[string]any{"quantity": 1, "policy": "LIFO"})
	details := decode[dto.ErrorResponse](t, body).Details
	require.Len(t, details, 1)
	assert.Equal(t, "policy", details[0].Field)
}

func TestRouter_EventoDuplicadoYAnulacion(t *testing.T) {
	app := buildInventoryApp(t)
	call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 5})

	req := dto.ConsumeRequest{Quantity: 2, EventRef: "exam-9"}
	status, _, _ := call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", req)
	require.Equal(t, http.StatusCreated, status)
	status, body, _ := call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", req)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, body).Code)

	status, body, _ = call(t, app, http.MethodPost, articlePath+"/reversals", "laboratorista", dto.ReverseRequest{EventRef: "exam-9"})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, int64(5), decode[dto.ReverseResponse](t, body).AvailableAfter)

	status, body, _ = call(t, app, http.MethodPost, articlePath+"/reversals", "laboratorista", dto.ReverseRequest{EventRef: "exam-9"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)

	status, _, _ = call(t, app, http.MethodPost, articlePath+"/consume", "laboratorista", req)
	assert.Equal(t, http.StatusCreated, status, "tras anular, el evento puede volver a consumirse")
}

func TestRouter_ConfiguracionRequiereRolDeGestion(t *testing.T) {
	app := buildInventoryApp(t)
	threshold := int64(5)
	cfg := dto.ConfigureStockRequest{CriticalThreshold: &threshold, DefaultPolicy: "FIFO"}

	status, _, _ := call(t, app, http.MethodPut, articlePath+"/stock", "laboratorista", cfg)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ := call(t, app, http.MethodPut, articlePath+"/stock", "bodeguero", cfg)
	require.Equal(t, http.StatusOK, status, string(body))
	st := decode[dto.StockResponse](t, body)
	assert.Equal(t, int64(5), st.CriticalThreshold)
	assert.Equal(t, "FIFO", st.DefaultPolicy)

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/consistency", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decode[map[string]any](t, body)["consistent"])
}

func TestRouter_BajaDeLote(t *testing.T) {
	app := buildInventoryApp(t)
	_, body, _ := call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 5})
	lotID := decode[dto.ReplenishResponse](t, body).LotID

	status, body, _ := call(t, app, http.MethodDelete, "/api/inventory/lots/"+lotID, "admin", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status, "el motivo es obligatorio")
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)

	status, body, _ = call(t, app, http.MethodDelete, "/api/inventory/lots/"+lotID, "admin", dto.SoftDeleteLotRequest{Reason: "frasco roto"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.True(t, decode[dto.LotResponse](t, body).Deleted)

	status, body, _ = call(t, app, http.MethodDelete, "/api/inventory/lots/"+lotID, "admin", dto.SoftDeleteLotRequest{Reason: "otra vez"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, body).Code)

	_, body, _ = call(t, app, http.MethodGet, articlePath+"/available", "admin", nil)
	assert.Equal(t, int64(0), decode[dto.AvailableResponse](t, body).Available)
}

func TestRouter_AlertasCicloDeVida(t *testing.T) {
	app := buildInventoryApp(t)
	threshold := int64(5)
	call(t, app, http.MethodPut, articlePath+"/stock", "admin", dto.ConfigureStockRequest{CriticalThreshold: &threshold})
	call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 5})

	status, body, _ := call(t, app, http.MethodPost, "/api/inventory/alerts/evaluate", "admin", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	ev := decode[dto.EvaluateAlertsResponse](t, body)
	require.Len(t, ev.Created, 1)
	assert.Equal(t, entity.AlertCriticalStock, ev.Created[0].Type)
	assert.Equal(t, entity.PriorityMedium, ev.Created[0].Priority)
	alertID := ev.Created[0].ID

	_, body, _ = call(t, app, http.MethodPost, "/api/inventory/alerts/evaluate?article_id="+testArticleID, "admin", nil)
	assert.Empty(t, decode[dto.EvaluateAlertsResponse](t, body).Created, "sin cambios no se crean alertas nuevas")

	status, body, _ = call(t, app, http.MethodGet, "/api/inventory/alerts?status=NEW", "laboratorista", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[dto.AlertListResponse](t, body).Items, 1)

	status, body, _ = call(t, app, http.MethodPost, "/api/inventory/alerts/"+alertID+"/resolve", "admin", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, entity.AlertStatusResolved, decode[dto.AlertResponse](t, body).Status)

	status, body, _ = call(t, app, http.MethodPost, "/api/inventory/alerts/"+alertID+"/start", "admin", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, body).Code)

	status, _, _ = call(t, app, http.MethodGet, "/api/inventory/alerts?status=CERRADA", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_SenalDeCadenaDeFrio(t *testing.T) {
	app := buildInventoryApp(t)
	sig := dto.RecordSignalRequest{Type: entity.AlertColdChainBreach, ArticleID: testArticleID, Message: "nevera 2 a 12 °C"}

	status, _, _ := call(t, app, http.MethodPost, "/api/inventory/alerts/signals", "admin", sig)
	require.Equal(t, http.StatusNotFound, status)
	call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 5})

	status, body, _ := call(t, app, http.MethodPost, "/api/inventory/alerts/signals", "admin", sig)
	require.Equal(t, http.StatusCreated, status, string(body))
	first := decode[dto.RecordSignalResponse](t, body)
	assert.True(t, first.Created)
	assert.Equal(t, entity.PriorityHigh, first.Alert.Priority)

	status, body, _ = call(t, app, http.MethodPost, "/api/inventory/alerts/signals", "admin", sig)
	require.Equal(t, http.StatusOK, status)
	second := decode[dto.RecordSignalResponse](t, body)
	assert.False(t, second.Created)
	assert.Equal(t, first.Alert.ID, second.Alert.ID)

	status, _, _ = call(t, app, http.MethodPost, "/api/inventory/alerts/signals", "admin", map[string]any{"type": "HUMEDAD"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_LoteQueVenceHoy(t *testing.T) {
	app := buildInventoryApp(t)
	today := time.Now().UTC().Format(time.DateOnly)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)
	status, body, _ := call(t, app, http.MethodPost, articlePath+"/lots", "admin", map[string]any{"quantity": 3, "expiration_date": today})
	require.Equal(t, http.StatusCreated, status, string(body))

	expired := func(query string) bool {
		t.Helper()
		status, body, _ := call(t, app, http.MethodGet, articlePath+"/expired"+query, "laboratorista", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		return decode[struct {
			HasExpiredLots bool `json:"has_expired_lots"`
		}](t, body).HasExpiredLots
	}
	assert.False(t, expired(""))
	assert.False(t, expired("?as_of="+today))
	assert.True(t, expired("?as_of="+tomorrow))

	status, body, _ = call(t, app, http.MethodGet, articlePath+"/near-expiration?horizon_days=0", "laboratorista", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Len(t, decode[dto.NearExpirationResponse](t, body).Lots, 1)

	for _, v := range []string{"abc", "-1", "1.5"} {
		status, body, _ = call(t, app, http.MethodGet, articlePath+"/near-expiration?horizon_days="+v, "laboratorista", nil)
		assert.Equal(t, http.StatusBadRequest, status, v)
		assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code, v)
	}
}
