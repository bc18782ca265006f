package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
	"github.com/spec-kit/repair-ticket-service/internal/persistence"
	"github.com/spec-kit/repair-ticket-service/internal/receipt"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	"github.com/spec-kit/repair-ticket-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	memory := repository.NewMemoryTicketRepository()
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   memory,
		SequenceRepo: repository.NewMemorySequenceRepository(memory),
		HistoryRepo:  repository.NewMemoryHistoryRepository(),
		Dispatcher:   events.NewInMemoryDispatcher(logger),
		Logger:       logger,
	})
	receipts := service.NewReceiptService(tickets, receipt.Profile{Name: "MULTIPLANET", Location: time.UTC}, receipt.LayoutA5)

	return NewServer("repairdesk-test", logger, metrics, 5*time.Second, RouteConfig{
		Health:    handlers.NewHealthHandler("repairdesk", "test", &persistence.Postgres{}, &persistence.Redis{}, metrics),
		Tickets:   handlers.NewTicketsHandler(tickets),
		Receipts:  handlers.NewReceiptsHandler(receipts),
		Dashboard: handlers.NewDashboardHandler(tickets),
	})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env, raw
}

type ticketJSON struct {
	ID           string `json:"id"`
	Number       string `json:"ticket_number"`
	InitialState string `json:"initial_state"`
	CurrentState string `json:"current_state"`
	StateColor   string `json:"state_color"`
	Estimated    string `json:"estimated_cost"`
	Final        string `json:"final_cost"`
	Version      int64  `json:"version"`
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	year := time.Now().Year()

	status, env, _ := do(t, app, "GET", "/api/v1/tickets/next-number", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"ticket_number":"TKT-`+strconv.Itoa(year)+`-0001"}`, string(env.Data))

	status, env, _ = do(t, app, "POST", "/api/v1/tickets",
		`{"customer_name":"Ana Ruiz","phone":"9999-0000","problem_description":"no enciende","accessories":"cargador, mouse"}`)
	require.Equal(t, fiber.StatusCreated, status)
	var created ticketJSON
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "TKT-"+strconv.Itoa(year)+"-0001", created.Number)
	assert.Equal(t, "Received", created.InitialState)
	assert.Equal(t, "Received", created.CurrentState)
	assert.Equal(t, "0", created.Estimated)
	assert.Equal(t, "0", created.Final)

	status, env, _ = do(t, app, "PATCH", "/api/v1/tickets/"+created.ID, `{"current_state":"Entregado","version":1}`)
	require.Equal(t, fiber.StatusOK, status)
	var updated ticketJSON
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Delivered", updated.CurrentState)
	assert.Equal(t, "Received", updated.InitialState)
	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, int64(2), updated.Version)

	status, env, _ = do(t, app, "PATCH", "/api/v1/tickets/"+created.ID, `{"technician_notes":"late","version":1}`)
	require.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env, _ = do(t, app, "GET", "/api/v1/tickets/"+created.ID+"/history", "")
	require.Equal(t, fiber.StatusOK, status)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Delivered", history[0]["new_state"])

	status, _, body := do(t, app, "GET", "/api/v1/tickets/"+created.ID+"/receipt?layout=thermal58", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), created.Number)
	assert.Contains(t, string(body), "width: 58mm")

	status, _, _ = do(t, app, "DELETE", "/api/v1/tickets/"+created.ID, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env, _ = do(t, app, "GET", "/api/v1/tickets/"+created.ID, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreateTicketValidationOverHTTP(t *testing.T) {
	app := newTestApp(t)

	status, env, _ := do(t, app, "POST", "/api/v1/tickets", `{"customer_name":"Ana Ruiz"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	fields := env.Error.Details["fields"].(map[string]any)
	assert.Equal(t, "required", fields["phone"])
	assert.Equal(t, "required", fields["problem_description"])

	status, env, _ = do(t, app, "POST", "/api/v1/tickets", `{"customer_name":"Ana","phone":"1","problem_description":"x","estimated_cost":"-3"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env, _ = do(t, app, "POST", "/api/v1/tickets", `{"customer_name":"Ana","phone":"1","problem_description":"x","estimated_cost":10000000000}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, _, _ = do(t, app, "POST", "/api/v1/tickets", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListFilterAndDashboardOverHTTP(t *testing.T) {
	app := newTestApp(t)
	for _, body := range []string{
		`{"customer_name":"Ana Ruiz","phone":"9999-0000","problem_description":"no enciende","priority":"Urgente"}`,
		`{"customer_name":"Luis Paz","phone":"2222-1111","problem_description":"atasco","device_type":"Impresora","priority":"High"}`,
	} {
		status, _, _ := do(t, app, "POST", "/api/v1/tickets", body)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, env, _ := do(t, app, "GET", "/api/v1/tickets?search=IMPRE", "")
	require.Equal(t, fiber.StatusOK, status)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Luis Paz", rows[0]["customer_name"])

	status, env, _ = do(t, app, "GET", "/api/v1/tickets?status=Delivered", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env, _ = do(t, app, "GET", "/api/v1/dashboard", "")
	require.Equal(t, fiber.StatusOK, status)
	var dash struct {
		Statistics struct {
			Total     int `json:"total"`
			InProcess int `json:"in_process"`
		} `json:"statistics"`
		Recent []map[string]any `json:"recent"`
		Urgent []map[string]any `json:"urgent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.Equal(t, 2, dash.Statistics.Total)
	assert.Equal(t, 2, dash.Statistics.InProcess)
	assert.Len(t, dash.Recent, 2)
	assert.Len(t, dash.Urgent, 2)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/tickets/export.xlsx", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "tickets.xlsx")
}

func TestReceiptPreviewOverHTTP(t *testing.T) {
	app := newTestApp(t)

	status, _, body := do(t, app, "POST", "/api/v1/receipts/preview?layout=a5",
		`{"customer_name":"Ana Ruiz","phone":"9999-0000","problem_description":"no enciende"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "TMP-")
	assert.Contains(t, string(body), "size: A5 portrait")

	status, env, _ := do(t, app, "POST", "/api/v1/receipts/preview?layout=letter",
		`{"customer_name":"Ana Ruiz","phone":"9999-0000","problem_description":"no enciende"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestMetaHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t)

	status, env, _ := do(t, app, "GET", "/api/v1/meta/enums", "")
	require.Equal(t, fiber.StatusOK, status)
	var enums struct {
		States []struct {
			Value string `json:"value"`
			Alias string `json:"alias"`
		} `json:"states"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &enums))
	require.Len(t, enums.States, 7)
	assert.Equal(t, "Received", enums.States[0].Value)

	status, _, raw := do(t, app, "GET", "/health/ready", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"postgres":"disabled"`)

	status, env, _ = do(t, app, "GET", "/api/v1/nope", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _, raw = do(t, app, "GET", "/metrics", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "requests")
}
