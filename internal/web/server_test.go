package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/garazh/internal/auth"
	"github.com/JonMunkholm/garazh/internal/config"
	"github.com/JonMunkholm/garazh/internal/core"
	"github.com/JonMunkholm/garazh/internal/storage/filestore"
	appmw "github.com/JonMunkholm/garazh/internal/web/middleware"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

type testEnv struct {
	t       *testing.T
	handler http.Handler
	clock   *testClock
	cookie  *http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "garazh.json"))
	require.NoError(t, err)
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc := core.NewService(store, core.WithClock(clock.now), core.WithLocation(time.UTC))
	require.NoError(t, svc.Load(context.Background()))
	gate, err := auth.NewGate(auth.Config{Username: "admin", Password: "admin123", Secret: "test", Now: clock.now})
	require.NoError(t, err)
	return &testEnv{t: t, handler: NewServer(svc, gate, cfg).Handler(), clock: clock}
}

// do sends a request with the session cookie, if any.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:4000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login() {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/login", loginRequest{Username: "admin", Password: "admin123"})
	require.Equal(e.t, http.StatusOK, rec.Code, "login body %s", rec.Body)
	for _, c := range rec.Result().Cookies() {
		if c.Name == appmw.SessionCookie {
			e.cookie = c
		}
	}
	require.NotNil(e.t, e.cookie, "login set no session cookie")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "decode %s", rec.Body)
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body %s", rec.Body)
}

func wantCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, rec, status)
	assert.Equal(t, code, decode[ErrorResponse](t, rec).Code)
}

// seedGarage creates a customer and vehicle through the API.
func (e *testEnv) seedGarage() (core.Customer, core.Vehicle) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/customers", core.Customer{Name: "Arben", Phone: "069"})
	wantStatus(e.t, rec, http.StatusCreated)
	c := decode[core.Customer](e.t, rec)

	rec = e.do(http.MethodPost, "/api/vehicles", core.Vehicle{CustomerID: c.ID, Make: "VW", Model: "Golf", Plate: "AA-1"})
	wantStatus(e.t, rec, http.StatusCreated)
	return c, decode[core.Vehicle](e.t, rec)
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t, testConfig())
	rec := e.do(http.MethodGet, "/healthz", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Equal(t, filestore.Name, decode[map[string]string](t, rec)["backend"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.do(http.MethodGet, "/healthz", nil)
	rec := e.do(http.MethodGet, "/metrics", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "garazh_http_requests_total")

	cfg := testConfig()
	cfg.Metrics.Enabled = false
	rec = newTestEnv(t, cfg).do(http.MethodGet, "/metrics", nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestSessionFlow(t *testing.T) {
	e := newTestEnv(t, testConfig())

	wantCode(t, e.do(http.MethodGet, "/api/customers", nil), http.StatusUnauthorized, "AUTH002")
	assert.False(t, decode[sessionResponse](t, e.do(http.MethodGet, "/api/session", nil)).LoggedIn)

	wrong := e.do(http.MethodPost, "/api/login", loginRequest{Username: "admin", Password: "nope"})
	wantCode(t, wrong, http.StatusUnauthorized, "AUTH001")

	e.login()
	got := decode[sessionResponse](t, e.do(http.MethodGet, "/api/session", nil))
	assert.True(t, got.LoggedIn)
	assert.Equal(t, "admin", got.Username)
	wantStatus(t, e.do(http.MethodGet, "/api/customers", nil), http.StatusOK)

	e.clock.t = e.clock.t.Add(13 * time.Hour)
	wantCode(t, e.do(http.MethodGet, "/api/customers", nil), http.StatusUnauthorized, "AUTH002")

	rec := e.do(http.MethodPost, "/api/logout", nil)
	wantStatus(t, rec, http.StatusOK)
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == appmw.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout did not clear the session cookie")
}

func TestBearerToken(t *testing.T) {
	e := newTestEnv(t, testConfig())
	rec := e.do(http.MethodPost, "/api/login", loginRequest{Username: "admin", Password: "admin123"})
	token := decode[sessionResponse](t, rec).Token

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	out := httptest.NewRecorder()
	e.handler.ServeHTTP(out, req)
	wantStatus(t, out, http.StatusOK)
}

func TestCustomerEndpoints(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()
	c, v := e.seedGarage()

	wantCode(t, e.do(http.MethodPost, "/api/customers", core.Customer{Name: "No Phone"}), http.StatusBadRequest, "VAL001")
	wantCode(t, e.do(http.MethodGet, "/api/customers/missing", nil), http.StatusNotFound, "NF001")

	name := "Arben Hoxha"
	rec := e.do(http.MethodPatch, "/api/customers/"+string(c.ID), core.CustomerPatch{Name: &name})
	wantStatus(t, rec, http.StatusOK)
	patched := decode[core.Customer](t, rec)
	assert.Equal(t, name, patched.Name)
	assert.Equal(t, "069", patched.Phone)

	rec = e.do(http.MethodGet, "/api/vehicles?customerId="+string(c.ID), nil)
	wantStatus(t, rec, http.StatusOK)
	vehicles := decode[[]core.Vehicle](t, rec)
	require.Len(t, vehicles, 1)
	assert.Equal(t, v.ID, vehicles[0].ID)

	rec = e.do(http.MethodGet, "/api/customers/"+string(c.ID)+"/history", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Len(t, decode[core.CustomerHistory](t, rec).Vehicles, 1)

	wantCode(t, e.do(http.MethodDelete, "/api/customers/"+string(c.ID), nil), http.StatusBadRequest, "VAL003")
	wantStatus(t, e.do(http.MethodDelete, "/api/customers/"+string(c.ID)+"?confirm=true", nil), http.StatusNoContent)
	wantStatus(t, e.do(http.MethodGet, "/api/customers/"+string(c.ID), nil), http.StatusNotFound)

	// The vehicle outlives its owner and stays editable.
	color := "Red"
	rec = e.do(http.MethodPatch, "/api/vehicles/"+string(v.ID), core.VehiclePatch{Color: &color})
	wantStatus(t, rec, http.StatusOK)
	assert.Equal(t, color, decode[core.Vehicle](t, rec).Color)
}

func TestBadRequestBody(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader("{not json"))
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	wantCode(t, rec, http.StatusBadRequest, "VAL008")
}

func TestServiceTypeEndpoints(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()

	rec := e.do(http.MethodPost, "/api/service-types", map[string]string{"label": "Tire Rotation"})
	wantStatus(t, rec, http.StatusCreated)
	types := decode[[]string](t, rec)
	require.NotEmpty(t, types)
	assert.Equal(t, "Tire Rotation", types[len(types)-1])
	wantCode(t, e.do(http.MethodPost, "/api/service-types", map[string]string{"label": "Tire Rotation"}), http.StatusBadRequest, "VAL006")

	wantCode(t, e.do(http.MethodDelete, "/api/service-types/Tire%20Rotation", nil), http.StatusBadRequest, "VAL003")
	rec = e.do(http.MethodDelete, "/api/service-types/Tire%20Rotation?confirm=true", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.NotContains(t, decode[[]string](t, rec), "Tire Rotation")
	wantCode(t, e.do(http.MethodDelete, "/api/service-types/Tire%20Rotation?confirm=true", nil), http.StatusNotFound, "NF001")
}

func TestOrderLifecycle(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()
	c, v := e.seedGarage()

	draft := core.OrderDraft{
		CustomerID: c.ID,
		VehicleID:  v.ID,
		Status:     core.StatusInProgress,
		Services: []core.ServiceLine{{
			ServiceType: "Oil Change",
			LaborPrice:  40,
			Parts:       []core.Part{{Name: "Filter", Qty: 2, CostPrice: 4, SellPrice: 7}, {Name: ""}},
		}},
	}
	wantCode(t, e.do(http.MethodPost, "/api/orders", core.OrderDraft{CustomerID: c.ID, VehicleID: v.ID}), http.StatusBadRequest, "VAL007")

	rec := e.do(http.MethodPost, "/api/orders", draft)
	wantStatus(t, rec, http.StatusCreated)
	o := decode[core.Order](t, rec)
	assert.Len(t, o.Services[0].Parts, 1, "nameless part kept")
	assert.Equal(t, core.Date("2026-03-10"), o.StartDate)
	assert.True(t, o.EndDate.IsZero())

	rec = e.do(http.MethodPost, "/api/orders/"+string(o.ID)+"/complete", nil)
	wantStatus(t, rec, http.StatusOK)
	done := decode[orderResponse](t, rec)
	assert.Equal(t, core.Date("2026-03-10"), done.Order.EndDate)
	assert.False(t, done.Archived)

	rec = e.do(http.MethodPost, "/api/orders/"+string(o.ID)+"/toggle-paid", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.True(t, decode[orderResponse](t, rec).Order.Paid)

	e.clock.t = e.clock.t.Add(24 * time.Hour)
	e.login()

	rec = e.do(http.MethodGet, "/api/orders", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[[]core.Order](t, rec), "active orders after rollover")

	rec = e.do(http.MethodGet, "/api/daily-log", nil)
	wantStatus(t, rec, http.StatusOK)
	days := decode[[]core.DailyLogDay](t, rec)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, 54.0, days[0].Revenue)

	rec = e.do(http.MethodGet, "/api/orders/"+string(o.ID), nil)
	wantStatus(t, rec, http.StatusOK)
	assert.True(t, decode[orderResponse](t, rec).Archived)

	wantStatus(t, e.do(http.MethodDelete, "/api/orders/"+string(o.ID)+"?confirm=true", nil), http.StatusNoContent)
	wantCode(t, e.do(http.MethodPost, "/api/orders/"+string(o.ID)+"/toggle-paid", nil), http.StatusNotFound, "NF001")
}

func TestReports(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()
	c, v := e.seedGarage()

	rec := e.do(http.MethodPost, "/api/orders", core.OrderDraft{
		CustomerID: c.ID,
		VehicleID:  v.ID,
		Status:     core.StatusCompleted,
		Services:   []core.ServiceLine{{ServiceType: "Brakes", LaborPrice: 100}},
	})
	wantStatus(t, rec, http.StatusCreated)
	o := decode[core.Order](t, rec)

	rec = e.do(http.MethodGet, "/api/invoices?paid=unpaid&q=golf", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Empty(t, decode[core.InvoiceList](t, rec).Rows, "search on a make should not match")

	rec = e.do(http.MethodGet, "/api/invoices?paid=unpaid&q=aa-1", nil)
	wantStatus(t, rec, http.StatusOK)
	list := decode[core.InvoiceList](t, rec)
	assert.Len(t, list.Rows, 1)
	assert.Equal(t, 100.0, list.Summary.Revenue)
	assert.Equal(t, 100.0, list.Summary.Unpaid)

	wantCode(t, e.do(http.MethodGet, "/api/invoices?paid=maybe", nil), http.StatusBadRequest, "ERR000")
	wantCode(t, e.do(http.MethodGet, "/api/dashboard?from=10/03/2026", nil), http.StatusBadRequest, "VAL004")
	wantStatus(t, e.do(http.MethodGet, "/api/dashboard?preset=thisWeek", nil), http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/invoices/"+string(o.ID)+"/print", nil)
	req.AddCookie(e.cookie)
	out := httptest.NewRecorder()
	e.handler.ServeHTTP(out, req)
	wantStatus(t, out, http.StatusOK)
	assert.True(t, strings.HasPrefix(out.Header().Get("Content-Type"), "text/html"), "Content-Type = %q", out.Header().Get("Content-Type"))
	assert.Contains(t, out.Body.String(), "$100.00")

	req = httptest.NewRequest(http.MethodGet, "/invoices/missing/print", nil)
	req.AddCookie(e.cookie)
	out = httptest.NewRecorder()
	e.handler.ServeHTTP(out, req)
	wantStatus(t, out, http.StatusNotFound)
	assert.Contains(t, out.Body.String(), "NF001")
}

func TestPages(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()

	for _, p := range Pages {
		t.Run(string(p), func(t *testing.T) {
			rec := e.do(http.MethodGet, "/api/pages/"+string(p), nil)
			wantStatus(t, rec, http.StatusOK)
			assert.Equal(t, string(p), decode[map[string]any](t, rec)["page"])
		})
	}
	wantStatus(t, e.do(http.MethodGet, "/api/pages/reports", nil), http.StatusBadRequest)
}

func TestExportImportReset(t *testing.T) {
	e := newTestEnv(t, testConfig())
	e.login()
	e.seedGarage()

	rec := e.do(http.MethodGet, "/api/export", nil)
	wantStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "garazh-backup-2026-03-10.json")
	snap := decode[core.Snapshot](t, rec)
	require.Len(t, snap.Data.Customers, 1)

	wantCode(t, e.do(http.MethodPost, "/api/reset", core.ResetConfirmation{First: true}), http.StatusBadRequest, "VAL003")
	wantStatus(t, e.do(http.MethodPost, "/api/reset", core.ResetConfirmation{First: true, Second: true}), http.StatusOK)
	seeded := decode[[]core.Customer](t, e.do(http.MethodGet, "/api/customers", nil))
	assert.Greater(t, len(seeded), 1, "customers after reset should be the seed set")

	wantCode(t, e.do(http.MethodPost, "/api/import", snap), http.StatusBadRequest, "VAL003")
	wantStatus(t, e.do(http.MethodPost, "/api/import?confirm=true", snap), http.StatusOK)
	restored := decode[[]core.Customer](t, e.do(http.MethodGet, "/api/customers", nil))
	require.Len(t, restored, 1)
	assert.Equal(t, "Arben", restored[0].Name)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	e := newTestEnv(t, cfg)

	for i := 0; i < 2; i++ {
		wantStatus(t, e.do(http.MethodGet, "/api/session", nil), http.StatusOK)
	}

	rec := e.do(http.MethodGet, "/api/session", nil)
	wantCode(t, rec, http.StatusTooManyRequests, "RATE001")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Outside /api the same limit answers with the HTML error page.
	rec = e.do(http.MethodGet, "/healthz", nil)
	wantStatus(t, rec, http.StatusTooManyRequests)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"), "Content-Type = %q", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.ValidationError{Field: "name", Message: "required field is empty"}, http.StatusBadRequest},
		{core.NotFound("order", "7"), http.StatusNotFound},
		{&core.TransportError{Op: "create order", Err: errors.New("connection refused")}, http.StatusBadGateway},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", auth.ErrSessionExpired), http.StatusUnauthorized},
		{errRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}
