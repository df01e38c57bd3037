package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/csvstore"
	"github.com/gourmet-kitchen/ordersys/internal/handler"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
)

// --- Helpers ---

type testAPI struct {
	router   *chi.Mux
	svc      *service.Restaurant
	settings *config.Settings
	store    *csvstore.Store
}

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		AppEnv:           "test",
		DataDir:          dataDir,
		TaxRate:          decimal.RequireFromString("0.08"),
		RestaurantName:   "Gourmet Kitchen",
		ReceiptFooter:    "Thank you for dining with us!",
		CurrencySymbol:   "$",
		AutoSaveInterval: time.Minute,
		MaxBackups:       2,
		SessionTTL:       time.Hour,
	}
}

// setupAPI mounts every handler without the PIN lock, on top of a real
// CSV store in a temp dir.
func setupAPI(t *testing.T) *testAPI {
	t.Helper()
	log, _ := test.NewNullLogger()

	store, err := csvstore.NewStore(t.TempDir(), "", log)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	settings := config.NewSettings(testConfig(store.DataDir()))
	svc := service.New(store, settings, nil, log)

	r := chi.NewRouter()
	menu := handler.NewMenuHandler(svc, log)
	r.Route("/menu", func(r chi.Router) {
		menu.RegisterRoutes(r)
		menu.RegisterManagerRoutes(r)
	})
	r.Route("/orders", handler.NewOrderHandler(svc, log).RegisterRoutes)
	reports := handler.NewReportsHandler(svc, log)
	reports.RegisterRoutes(r)
	r.Route("/reports", reports.RegisterManagerRoutes)
	r.Route("/settings", handler.NewSettingsHandler(settings, log).RegisterRoutes)
	r.Route("/admin", handler.NewAdminHandler(svc, log).RegisterRoutes)

	return &testAPI{router: r, svc: svc, settings: settings, store: store}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}

func (a *testAPI) createMenuItem(t *testing.T, name, category, price string) string {
	t.Helper()
	rr := doRequest(t, a.router, "POST", "/menu", map[string]interface{}{
		"name":     name,
		"category": category,
		"price":    price,
	})
	expectStatus(t, rr, http.StatusCreated)
	return decodeObject(t, rr)["id"].(string)
}

func (a *testAPI) createOrder(t *testing.T, items ...map[string]interface{}) map[string]interface{} {
	t.Helper()
	rr := doRequest(t, a.router, "POST", "/orders", map[string]interface{}{
		"customer_name": "Ada",
		"order_type":    "takeout",
		"items":         items,
	})
	expectStatus(t, rr, http.StatusCreated)
	return decodeObject(t, rr)
}

func line(menuItemID string, qty int) map[string]interface{} {
	return map[string]interface{}{"menu_item_id": menuItemID, "quantity": qty}
}
