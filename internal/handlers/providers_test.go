package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/catalog"
)

// TestProviderLookupEndpoint checks the lookup response and the query length limit.
func TestProviderLookupEndpoint(t *testing.T) {
	e := echo.New()
	h := NewProviderHandler(catalog.Default(), 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/providers?q=netflix", nil)
	rec := httptest.NewRecorder()
	if err := h.Lookup(e.NewContext(req, rec)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var response LookupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("expected json body, got %v", err)
	}
	if len(response.Providers) == 0 || response.Providers[0].ID != "netflix" {
		t.Fatalf("expected netflix first, got %v", response.Providers)
	}

	req = httptest.NewRequest(http.MethodGet, "/providers?q="+strings.Repeat("a", 101), nil)
	rec = httptest.NewRecorder()
	_ = h.Lookup(e.NewContext(req, rec))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// TestProviderGetUnknown checks that unknown providers return 404.
func TestProviderGetUnknown(t *testing.T) {
	e := echo.New()
	h := NewProviderHandler(catalog.Default(), 0, 0)

	req := httptest.NewRequest(http.MethodGet, "/providers/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("does-not-exist")
	_ = h.Get(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// TestProviderLive checks that a live query returns matching providers.
func TestProviderLive(t *testing.T) {
	e := echo.New()
	h := NewProviderHandler(catalog.Default(), 0, 0)
	e.GET("/live", h.Live)

	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/live", nil)
	if err != nil {
		t.Fatalf("expected websocket connection, got %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(liveQuery{Query: "spotify"}); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var result liveResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("expected result frame, got %v", err)
	}
	if result.Query != "spotify" || len(result.Providers) == 0 || result.Providers[0].ID != "spotify" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

// TestParsePagination checks limit and offset bounds.
func TestParsePagination(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=10", nil)
	limit, offset, err := parsePagination(e.NewContext(req, httptest.NewRecorder()), 50, 200)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit != 200 || offset != 10 {
		t.Fatalf("expected 200/10, got %d/%d", limit, offset)
	}

	req = httptest.NewRequest(http.MethodGet, "/?offset=-1", nil)
	if _, _, err := parsePagination(e.NewContext(req, httptest.NewRecorder()), 50, 200); err == nil {
		t.Fatal("expected error for negative offset")
	}
}
