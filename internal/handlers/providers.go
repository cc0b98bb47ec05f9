package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/catalog"
)

const (
	suggestionLimit = 3
	liveWriteWait   = 5 * time.Second
	liveReadLimit   = 512
)

type ProviderHandler struct {
	Catalog  *catalog.Catalog
	Debounce time.Duration
	Latency  time.Duration
	upgrader websocket.Upgrader
}

func NewProviderHandler(providers *catalog.Catalog, debounce, latency time.Duration) *ProviderHandler {
	return &ProviderHandler{
		Catalog:  providers,
		Debounce: debounce,
		Latency:  latency,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type LookupResponse struct {
	Query       string          `json:"query"`
	Providers   []catalog.Entry `json:"providers"`
	Suggestions []string        `json:"suggestions,omitempty"`
}

type liveQuery struct {
	Query string `json:"query"`
}

type liveResult struct {
	Token     uint64          `json:"token"`
	Query     string          `json:"query"`
	Providers []catalog.Entry `json:"providers"`
}

// Lookup searches the catalog and offers close ids when nothing matches.
func (h *ProviderHandler) Lookup(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if len([]rune(query)) > 100 {
		return badRequest(c, "query is too long")
	}

	return c.JSON(http.StatusOK, lookup(h.Catalog, query))
}

func (h *ProviderHandler) Get(c echo.Context) error {
	entry, ok := h.Catalog.GetByID(h.Catalog.Resolve(c.Param("id")))
	if !ok {
		return notFound(c, "provider not found")
	}

	return c.JSON(http.StatusOK, entry)
}

// Live upgrades to a websocket where each text frame is a query.
// Only the newest query of the connection produces a result frame.
func (h *ProviderHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(liveReadLimit)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	searcher := catalog.NewSearcher(h.Catalog, h.Debounce, h.Latency)

	var writeMu sync.Mutex
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var msg liveQuery
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("live lookup closed", slog.String("error", err.Error()))
			}
			cancel()
			return nil
		}

		wg.Add(1)
		go func(query string) {
			defer wg.Done()

			result := searcher.Search(ctx, query)
			if result.Superseded {
				return
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			_ = conn.WriteJSON(liveResult{Token: result.Token, Query: result.Query, Providers: result.Entries})
		}(msg.Query)
	}
}

func lookup(providers *catalog.Catalog, query string) LookupResponse {
	response := LookupResponse{Query: query, Providers: providers.Lookup(query)}
	if len(response.Providers) == 0 && query != "" {
		response.Suggestions = providers.Suggest(query, suggestionLimit)
	}
	return response
}
