package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/screwyprof/faucet/pkg/httpkit"
	"github.com/screwyprof/faucet/web/api"
	"github.com/screwyprof/faucet/web/handler/bind"
	"github.com/screwyprof/faucet/web/history"
)

const GetEventsRoute = http.MethodGet + " " + "/faucet/events"

// Sentinel errors
var (
	ErrEventQueryFailed = errors.New("failed to query events")
)

type FaucetGetEvents struct {
	finder history.EventsFinder
}

func NewFaucetGetEvents(finder history.EventsFinder) *FaucetGetEvents {
	return &FaucetGetEvents{
		finder: finder,
	}
}

func (h *FaucetGetEvents) AddRoutes(m *http.ServeMux) {
	m.Handle(GetEventsRoute, httpkit.HandlerFunc(h.GetEvents))
}

func (h *FaucetGetEvents) GetEvents(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	// Parse query parameters using bind layer
	req, err := bind.GetEventsRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Create domain criteria with validation
	criteria, err := history.NewEventsCriteria(req.Account, req.Kind, req.Page, req.PerPage)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	// Query events
	page, err := h.finder.FindEvents(r.Context(), criteria)
	if err != nil {
		return httpkit.JsonError(api.InternalServerError(fmt.Errorf("%w: %w", ErrEventQueryFailed, err)))
	}

	// Build GitHub-style Link header for navigation
	if linkHeader := buildPaginationLinks(page, r.URL); linkHeader != "" {
		w.Header().Set("Link", linkHeader)
	}

	// Return JSON response
	resp := bind.GetEventsResponse(page.Events)
	return httpkit.JSON(resp)
}

// buildPaginationLinks creates GitHub-style Link header for pagination navigation
func buildPaginationLinks(page *history.EventsPage, baseURL *url.URL) string {
	var links []string

	// Build base URL with existing query params (like account and kind filters)
	u := *baseURL
	query := u.Query()

	// Previous page link
	if page.HasPrevious() {
		query.Set("page", fmt.Sprintf("%d", page.Number-1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, u.String()))
	}

	// Next page link (GitHub-style: only if we know there are more pages)
	if page.HasNext() {
		query.Set("page", fmt.Sprintf("%d", page.Number+1))
		query.Set("per_page", fmt.Sprintf("%d", page.Size))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, u.String()))
	}

	// rel="first" is redundant (always page=1) and rel="last" would need a
	// count(*) per request, so only prev/next are advertised.

	return strings.Join(links, ", ")
}
