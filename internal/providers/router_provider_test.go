package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

// dashboardRoutes mirrors the API table: read endpoints on GET, prefetch on POST.
func dashboardRoutes() RouterProviderInterface {
	rp := NewRouterProvider()
	rp.Get("/series", namedHandler("series"))
	rp.Get("/card", namedHandler("card"))
	rp.Get("/sources", namedHandler("sources"))
	rp.Post("/prefetch", namedHandler("prefetch"))
	return rp
}

func serve(t *testing.T, rp RouterProviderInterface, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	for _, route := range rp.GetRoutes() {
		mux.Handle(route.Url, route.Handler)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestRouterProvider_KeepsRegistrationOrder(t *testing.T) {
	routes := dashboardRoutes().GetRoutes()
	require.Len(t, routes, 4)

	var urls []string
	for _, r := range routes {
		urls = append(urls, r.Url)
	}
	assert.Equal(t, []string{"/series", "/card", "/sources", "/prefetch"}, urls)
}

func TestRouterProvider_DispatchesByMethod(t *testing.T) {
	tests := []struct {
		method string
		target string
		status int
		body   string
		allow  string
	}{
		{http.MethodGet, "/series?source=messaging&filter=24h", http.StatusOK, "series", ""},
		{http.MethodGet, "/card?source=github&field=commits", http.StatusOK, "card", ""},
		{http.MethodGet, "/sources", http.StatusOK, "sources", ""},
		{http.MethodPost, "/prefetch", http.StatusOK, "prefetch", ""},
		{http.MethodPost, "/series?source=messaging", http.StatusMethodNotAllowed, "", http.MethodGet},
		{http.MethodDelete, "/sources", http.StatusMethodNotAllowed, "", http.MethodGet},
		{http.MethodGet, "/prefetch", http.StatusMethodNotAllowed, "", http.MethodPost},
	}
	rp := dashboardRoutes()
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rr := serve(t, rp, tt.method, tt.target)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.allow, rr.Header().Get("Allow"))
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			}
		})
	}
}

func TestRouterProvider_WithoutPrefetchRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/series", namedHandler("series"))

	rr := serve(t, rp, http.MethodPost, "/prefetch")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
